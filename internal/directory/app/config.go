package app

import (
	"fmt"
	"time"

	"github.com/aussiebroadwan/directory/pkg/cryptox"
	"github.com/aussiebroadwan/directory/pkg/httpx"
	"github.com/caarlos0/env/v11"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Directory Directory `envPrefix:"DIRECTORY_"`
	Redis     Redis     `envPrefix:"REDIS_"`
	Minio     Minio     `envPrefix:"MINIO_"`

	Env                 string        `env:"ENV" envDefault:"dev"`
	LogLevel            string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat           string        `env:"LOG_FORMAT" envDefault:"json"`
	LogRingCapacity     int           `env:"LOG_RING_CAPACITY" envDefault:"1000"`
	Port                int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	PhotoMaxBytes       int64         `env:"PHOTO_MAX_BYTES" envDefault:"5242880"`

	RateLimits httpx.RateLimitProfiles `envPrefix:"RATELIMIT_"`
}

// Directory holds the record store and session settings.
type Directory struct {
	Driver       string `env:"DRIVER" envDefault:"sqlite"`
	DatabaseFile string `env:"DATABASE_FILE" envDefault:"directory.db"`
	DatabaseDSN  string `env:"DATABASE_DSN"`

	// Seed loads the sample records into an empty store on start-up.
	Seed bool `env:"SEED" envDefault:"true"`

	PasswordScheme cryptox.Scheme `env:"PASSWORD_SCHEME" envDefault:"sha256"`

	// JWTSecret signs session tokens. When empty in dev a random secret is
	// generated, so tokens do not survive a restart.
	JWTSecret  string        `env:"JWT_SECRET"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	Issuer     string        `env:"ISSUER" envDefault:"directory"`
}

// Redis backs the session registry when Addr is set.
type Redis struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	Prefix   string `env:"PREFIX" envDefault:"directory:session:"`
}

// Minio backs photo storage when Endpoint is set.
type Minio struct {
	Endpoint  string `env:"ENDPOINT"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Bucket    string `env:"BUCKET_NAME" envDefault:"directory-photos"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

// LoadConfig reads the configuration from the environment. Rate limits not
// set explicitly keep their built-in values.
func LoadConfig() (Config, error) {
	cfg := Config{RateLimits: httpx.DefaultRateLimits()}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Directory.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Directory.DatabaseDSN == "" {
			return fmt.Errorf("DIRECTORY_DATABASE_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown DIRECTORY_DRIVER %q", c.Directory.Driver)
	}

	switch c.Directory.PasswordScheme {
	case cryptox.SchemeSHA256, cryptox.SchemeArgon2id:
	default:
		return fmt.Errorf("unknown DIRECTORY_PASSWORD_SCHEME %q", c.Directory.PasswordScheme)
	}

	if c.Directory.JWTSecret == "" && c.Env != "dev" {
		return fmt.Errorf("DIRECTORY_JWT_SECRET is required outside dev")
	}
	if c.Minio.Endpoint != "" && (c.Minio.AccessKey == "" || c.Minio.SecretKey == "") {
		return fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required with MINIO_ENDPOINT")
	}
	return nil
}
