package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"

	"github.com/aussiebroadwan/directory/internal/directory/debug"
	httpapi "github.com/aussiebroadwan/directory/internal/directory/http"
	"github.com/aussiebroadwan/directory/internal/directory/media"
	"github.com/aussiebroadwan/directory/internal/directory/service"
	"github.com/aussiebroadwan/directory/internal/directory/sessions"
	"github.com/aussiebroadwan/directory/internal/directory/store"
	"github.com/aussiebroadwan/directory/internal/directory/store/seed"
	"github.com/aussiebroadwan/directory/pkg/cryptox"
	"github.com/aussiebroadwan/directory/pkg/jwtx"
	"github.com/aussiebroadwan/directory/pkg/slogx"
)

const (
	// BuildVersion is overridden at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the directory service and owns its resources.
type Application struct {
	cfg     Config
	logger  *slog.Logger
	logs    *slogx.Ring
	started time.Time

	db       store.Store
	redis    *redis.Client
	sessions sessions.Registry
	photos   media.Store
	pingers  map[string]httpapi.Pinger

	signer   jwtx.Signer
	verifier jwtx.Verifier

	authService     *service.AuthService
	businessService *service.BusinessService
	reviewService   *service.ReviewService
	adminService    *service.AdminService
	debugService    *debug.Service

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with every dependency initialized.
func New(ctx context.Context, cfg Config) (*Application, error) {
	ring := slogx.NewRing(cfg.LogRingCapacity)
	app := &Application{
		cfg:     cfg,
		logs:    ring,
		started: time.Now(),
		pingers: map[string]httpapi.Pinger{},
		logger: slogx.New(slogx.Config{
			Service: "directory",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			Sinks:   []slog.Handler{ring.Handler(slog.LevelDebug)},
		}),
	}
	ctx = slogx.WithContext(ctx, app.logger)

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := app.initKeys(); err != nil {
		app.closeAll()
		return nil, err
	}
	if err := app.initSessions(ctx); err != nil {
		app.closeAll()
		return nil, err
	}
	if err := app.initPhotos(ctx); err != nil {
		app.closeAll()
		return nil, err
	}

	app.initServices()
	app.initHTTP()
	return app, nil
}

// Handler returns the root HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("directory service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"driver", app.db.Driver(),
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}
	return nil
}

// Shutdown drains in-flight requests and releases every resource.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down directory service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.closeAll(); err != nil {
		return err
	}
	app.logger.Info("directory service stopped")
	return nil
}

func (app *Application) closeAll() error {
	var errs []error
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
			errs = append(errs, err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// initDatabase opens the store, applies migrations and seeds an empty
// store when enabled.
func (app *Application) initDatabase(ctx context.Context) error {
	db, err := OpenStore(ctx, app.cfg.Directory)
	if err != nil {
		return err
	}
	app.db = db

	var seedFn store.SeedFunc
	if app.cfg.Directory.Seed {
		seedFn = seed.Apply
	}
	if err := store.Initialize(ctx, db, seedFn); err != nil {
		_ = db.Close()
		app.db = nil
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	return nil
}

// initKeys builds the HS256 session signer. Dev without a configured
// secret gets a random one.
func (app *Application) initKeys() error {
	secret := app.cfg.Directory.JWTSecret
	if secret == "" {
		generated, err := cryptox.GenerateToken(jwtx.MinSecretLength)
		if err != nil {
			return fmt.Errorf("failed to generate session secret: %w", err)
		}
		secret = generated
		app.logger.Warn("DIRECTORY_JWT_SECRET not set, using an ephemeral secret")
	}

	signer, err := jwtx.NewSignerHS256([]byte(secret))
	if err != nil {
		return fmt.Errorf("failed to create session signer: %w", err)
	}
	verifier, err := jwtx.NewVerifierHS256([]byte(secret), jwtx.VerifyOptions{
		Issuer: app.cfg.Directory.Issuer,
		Leeway: 30 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to create session verifier: %w", err)
	}
	app.signer, app.verifier = signer, verifier
	return nil
}

// initSessions uses redis when REDIS_ADDR is set and an in-process
// registry otherwise.
func (app *Application) initSessions(ctx context.Context) error {
	if app.cfg.Redis.Addr == "" {
		app.sessions = sessions.NewMemory()
		app.logger.Info("session registry: memory")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     app.cfg.Redis.Addr,
		Password: app.cfg.Redis.Password,
		DB:       app.cfg.Redis.DB,
	})
	reg := sessions.NewRedis(client, app.cfg.Redis.Prefix)
	if err := reg.Ping(ctx); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	app.redis = client
	app.sessions = reg
	app.pingers["sessions"] = reg
	app.logger.Info("session registry: redis", "addr", app.cfg.Redis.Addr)
	return nil
}

// initPhotos uses minio when MINIO_ENDPOINT is set and memory otherwise.
func (app *Application) initPhotos(ctx context.Context) error {
	if app.cfg.Minio.Endpoint == "" {
		app.photos = media.NewMemory(app.cfg.PhotoMaxBytes)
		app.logger.Info("photo storage: memory")
		return nil
	}

	client, err := minio.New(app.cfg.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(app.cfg.Minio.AccessKey, app.cfg.Minio.SecretKey, ""),
		Secure: app.cfg.Minio.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create minio client: %w", err)
	}
	photos, err := media.NewMinio(ctx, client, app.cfg.Minio.Bucket, app.cfg.PhotoMaxBytes)
	if err != nil {
		return fmt.Errorf("failed to initialize photo storage: %w", err)
	}

	app.photos = photos
	app.pingers["photos"] = photos
	app.logger.Info("photo storage: minio", "endpoint", app.cfg.Minio.Endpoint, "bucket", app.cfg.Minio.Bucket)
	return nil
}

func (app *Application) initServices() {
	scheme := app.cfg.Directory.PasswordScheme

	app.authService = &service.AuthService{Store: app.db, PasswordScheme: scheme}
	app.businessService = &service.BusinessService{Store: app.db}
	app.reviewService = &service.ReviewService{Store: app.db}
	app.adminService = &service.AdminService{Store: app.db}
	app.debugService = &debug.Service{
		Store:          app.db,
		Logs:           app.logs,
		PasswordScheme: scheme,
		Version:        BuildVersion,
		Env:            app.cfg.Env,
		Started:        app.started,
		Features: map[string]bool{
			"redis_sessions": app.redis != nil,
			"minio_photos":   app.pingers["photos"] != nil,
			"seed":           app.cfg.Directory.Seed,
		},
	}
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(httpapi.Options{
		Store:         app.db,
		Signer:        app.signer,
		Verifier:      app.verifier,
		Sessions:      app.sessions,
		Photos:        app.photos,
		PhotoMaxBytes: app.cfg.PhotoMaxBytes,
		Pingers:       app.pingers,
		SessionTTL:    app.cfg.Directory.SessionTTL,
		Issuer:        app.cfg.Directory.Issuer,
		Version:       BuildVersion,
		RateLimits:    app.cfg.RateLimits,
		Logger:        app.logger,
	})

	router.AuthService = app.authService
	router.BusinessService = app.businessService
	router.ReviewService = app.reviewService
	router.AdminService = app.adminService
	router.DebugService = app.debugService
	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
