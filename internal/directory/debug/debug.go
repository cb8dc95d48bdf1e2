// Package debug backs the admin diagnostics screen. It reports runtime and
// database state and serves the captured log view.
// Every operation re-checks that the caller is an admin.
package debug

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/aussiebroadwan/directory/internal/directory/domain"
	"github.com/aussiebroadwan/directory/internal/directory/service"
	"github.com/aussiebroadwan/directory/internal/directory/store"
	"github.com/aussiebroadwan/directory/internal/directory/store/seed"
	"github.com/aussiebroadwan/directory/pkg/cryptox"
	"github.com/aussiebroadwan/directory/pkg/idx"
	"github.com/aussiebroadwan/directory/pkg/slogx"
)

type Service struct {
	Store store.Store

	// Logs is the ring the application logger tees into. May be nil.
	Logs *slogx.Ring

	// PasswordScheme is exercised by the performance probe.
	PasswordScheme cryptox.Scheme

	Version  string
	Env      string
	Started  time.Time
	Features map[string]bool
}

type MemoryStats struct {
	AllocBytes      uint64 `json:"allocBytes"`
	TotalAllocBytes uint64 `json:"totalAllocBytes"`
	SysBytes        uint64 `json:"sysBytes"`
	NumGC           uint32 `json:"numGC"`
}

type SystemInfo struct {
	Version       string          `json:"version"`
	Env           string          `json:"env"`
	GoVersion     string          `json:"goVersion"`
	OS            string          `json:"os"`
	Arch          string          `json:"arch"`
	NumCPU        int             `json:"numCPU"`
	Goroutines    int             `json:"goroutines"`
	Hostname      string          `json:"hostname"`
	PID           int             `json:"pid"`
	StartedAt     time.Time       `json:"startedAt"`
	UptimeSeconds float64         `json:"uptimeSeconds"`
	Driver        string          `json:"driver"`
	Memory        MemoryStats     `json:"memory"`
	Features      map[string]bool `json:"features"`
	LogEntries    int             `json:"logEntries"`
	LogCapacity   int             `json:"logCapacity"`
}

// GetSystemInfo snapshots the running process.
func (s *Service) GetSystemInfo(ctx context.Context, sess *service.Session) (SystemInfo, error) {
	if _, err := sess.RequireAdmin(); err != nil {
		return SystemInfo{}, err
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	host, _ := os.Hostname()

	info := SystemInfo{
		Version:    s.Version,
		Env:        s.Env,
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		NumCPU:     runtime.NumCPU(),
		Goroutines: runtime.NumGoroutine(),
		Hostname:   host,
		PID:        os.Getpid(),
		StartedAt:  s.Started,
		Driver:     s.Store.Driver(),
		Memory: MemoryStats{
			AllocBytes:      ms.Alloc,
			TotalAllocBytes: ms.TotalAlloc,
			SysBytes:        ms.Sys,
			NumGC:           ms.NumGC,
		},
		Features: map[string]bool{},
	}
	if !s.Started.IsZero() {
		info.UptimeSeconds = time.Since(s.Started).Seconds()
	}
	for k, v := range s.Features {
		info.Features[k] = v
	}
	if s.Logs != nil {
		info.LogEntries = s.Logs.Len()
		info.LogCapacity = s.Logs.Capacity()
	}
	return info, nil
}

type UserStats struct {
	Total    int            `json:"total"`
	ByRole   map[string]int `json:"byRole"`
	ByStatus map[string]int `json:"byStatus"`
}

type BusinessStats struct {
	Total         int            `json:"total"`
	ByCategory    map[string]int `json:"byCategory"`
	Verified      int            `json:"verified"`
	LGBTQFriendly int            `json:"lgbtqFriendly"`
}

type ReviewStats struct {
	Total         int         `json:"total"`
	ByRating      map[int]int `json:"byRating"`
	AverageRating float64     `json:"averageRating"`
	WithResponse  int         `json:"withResponse"`
}

type DatabaseStats struct {
	Driver     string        `json:"driver"`
	Users      UserStats     `json:"users"`
	Businesses BusinessStats `json:"businesses"`
	Reviews    ReviewStats   `json:"reviews"`
}

// GetDatabaseStats derives counts and breakdowns from every stored record.
func (s *Service) GetDatabaseStats(ctx context.Context, sess *service.Session) (DatabaseStats, error) {
	if _, err := sess.RequireAdmin(); err != nil {
		return DatabaseStats{}, err
	}

	users, err := s.Store.Users().ListUsers(ctx)
	if err != nil {
		return DatabaseStats{}, err
	}
	businesses, err := s.Store.Businesses().ListBusinesses(ctx, store.BusinessFilter{})
	if err != nil {
		return DatabaseStats{}, err
	}
	reviews, err := s.Store.Reviews().ListReviews(ctx)
	if err != nil {
		return DatabaseStats{}, err
	}

	st := DatabaseStats{
		Driver:     s.Store.Driver(),
		Users:      UserStats{Total: len(users), ByRole: map[string]int{}, ByStatus: map[string]int{}},
		Businesses: BusinessStats{Total: len(businesses), ByCategory: map[string]int{}},
		Reviews:    ReviewStats{Total: len(reviews), ByRating: map[int]int{}},
	}
	for _, u := range users {
		st.Users.ByRole[string(u.Role)]++
		st.Users.ByStatus[string(u.Status)]++
	}
	for _, b := range businesses {
		category := b.Category
		if category == "" {
			category = "uncategorized"
		}
		st.Businesses.ByCategory[category]++
		if b.Verified {
			st.Businesses.Verified++
		}
		if b.LGBTQFriendly {
			st.Businesses.LGBTQFriendly++
		}
	}
	for _, r := range reviews {
		st.Reviews.ByRating[r.Rating]++
		if r.Response.Live() {
			st.Reviews.WithResponse++
		}
	}
	st.Reviews.AverageRating, _ = domain.Rating(reviews)
	return st, nil
}

type PerformanceResult struct {
	ReadMS  float64 `json:"readMs"`
	WriteMS float64 `json:"writeMs"`
	AuthMS  float64 `json:"authMs"`
	TotalMS float64 `json:"totalMs"`
}

// RunPerformanceTest times a full read, a throwaway write and delete, and
// a credential round trip. The numbers are informational only.
func (s *Service) RunPerformanceTest(ctx context.Context, sess *service.Session) (PerformanceResult, error) {
	admin, err := sess.RequireAdmin()
	if err != nil {
		return PerformanceResult{}, err
	}
	l := slogx.Category(ctx, "debug")

	var res PerformanceResult
	total := time.Now()

	start := time.Now()
	if _, err := s.Store.Businesses().ListBusinesses(ctx, store.BusinessFilter{}); err != nil {
		return PerformanceResult{}, err
	}
	res.ReadMS = ms(time.Since(start))

	start = time.Now()
	probe := domain.Business{
		ID:        idx.NewAt(start).String(),
		Name:      "performance probe",
		OwnerID:   admin.ID,
		Amenities: []string{},
		Photos:    []string{},
		CreatedAt: start.UTC(),
		UpdatedAt: start.UTC(),
	}
	if err := s.Store.Businesses().CreateBusiness(ctx, probe); err != nil {
		return PerformanceResult{}, err
	}
	if err := s.Store.Businesses().DeleteBusiness(ctx, probe.ID); err != nil {
		return PerformanceResult{}, err
	}
	res.WriteMS = ms(time.Since(start))

	start = time.Now()
	if _, err := s.Store.Users().GetUserByEmail(ctx, admin.Email); err != nil {
		return PerformanceResult{}, err
	}
	hash, err := cryptox.HashPasswordWith(s.PasswordScheme, cryptox.DemoPassword)
	if err != nil {
		return PerformanceResult{}, err
	}
	if !cryptox.VerifyPassword(cryptox.DemoPassword, hash) {
		l.Error("performance probe credential did not verify")
	}
	res.AuthMS = ms(time.Since(start))

	res.TotalMS = ms(time.Since(total))
	l.Info("performance test",
		slog.Float64("read_ms", res.ReadMS),
		slog.Float64("write_ms", res.WriteMS),
		slog.Float64("auth_ms", res.AuthMS),
	)
	return res, nil
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

type Export struct {
	ExportedAt time.Time         `json:"exportedAt"`
	Version    string            `json:"version"`
	Driver     string            `json:"driver"`
	Users      []domain.User     `json:"users"`
	Businesses []domain.Business `json:"businesses"`
	Reviews    []domain.Review   `json:"reviews"`
}

// ExportData dumps every record. Password credentials are never included.
func (s *Service) ExportData(ctx context.Context, sess *service.Session) (Export, error) {
	admin, err := sess.RequireAdmin()
	if err != nil {
		return Export{}, err
	}

	out := Export{ExportedAt: time.Now().UTC(), Version: s.Version, Driver: s.Store.Driver()}
	if out.Users, err = s.Store.Users().ListUsers(ctx); err != nil {
		return Export{}, err
	}
	for i := range out.Users {
		out.Users[i].PasswordHash = ""
	}
	if out.Businesses, err = s.Store.Businesses().ListBusinesses(ctx, store.BusinessFilter{}); err != nil {
		return Export{}, err
	}
	if out.Reviews, err = s.Store.Reviews().ListReviews(ctx); err != nil {
		return Export{}, err
	}

	slogx.Category(ctx, "debug").Info("data exported", slog.String("by", admin.ID))
	return out, nil
}

// ImportSampleData adds whichever demonstration records are missing.
func (s *Service) ImportSampleData(ctx context.Context, sess *service.Session) (seed.Result, error) {
	if _, err := sess.RequireAdmin(); err != nil {
		return seed.Result{}, err
	}
	return seed.Import(ctx, s.Store)
}
