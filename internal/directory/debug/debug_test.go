package debug

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aussiebroadwan/directory/internal/directory/service"
	"github.com/aussiebroadwan/directory/internal/directory/store"
	"github.com/aussiebroadwan/directory/internal/directory/store/drivers/sqlite"
	"github.com/aussiebroadwan/directory/internal/directory/store/seed"
	"github.com/aussiebroadwan/directory/pkg/cryptox"
	"github.com/aussiebroadwan/directory/pkg/slogx"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ctx   context.Context
	svc   *Service
	ring  *slogx.Ring
	admin *service.Session
	user  *service.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ring := slogx.NewRing(100)
	ctx := slogx.WithContext(context.Background(), slog.New(ring.Handler(nil)))

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, store.Initialize(ctx, s, seed.Apply))

	auth := &service.AuthService{Store: s}
	admin := service.NewSession()
	_, err = auth.SignIn(ctx, admin, "admin@example.com", cryptox.DemoPassword)
	require.NoError(t, err)
	user := service.NewSession()
	_, err = auth.SignIn(ctx, user, "alex@example.com", cryptox.DemoPassword)
	require.NoError(t, err)

	return &fixture{
		ctx:  ctx,
		ring: ring,
		svc: &Service{
			Store:    s,
			Logs:     ring,
			Version:  "test",
			Env:      "test",
			Started:  time.Now().Add(-time.Minute),
			Features: map[string]bool{"redis": false},
		},
		admin: admin,
		user:  user,
	}
}

func TestEveryOperationRequiresAdmin(t *testing.T) {
	f := newFixture(t)

	calls := map[string]func(sess *service.Session) error{
		"GetSystemInfo": func(sess *service.Session) error {
			_, err := f.svc.GetSystemInfo(f.ctx, sess)
			return err
		},
		"GetDatabaseStats": func(sess *service.Session) error {
			_, err := f.svc.GetDatabaseStats(f.ctx, sess)
			return err
		},
		"ExecuteQuery": func(sess *service.Session) error {
			_, err := f.svc.ExecuteQuery(f.ctx, sess, "SELECT * FROM users")
			return err
		},
		"RunPerformanceTest": func(sess *service.Session) error {
			_, err := f.svc.RunPerformanceTest(f.ctx, sess)
			return err
		},
		"ExportData": func(sess *service.Session) error {
			_, err := f.svc.ExportData(f.ctx, sess)
			return err
		},
		"ImportSampleData": func(sess *service.Session) error {
			_, err := f.svc.ImportSampleData(f.ctx, sess)
			return err
		},
		"GetLogs": func(sess *service.Session) error {
			_, err := f.svc.GetLogs(f.ctx, sess, LogFilter{})
			return err
		},
		"ClearLogs": func(sess *service.Session) error {
			return f.svc.ClearLogs(f.ctx, sess)
		},
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, call(service.NewSession()), service.ErrNoSession)
			require.ErrorIs(t, call(f.user), service.ErrPermissionDenied)
			require.NoError(t, call(f.admin))
		})
	}
}

func TestGetSystemInfo(t *testing.T) {
	f := newFixture(t)

	info, err := f.svc.GetSystemInfo(f.ctx, f.admin)
	require.NoError(t, err)
	require.Equal(t, "sqlite", info.Driver)
	require.NotEmpty(t, info.GoVersion)
	require.Positive(t, info.NumCPU)
	require.Greater(t, info.UptimeSeconds, 59.0)
	require.Equal(t, 100, info.LogCapacity)
	require.Contains(t, info.Features, "redis")
}

func TestGetDatabaseStats(t *testing.T) {
	f := newFixture(t)

	st, err := f.svc.GetDatabaseStats(f.ctx, f.admin)
	require.NoError(t, err)

	require.Equal(t, 4, st.Users.Total)
	require.Equal(t, 1, st.Users.ByRole["admin"])
	require.Equal(t, 2, st.Users.ByRole["user"])
	require.Equal(t, 4, st.Users.ByStatus["active"])

	require.Equal(t, 3, st.Businesses.Total)
	require.Equal(t, 1, st.Businesses.ByCategory["cafe"])
	require.Equal(t, 1, st.Businesses.Verified)
	require.Equal(t, 2, st.Businesses.LGBTQFriendly)

	require.Equal(t, 3, st.Reviews.Total)
	require.Equal(t, 2, st.Reviews.ByRating[4])
	require.Equal(t, 1, st.Reviews.WithResponse)
	require.InDelta(t, 4.3, st.Reviews.AverageRating, 1e-9)
}

func TestExecuteQuery(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		query     string
		table     string
		count     int
		wantRows  bool
		wantError bool
	}{
		{"SELECT * FROM users", "users", 4, true, false},
		{"select * from Businesses;", "businesses", 3, true, false},
		{"  SELECT COUNT(*) FROM reviews  ", "reviews", 3, false, false},
		{"SELECT count( * ) FROM users;", "users", 4, false, false},
		{"select count(*) as n from users;", "users", 4, false, false},
		{"SELECT COUNT(*) AS total FROM businesses", "businesses", 3, false, false},
		{"SELECT COUNT(*) AS FROM users", "", 0, false, true},
		{"SELECT * AS n FROM users", "", 0, false, true},
		{"SELECT * FROM secrets", "", 0, false, true},
		{"SELECT id FROM users", "", 0, false, true},
		{"DELETE FROM users", "", 0, false, true},
		{"SELECT * FROM users WHERE role = 'admin'", "", 0, false, true},
		{"SELECT * FROM users; DROP TABLE users", "", 0, false, true},
		{"", "", 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res, err := f.svc.ExecuteQuery(f.ctx, f.admin, tt.query)
			if tt.wantError {
				require.ErrorIs(t, err, ErrUnsupportedQuery)
				require.ErrorContains(t, err, "SELECT COUNT(*) [AS alias] FROM")
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.table, res.Table)
			require.Equal(t, tt.count, res.Count)
			if tt.wantRows {
				require.NotNil(t, res.Rows)
			} else {
				require.Nil(t, res.Rows)
			}
		})
	}
}

func TestRunPerformanceTest(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.RunPerformanceTest(f.ctx, f.admin)
	require.NoError(t, err)
	require.GreaterOrEqual(t, res.TotalMS, res.ReadMS)
	require.GreaterOrEqual(t, res.TotalMS, res.AuthMS)

	// The probe listing does not survive.
	businesses, err := f.svc.Store.Businesses().ListBusinesses(f.ctx, store.BusinessFilter{})
	require.NoError(t, err)
	require.Len(t, businesses, 3)
}

func TestExportAndImport(t *testing.T) {
	f := newFixture(t)

	out, err := f.svc.ExportData(f.ctx, f.admin)
	require.NoError(t, err)
	require.Len(t, out.Users, 4)
	require.Len(t, out.Businesses, 3)
	require.Len(t, out.Reviews, 3)
	for _, u := range out.Users {
		require.Empty(t, u.PasswordHash)
	}

	// Everything is already present.
	res, err := f.svc.ImportSampleData(f.ctx, f.admin)
	require.NoError(t, err)
	require.Equal(t, seed.Result{}, res)

	require.NoError(t, f.svc.Store.Businesses().DeleteBusiness(f.ctx, seed.CafeID))
	res, err = f.svc.ImportSampleData(f.ctx, f.admin)
	require.NoError(t, err)
	require.Equal(t, seed.Result{Businesses: 1, Reviews: 2}, res)

	cafe, err := f.svc.Store.Businesses().GetBusinessByID(f.ctx, seed.CafeID)
	require.NoError(t, err)
	require.Equal(t, 2, cafe.ReviewCount)
}

func TestLogs(t *testing.T) {
	f := newFixture(t)
	f.ring.Clear()

	log := slogx.FromContext(f.ctx)
	log.Debug("cache warm", slogx.CategoryKey, "cache")
	log.Info("user signed in", slogx.CategoryKey, "auth", "user_id", "u1")
	log.Warn("slow query", slogx.CategoryKey, "database", "ms", 250)
	log.Error("sign-in failed", slogx.CategoryKey, "auth")

	all, err := f.svc.GetLogs(f.ctx, f.admin, LogFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	require.Equal(t, "sign-in failed", all[0].Message, "newest first")

	tests := []struct {
		name   string
		filter LogFilter
		want   []string
	}{
		{"level", LogFilter{Level: "warn"}, []string{"sign-in failed", "slow query"}},
		{"category", LogFilter{Category: "AUTH"}, []string{"sign-in failed", "user signed in"}},
		{"text", LogFilter{Text: "SIGN"}, []string{"sign-in failed", "user signed in"}},
		{"limit", LogFilter{Limit: 1}, []string{"sign-in failed"}},
		{"combined", LogFilter{Level: "info", Category: "auth", Text: "in"}, []string{"sign-in failed", "user signed in"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.GetLogs(f.ctx, f.admin, tt.filter)
			require.NoError(t, err)
			msgs := make([]string, len(got))
			for i, e := range got {
				msgs[i] = e.Message
			}
			require.Equal(t, tt.want, msgs)
		})
	}

	require.NoError(t, f.svc.ClearLogs(f.ctx, f.admin))
	remaining, err := f.svc.GetLogs(f.ctx, f.admin, LogFilter{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	require.Equal(t, "logs cleared", remaining[0].Message)
	require.Equal(t, "debug", remaining[0].Category)
}

func TestGetLogsWithoutRing(t *testing.T) {
	f := newFixture(t)
	f.svc.Logs = nil

	got, err := f.svc.GetLogs(f.ctx, f.admin, LogFilter{})
	require.NoError(t, err)
	require.Empty(t, got)
	require.NoError(t, f.svc.ClearLogs(f.ctx, f.admin))
}
