package seed_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/directory/internal/directory/domain"
	"github.com/aussiebroadwan/directory/internal/directory/store"
	"github.com/aussiebroadwan/directory/internal/directory/store/drivers/sqlite"
	"github.com/aussiebroadwan/directory/internal/directory/store/seed"
	"github.com/aussiebroadwan/directory/pkg/cryptox"
	"github.com/aussiebroadwan/directory/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSample(t *testing.T) {
	d, err := seed.Sample(time.Now())
	require.NoError(t, err)
	require.NotEmpty(t, d.Users)
	require.NotEmpty(t, d.Businesses)
	require.NotEmpty(t, d.Reviews)

	var admins int
	for _, u := range d.Users {
		require.True(t, cryptox.VerifyPassword(cryptox.DemoPassword, u.PasswordHash), u.Email)
		if u.IsAdmin() {
			admins++
		}
	}
	require.Equal(t, 1, admins)

	for _, r := range d.Reviews {
		require.True(t, domain.ValidRating(r.Rating))
	}
}

func TestInitializeSeedsEmptyStore(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, store.Initialize(ctx, s, seed.Apply))

	users, err := s.Users().ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 4)

	cafe, err := s.Businesses().GetBusinessByID(ctx, seed.CafeID)
	require.NoError(t, err)
	require.Equal(t, 2, cafe.ReviewCount)
	require.InDelta(t, 4.5, cafe.AverageRating, 1e-9)

	gym, err := s.Businesses().GetBusinessByID(ctx, seed.GymID)
	require.NoError(t, err)
	require.Zero(t, gym.ReviewCount)

	// A second initialize leaves the populated store alone.
	require.NoError(t, store.Initialize(ctx, s, seed.Apply))
	users, err = s.Users().ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 4)
}

func TestInitializeSkipsSeedWhenUsersExist(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.ApplyMigrations())

	now := time.Now().UTC()
	require.NoError(t, s.Users().CreateUser(ctx, domain.User{
		ID: idx.New().String(), Email: "a@x.com", Role: domain.RoleUser,
		PasswordHash: "s:d", Status: domain.StatusActive, CreatedAt: now, UpdatedAt: now,
	}))

	require.NoError(t, store.Initialize(ctx, s, seed.Apply))

	businesses, err := s.Businesses().ListBusinesses(ctx, store.BusinessFilter{})
	require.NoError(t, err)
	require.Empty(t, businesses)
}

func TestInitializeSwallowsSeedFailure(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	failing := func(ctx context.Context, tx store.Tx) error {
		if err := seed.Apply(ctx, tx); err != nil {
			return err
		}
		return context.Canceled
	}
	require.NoError(t, store.Initialize(ctx, s, failing))

	// The failed seed transaction was rolled back.
	empty, err := s.Users().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.ApplyMigrations())

	// Someone else already registered with a sample user's address.
	now := time.Now().UTC()
	require.NoError(t, s.Users().CreateUser(ctx, domain.User{
		ID: idx.New().String(), Email: "alex@example.com", Role: domain.RoleUser,
		PasswordHash: "s:d", Status: domain.StatusActive, CreatedAt: now, UpdatedAt: now,
	}))

	res, err := seed.Import(ctx, s)
	require.NoError(t, err)
	require.Equal(t, seed.Result{Users: 3, Businesses: 3, Reviews: 1}, res)

	cafe, err := s.Businesses().GetBusinessByID(ctx, seed.CafeID)
	require.NoError(t, err)
	require.Equal(t, 1, cafe.ReviewCount)
	require.InDelta(t, 4.0, cafe.AverageRating, 1e-9)

	// Re-importing inserts nothing.
	res, err = seed.Import(ctx, s)
	require.NoError(t, err)
	require.Equal(t, seed.Result{}, res)
}
