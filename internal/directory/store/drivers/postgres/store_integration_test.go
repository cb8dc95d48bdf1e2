package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/directory/internal/directory/domain"
	"github.com/aussiebroadwan/directory/internal/directory/store"
	"github.com/aussiebroadwan/directory/internal/directory/store/drivers/postgres"
	"github.com/aussiebroadwan/directory/pkg/idx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// startPostgres returns a DSN for a throwaway database. DIRECTORY_TEST_PG_DSN
// reuses an existing server instead of starting a container.
func startPostgres(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in -short mode")
	}
	if dsn := os.Getenv("DIRECTORY_TEST_PG_DSN"); dsn != "" {
		return dsn
	}

	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	pgC, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("directory"),
		tcpostgres.WithUsername("directory"),
		tcpostgres.WithPassword("directory"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(context.Background()) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func TestPostgresStore(t *testing.T) {
	dsn := startPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	s, err := postgres.NewStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.Users().ListUsers(ctx)
	require.ErrorIs(t, err, store.ErrNotInitialized)

	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.ApplyMigrations())
	require.Equal(t, "postgres", s.Driver())

	now := time.Now().UTC()
	owner := domain.User{
		ID: idx.New().String(), Email: "Owner@Example.com", DisplayName: "Owner",
		Role: domain.RoleBusiness, PasswordHash: "salt:digest", Status: domain.StatusActive,
		Profile: domain.Document{"pronouns": "she/her"}, CreatedAt: now, UpdatedAt: now,
	}

	t.Run("users", func(t *testing.T) {
		require.NoError(t, s.Users().CreateUser(ctx, owner))

		got, err := s.Users().GetUserByEmail(ctx, "owner@example.com")
		require.NoError(t, err)
		require.Equal(t, owner.ID, got.ID)
		require.Equal(t, "she/her", got.Profile["pronouns"])

		dup := owner
		dup.ID = idx.New().String()
		require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)

		empty, err := s.Users().IsEmpty(ctx)
		require.NoError(t, err)
		require.False(t, empty)
	})

	b := domain.Business{
		ID: idx.New().String(), Name: "Queer Books", Category: "retail",
		Amenities: []string{"ramp"}, LGBTQFriendly: true, OwnerID: owner.ID,
		Location: &domain.Location{Latitude: 1.5, Longitude: 2.5}, CreatedAt: now, UpdatedAt: now,
	}

	t.Run("businesses and reviews", func(t *testing.T) {
		require.NoError(t, s.Businesses().CreateBusiness(ctx, b))

		ratings := []int{5, 4, 4}
		var ids []string
		for _, rating := range ratings {
			rv := domain.Review{
				ID: idx.New().String(), BusinessID: b.ID, UserID: owner.ID, Rating: rating,
				CreatedAt: now, UpdatedAt: now,
			}
			require.NoError(t, s.Reviews().CreateReview(ctx, rv))
			ids = append(ids, rv.ID)
		}

		got, err := s.Businesses().GetBusinessByID(ctx, b.ID)
		require.NoError(t, err)
		require.InDelta(t, 4.3, got.AverageRating, 1e-9)
		require.Equal(t, 3, got.ReviewCount)
		require.Equal(t, []string{"ramp"}, got.Amenities)

		require.NoError(t, s.Reviews().DeleteReview(ctx, ids[0]))
		got, err = s.Businesses().GetBusinessByID(ctx, b.ID)
		require.NoError(t, err)
		require.InDelta(t, 4.0, got.AverageRating, 1e-9)
		require.Equal(t, 2, got.ReviewCount)

		err = s.Reviews().CreateReview(ctx, domain.Review{
			ID: idx.New().String(), BusinessID: "missing", UserID: owner.ID, Rating: 3,
			CreatedAt: now, UpdatedAt: now,
		})
		require.ErrorIs(t, err, store.ErrNotFound)

		filtered, err := s.Businesses().ListBusinesses(ctx, store.BusinessFilter{LGBTQFriendly: true, Category: "retail"})
		require.NoError(t, err)
		require.Len(t, filtered, 1)
	})

	t.Run("concurrent review writes keep the rating current", func(t *testing.T) {
		busy := domain.Business{
			ID: idx.New().String(), Name: "Busy Cafe", Category: "cafe", OwnerID: owner.ID,
			CreatedAt: now, UpdatedAt: now,
		}
		require.NoError(t, s.Businesses().CreateBusiness(ctx, busy))

		const writers = 20
		errs := make(chan error, writers)
		var wg sync.WaitGroup
		sum := 0
		for i := range writers {
			rating := i%5 + 1
			sum += rating
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- s.Reviews().CreateReview(ctx, domain.Review{
					ID: idx.New().String(), BusinessID: busy.ID, UserID: owner.ID, Rating: rating,
					CreatedAt: now, UpdatedAt: now,
				})
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		got, err := s.Businesses().GetBusinessByID(ctx, busy.ID)
		require.NoError(t, err)
		require.Equal(t, writers, got.ReviewCount)
		require.InDelta(t, domain.RoundRating(sum, writers), got.AverageRating, 1e-9)

		require.NoError(t, s.Businesses().DeleteBusiness(ctx, busy.ID))
	})

	t.Run("transactions roll back", func(t *testing.T) {
		err := s.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Businesses().DeleteBusiness(ctx, b.ID); err != nil {
				return err
			}
			return store.ErrNotFound
		})
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = s.Businesses().GetBusinessByID(ctx, b.ID)
		require.NoError(t, err)
	})

	t.Run("delete cascades", func(t *testing.T) {
		require.NoError(t, s.Businesses().DeleteBusiness(ctx, b.ID))
		reviews, err := s.Reviews().ListReviewsByBusiness(ctx, b.ID)
		require.NoError(t, err)
		require.Empty(t, reviews)
	})
}
