package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/directory/internal/directory/domain"
	"github.com/aussiebroadwan/directory/internal/directory/store"
	"github.com/aussiebroadwan/directory/internal/directory/store/drivers/sqlite"
	"github.com/aussiebroadwan/directory/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	return s
}

func newUser(email string, role domain.Role) domain.User {
	now := time.Now().UTC()
	return domain.User{
		ID:           idx.New().String(),
		Email:        email,
		DisplayName:  "Test User",
		Role:         role,
		PasswordHash: "salt:digest",
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func newBusiness(ownerID, category string) domain.Business {
	now := time.Now().UTC()
	return domain.Business{
		ID:            idx.New().String(),
		Name:          "Rainbow Cafe",
		Category:      category,
		Address:       "1 Pride St",
		Amenities:     []string{"wifi"},
		LGBTQFriendly: true,
		Accessibility: domain.Document{"wheelchair": true},
		Location:      &domain.Location{Latitude: -33.86, Longitude: 151.2},
		OwnerID:       ownerID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func newReview(businessID, userID string, rating int) domain.Review {
	now := time.Now().UTC()
	return domain.Review{
		ID:         idx.New().String(),
		BusinessID: businessID,
		UserID:     userID,
		Rating:     rating,
		Comment:    "nice",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestStore_NotInitialized(t *testing.T) {
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	_, err = s.Users().GetUserByID(ctx, "x")
	require.ErrorIs(t, err, store.ErrNotInitialized)
	_, err = s.Businesses().ListBusinesses(ctx, store.BusinessFilter{})
	require.ErrorIs(t, err, store.ErrNotInitialized)
	require.ErrorIs(t, s.Reviews().DeleteReview(ctx, "x"), store.ErrNotInitialized)
	_, err = s.Tx(ctx)
	require.ErrorIs(t, err, store.ErrNotInitialized)

	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.ApplyMigrations(), "re-applying is a no-op")
	empty, err := s.Users().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)
	require.Equal(t, "sqlite", s.Driver())
}

func TestUsers_CRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := newUser("Alex@Example.com ", domain.RoleUser)
	u.Profile = domain.Document{"pronouns": "they/them"}
	require.NoError(t, s.Users().CreateUser(ctx, u))

	got, err := s.Users().GetUserByEmail(ctx, "alex@example.COM")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, "alex@example.com", got.Email)
	require.Equal(t, "they/them", got.Profile["pronouns"])
	require.Nil(t, got.LastLoginAt)
	require.WithinDuration(t, u.CreatedAt, got.CreatedAt, time.Microsecond)

	t.Run("duplicate email", func(t *testing.T) {
		err := s.Users().CreateUser(ctx, newUser("alex@example.com", domain.RoleUser))
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("duplicate id", func(t *testing.T) {
		dup := newUser("other@example.com", domain.RoleUser)
		dup.ID = u.ID
		require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("update upserts", func(t *testing.T) {
		now := time.Now().UTC()
		got.LastLoginAt = &now
		got.Status = domain.StatusSuspended
		require.NoError(t, s.Users().UpdateUser(ctx, got))

		again, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, domain.StatusSuspended, again.Status)
		require.NotNil(t, again.LastLoginAt)

		fresh := newUser("fresh@example.com", domain.RoleAdmin)
		require.NoError(t, s.Users().UpdateUser(ctx, fresh))
		_, err = s.Users().GetUserByID(ctx, fresh.ID)
		require.NoError(t, err)
	})

	t.Run("list newest first", func(t *testing.T) {
		users, err := s.Users().ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		require.Equal(t, "fresh@example.com", users[0].Email)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Users().DeleteUser(ctx, u.ID))
		_, err := s.Users().GetUserByID(ctx, u.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
		require.ErrorIs(t, s.Users().DeleteUser(ctx, u.ID), store.ErrNotFound)
	})
}

func TestBusinesses_ListFilters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	cafe := newBusiness("owner-1", "cafe")
	bar := newBusiness("owner-2", "bar")
	bar.LGBTQFriendly = false
	bar.Verified = true
	require.NoError(t, s.Businesses().CreateBusiness(ctx, cafe))
	require.NoError(t, s.Businesses().CreateBusiness(ctx, bar))

	tests := []struct {
		name   string
		filter store.BusinessFilter
		want   []string
	}{
		{"all", store.BusinessFilter{}, []string{bar.ID, cafe.ID}},
		{"category", store.BusinessFilter{Category: "cafe"}, []string{cafe.ID}},
		{"lgbtq", store.BusinessFilter{LGBTQFriendly: true}, []string{cafe.ID}},
		{"verified", store.BusinessFilter{VerifiedOnly: true}, []string{bar.ID}},
		{"none", store.BusinessFilter{Category: "gym"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Businesses().ListBusinesses(ctx, tt.filter)
			require.NoError(t, err)
			ids := []string{}
			for _, b := range got {
				ids = append(ids, b.ID)
			}
			require.Equal(t, tt.want, ids)
		})
	}

	owned, err := s.Businesses().ListBusinessesByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, owned, 1)
	require.Equal(t, []string{"wifi"}, owned[0].Amenities)
	require.Equal(t, []string{}, owned[0].Photos)
	require.Equal(t, true, owned[0].Accessibility["wheelchair"])
	require.InDelta(t, -33.86, owned[0].Location.Latitude, 1e-9)
}

func TestReviews_RecomputeRating(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	b := newBusiness("owner", "cafe")
	require.NoError(t, s.Businesses().CreateBusiness(ctx, b))

	assertRating := func(avg float64, count int) {
		t.Helper()
		got, err := s.Businesses().GetBusinessByID(ctx, b.ID)
		require.NoError(t, err)
		require.InDelta(t, avg, got.AverageRating, 1e-9)
		require.Equal(t, count, got.ReviewCount)
	}

	r1 := newReview(b.ID, "u1", 5)
	r2 := newReview(b.ID, "u2", 4)
	r3 := newReview(b.ID, "u3", 4)
	for _, r := range []domain.Review{r1, r2, r3} {
		require.NoError(t, s.Reviews().CreateReview(ctx, r))
	}
	assertRating(4.3, 3)

	r3.Rating = 1
	require.NoError(t, s.Reviews().UpdateReview(ctx, r3))
	assertRating(3.3, 3)

	require.NoError(t, s.Reviews().DeleteReview(ctx, r1.ID))
	assertRating(2.5, 2)
	require.ErrorIs(t, s.Reviews().DeleteReview(ctx, r1.ID), store.ErrNotFound)

	require.NoError(t, s.Reviews().DeleteReview(ctx, r2.ID))
	require.NoError(t, s.Reviews().DeleteReview(ctx, r3.ID))
	assertRating(0, 0)

	t.Run("derived fields are never copied from input", func(t *testing.T) {
		stale := b
		stale.AverageRating = 5
		stale.ReviewCount = 99
		stale.UpdatedAt = time.Now().UTC()
		require.NoError(t, s.Businesses().UpdateBusiness(ctx, stale))
		assertRating(0, 0)
	})

	t.Run("missing business", func(t *testing.T) {
		err := s.Reviews().CreateReview(ctx, newReview("missing", "u1", 3))
		require.ErrorIs(t, err, store.ErrNotFound)
		require.ErrorIs(t, s.Businesses().UpdateBusinessRating(ctx, "missing"), store.ErrNotFound)
	})

	t.Run("rating out of range rejected by schema", func(t *testing.T) {
		require.Error(t, s.Reviews().CreateReview(ctx, newReview(b.ID, "u1", 6)))
		assertRating(0, 0)
	})
}

func TestReviews_ResponseAndCascade(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	b := newBusiness("owner", "cafe")
	require.NoError(t, s.Businesses().CreateBusiness(ctx, b))

	r := newReview(b.ID, "u1", 4)
	r.Photos = []string{"photo-1"}
	require.NoError(t, s.Reviews().CreateReview(ctx, r))

	r.Response = &domain.BusinessResponse{
		ID: idx.New().String(), ReviewID: r.ID, BusinessID: b.ID,
		OwnerID: "owner", OwnerName: "Owner", Message: "thanks!",
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.Reviews().UpdateReview(ctx, r))

	got, err := s.Reviews().GetReviewByID(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Response)
	require.Equal(t, "thanks!", got.Response.Message)
	require.Equal(t, []string{"photo-1"}, got.Photos)

	byAuthor, err := s.Reviews().ListReviewsByAuthor(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)

	require.NoError(t, s.Businesses().DeleteBusiness(ctx, b.ID))
	all, err := s.Reviews().ListReviews(ctx)
	require.NoError(t, err)
	require.Empty(t, all, "reviews cascade with their business")
}

func TestStore_WithTx(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := newUser("tx@example.com", domain.RoleUser)
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Users().CreateUser(ctx, u))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Users().GetUserByID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound, "rolled back")

	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		b := newBusiness(u.ID, "cafe")
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		if err := tx.Businesses().CreateBusiness(ctx, b); err != nil {
			return err
		}
		return tx.Reviews().CreateReview(ctx, newReview(b.ID, u.ID, 5))
	}))

	reviews, err := s.Reviews().ListReviewsByAuthor(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	require.NoError(t, s.Ping(ctx))
}
