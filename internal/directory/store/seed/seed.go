// Package seed holds the demonstration records loaded into an empty store
// and re-imported on demand from the debug tooling.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/directory/internal/directory/domain"
	"github.com/aussiebroadwan/directory/internal/directory/store"
	"github.com/aussiebroadwan/directory/pkg/cryptox"
	"github.com/aussiebroadwan/directory/pkg/slogx"
)

// Sample record ids are stable so a re-import can tell which records are
// already present.
const (
	AdminID    = "sample-user-admin"
	OwnerID    = "sample-user-owner"
	AlexID     = "sample-user-alex"
	SamID      = "sample-user-sam"
	CafeID     = "sample-business-cafe"
	BookshopID = "sample-business-bookshop"
	GymID      = "sample-business-gym"
)

// Data is a full set of sample records.
type Data struct {
	Users      []domain.User
	Businesses []domain.Business
	Reviews    []domain.Review
}

// Result counts the records Import inserted.
type Result struct {
	Users      int `json:"users"`
	Businesses int `json:"businesses"`
	Reviews    int `json:"reviews"`
}

// Sample builds the demonstration data set. Every account shares
// cryptox.DemoPassword.
func Sample(now time.Time) (Data, error) {
	now = now.UTC()
	day := 24 * time.Hour

	user := func(id, email, name string, role domain.Role) (domain.User, error) {
		hash, err := cryptox.DefaultPasswordHash()
		if err != nil {
			return domain.User{}, err
		}
		return domain.User{
			ID:           id,
			Email:        email,
			DisplayName:  name,
			Role:         role,
			PasswordHash: hash,
			Status:       domain.StatusActive,
			Profile:      domain.Document{},
			CreatedAt:    now.Add(-30 * day),
			UpdatedAt:    now.Add(-30 * day),
		}, nil
	}

	var d Data
	for _, u := range []struct {
		id, email, name string
		role            domain.Role
	}{
		{AdminID, "admin@example.com", "Directory Admin", domain.RoleAdmin},
		{OwnerID, "owner@example.com", "Jordan Owner", domain.RoleBusiness},
		{AlexID, "alex@example.com", "Alex", domain.RoleUser},
		{SamID, "sam@example.com", "Sam", domain.RoleUser},
	} {
		rec, err := user(u.id, u.email, u.name, u.role)
		if err != nil {
			return Data{}, fmt.Errorf("seed: hash password: %w", err)
		}
		d.Users = append(d.Users, rec)
	}
	d.Users[2].Profile = domain.Document{"pronouns": "they/them", "city": "Sydney"}

	d.Businesses = []domain.Business{
		{
			ID:            CafeID,
			Name:          "Rainbow Bean Cafe",
			Description:   "Neighbourhood cafe with step-free access and a quiet room.",
			Category:      "cafe",
			Address:       "12 Oxford St, Darlinghurst NSW",
			Phone:         "+61 2 9000 0001",
			Website:       "https://rainbowbean.example.com",
			Hours:         domain.Document{"mon-fri": "07:00-16:00", "sat-sun": "08:00-14:00"},
			Location:      &domain.Location{Latitude: -33.8791, Longitude: 151.2161},
			Amenities:     []string{"wifi", "quiet room", "gender-neutral toilets"},
			Photos:        []string{},
			LGBTQFriendly: true,
			Accessibility: domain.Document{"wheelchair": true, "stepFree": true, "accessibleToilet": true},
			Verified:      true,
			OwnerID:       OwnerID,
			CreatedAt:     now.Add(-20 * day),
			UpdatedAt:     now.Add(-20 * day),
		},
		{
			ID:            BookshopID,
			Name:          "Open Pages Books",
			Description:   "Independent bookshop with a large-print section.",
			Category:      "retail",
			Address:       "88 King St, Newtown NSW",
			Hours:         domain.Document{"daily": "10:00-18:00"},
			Location:      &domain.Location{Latitude: -33.8967, Longitude: 151.1795},
			Amenities:     []string{"large print", "seating"},
			Photos:        []string{},
			LGBTQFriendly: true,
			Accessibility: domain.Document{"wheelchair": true, "hearingLoop": true},
			OwnerID:       OwnerID,
			CreatedAt:     now.Add(-15 * day),
			UpdatedAt:     now.Add(-15 * day),
		},
		{
			ID:            GymID,
			Name:          "Strong Together Gym",
			Description:   "Inclusive gym with adaptive equipment.",
			Category:      "fitness",
			Address:       "5 Crown St, Surry Hills NSW",
			Amenities:     []string{"adaptive equipment", "showers"},
			Photos:        []string{},
			Accessibility: domain.Document{"wheelchair": false},
			OwnerID:       OwnerID,
			CreatedAt:     now.Add(-10 * day),
			UpdatedAt:     now.Add(-10 * day),
		},
	}

	review := func(id, businessID, userID string, rating int, comment string, age time.Duration) domain.Review {
		return domain.Review{
			ID:         id,
			BusinessID: businessID,
			UserID:     userID,
			Rating:     rating,
			Comment:    comment,
			Photos:     []string{},
			CreatedAt:  now.Add(-age),
			UpdatedAt:  now.Add(-age),
		}
	}
	d.Reviews = []domain.Review{
		review("sample-review-1", CafeID, AlexID, 5, "Staff were lovely and the ramp is great.", 9*day),
		review("sample-review-2", CafeID, SamID, 4, "Good coffee, gets busy at lunch.", 8*day),
		review("sample-review-3", BookshopID, AlexID, 4, "Great large-print range.", 5*day),
	}
	d.Reviews[0].Response = &domain.BusinessResponse{
		ID:         "sample-response-1",
		ReviewID:   "sample-review-1",
		BusinessID: CafeID,
		OwnerID:    OwnerID,
		OwnerName:  "Jordan Owner",
		Message:    "Thanks Alex, see you soon!",
		CreatedAt:  now.Add(-7 * day),
		UpdatedAt:  now.Add(-7 * day),
	}

	return d, nil
}

// Apply loads the sample data into an empty store. It satisfies
// store.SeedFunc.
func Apply(ctx context.Context, tx store.Tx) error {
	d, err := Sample(time.Now())
	if err != nil {
		return err
	}
	for _, u := range d.Users {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return fmt.Errorf("seed user %s: %w", u.ID, err)
		}
	}
	for _, b := range d.Businesses {
		if err := tx.Businesses().CreateBusiness(ctx, b); err != nil {
			return fmt.Errorf("seed business %s: %w", b.ID, err)
		}
	}
	for _, r := range d.Reviews {
		if err := tx.Reviews().CreateReview(ctx, r); err != nil {
			return fmt.Errorf("seed review %s: %w", r.ID, err)
		}
	}
	return nil
}

// Import inserts every sample record that is not already stored, in one
// transaction. Users whose email is taken by another account are skipped
// along with their reviews.
func Import(ctx context.Context, s store.Store) (Result, error) {
	log := slogx.Category(ctx, "database")

	d, err := Sample(time.Now())
	if err != nil {
		return Result{}, err
	}

	var res Result
	err = s.WithTx(ctx, func(tx store.Tx) error {
		res = Result{}
		skipped := map[string]bool{}

		for _, u := range d.Users {
			_, err := tx.Users().GetUserByID(ctx, u.ID)
			found, err := exists(err)
			if err != nil {
				return err
			}
			if found {
				continue
			}
			_, err = tx.Users().GetUserByEmail(ctx, u.Email)
			taken, err := exists(err)
			if err != nil {
				return err
			}
			if taken {
				skipped[u.ID] = true
				log.Warn("sample user email in use, skipping", slog.String("email", u.Email))
				continue
			}
			if err := tx.Users().CreateUser(ctx, u); err != nil {
				return fmt.Errorf("import user %s: %w", u.ID, err)
			}
			res.Users++
		}

		for _, b := range d.Businesses {
			_, err := tx.Businesses().GetBusinessByID(ctx, b.ID)
			found, err := exists(err)
			if err != nil {
				return err
			}
			if found {
				continue
			}
			if err := tx.Businesses().CreateBusiness(ctx, b); err != nil {
				return fmt.Errorf("import business %s: %w", b.ID, err)
			}
			res.Businesses++
		}

		for _, r := range d.Reviews {
			if skipped[r.UserID] {
				continue
			}
			_, err := tx.Reviews().GetReviewByID(ctx, r.ID)
			found, err := exists(err)
			if err != nil {
				return err
			}
			if found {
				continue
			}
			if err := tx.Reviews().CreateReview(ctx, r); err != nil {
				return fmt.Errorf("import review %s: %w", r.ID, err)
			}
			res.Reviews++
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	log.Info("sample data imported",
		slog.Int("users", res.Users),
		slog.Int("businesses", res.Businesses),
		slog.Int("reviews", res.Reviews),
	)
	return res, nil
}

// exists folds the error of a lookup into a found flag.
func exists(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
