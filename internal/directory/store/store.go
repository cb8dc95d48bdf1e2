package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/directory/internal/directory/domain"
)

var (
	ErrNotFound       = errors.New("store: not found")
	ErrAlreadyExists  = errors.New("store: already exists")
	ErrNotInitialized = errors.New("store: not initialized")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this and are chosen at construction time. Sub-repositories are
// methods so a transaction can hand out the same repos bound to itself.
type Store interface {
	Users() Users
	Businesses() Businesses
	Reviews() Reviews

	// ApplyMigrations creates or upgrades the schema. Every repository call
	// fails with ErrNotInitialized until it has succeeded once.
	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error

	// Driver names the backing implementation ("sqlite", "postgres").
	Driver() string
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks up by normalized email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// ListUsers returns every user, newest first.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// CreateUser inserts a new user. A duplicate id or email yields
	// ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUser writes the whole record, inserting it when missing.
	UpdateUser(ctx context.Context, u domain.User) error

	DeleteUser(ctx context.Context, id string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

// BusinessFilter narrows ListBusinesses. Zero values match everything.
type BusinessFilter struct {
	Category      string
	LGBTQFriendly bool
	VerifiedOnly  bool
}

type Businesses interface {
	GetBusinessByID(ctx context.Context, id string) (domain.Business, error)

	// ListBusinesses returns matching businesses, newest first.
	ListBusinesses(ctx context.Context, f BusinessFilter) ([]domain.Business, error)

	ListBusinessesByOwner(ctx context.Context, ownerID string) ([]domain.Business, error)

	// CreateBusiness inserts a new business. Derived rating fields start at
	// zero regardless of the input.
	CreateBusiness(ctx context.Context, b domain.Business) error

	// UpdateBusiness writes the record, inserting it when missing. Derived
	// rating fields are recomputed from the stored reviews, never copied.
	UpdateBusiness(ctx context.Context, b domain.Business) error

	// DeleteBusiness removes the business and, by cascade, its reviews.
	DeleteBusiness(ctx context.Context, id string) error

	// UpdateBusinessRating recomputes AverageRating and ReviewCount from the
	// business's reviews and stamps UpdatedAt.
	UpdateBusinessRating(ctx context.Context, id string) error
}

// Reviews writes recompute the owning business's rating in the same
// transaction.
type Reviews interface {
	GetReviewByID(ctx context.Context, id string) (domain.Review, error)

	// ListReviews returns every review, newest first.
	ListReviews(ctx context.Context) ([]domain.Review, error)

	ListReviewsByBusiness(ctx context.Context, businessID string) ([]domain.Review, error)
	ListReviewsByAuthor(ctx context.Context, userID string) ([]domain.Review, error)

	// CreateReview inserts a review. A missing business yields ErrNotFound.
	CreateReview(ctx context.Context, r domain.Review) error

	// UpdateReview writes the whole record, inserting it when missing.
	UpdateReview(ctx context.Context, r domain.Review) error

	DeleteReview(ctx context.Context, id string) error
}
