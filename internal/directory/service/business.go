package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/directory/internal/directory/domain"
	"github.com/aussiebroadwan/directory/internal/directory/store"
	"github.com/aussiebroadwan/directory/pkg/idx"
	"github.com/aussiebroadwan/directory/pkg/slogx"
)

// BusinessInput carries the caller-editable fields of a listing. Nil fields
// are left unchanged on update. Verification, ownership and the rating
// fields are never taken from input.
type BusinessInput struct {
	Name          *string
	Description   *string
	Category      *string
	Address       *string
	Phone         *string
	Website       *string
	Hours         domain.Document
	Location      *domain.Location
	Amenities     []string
	Photos        []string
	LGBTQFriendly *bool
	Accessibility domain.Document
}

func (in BusinessInput) apply(b *domain.Business) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&b.Name, in.Name)
	set(&b.Description, in.Description)
	set(&b.Category, in.Category)
	set(&b.Address, in.Address)
	set(&b.Phone, in.Phone)
	set(&b.Website, in.Website)
	b.Category = strings.ToLower(b.Category)

	if in.Hours != nil {
		b.Hours = in.Hours
	}
	if in.Location != nil {
		loc := *in.Location
		b.Location = &loc
	}
	if in.Amenities != nil {
		b.Amenities = in.Amenities
	}
	if in.Photos != nil {
		b.Photos = in.Photos
	}
	if in.LGBTQFriendly != nil {
		b.LGBTQFriendly = *in.LGBTQFriendly
	}
	if in.Accessibility != nil {
		b.Accessibility = in.Accessibility
	}
}

func validateBusiness(b domain.Business) error {
	if b.Name == "" {
		return invalid("business name is required")
	}
	if loc := b.Location; loc != nil {
		if loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180 {
			return invalid("location is out of range")
		}
	}
	return nil
}

type BusinessService struct {
	Store store.Store
	Now   func() time.Time
}

// GetMyBusinesses lists the listings owned by the signed-in user.
func (s *BusinessService) GetMyBusinesses(ctx context.Context, sess *Session) ([]domain.Business, error) {
	u, err := sess.Require()
	if err != nil {
		return nil, err
	}
	return s.Store.Businesses().ListBusinessesByOwner(ctx, u.ID)
}

// CreateBusiness adds a listing owned by the signed-in user, who must hold
// the business or admin role. New listings start unverified.
func (s *BusinessService) CreateBusiness(ctx context.Context, sess *Session, in BusinessInput) (domain.Business, error) {
	u, err := currentUser(ctx, s.Store, sess)
	if err != nil {
		return domain.Business{}, err
	}
	if !u.CanManageBusinesses() {
		return domain.Business{}, ErrPermissionDenied
	}

	now := clock(s.Now)
	b := domain.Business{
		ID:        idx.NewAt(now).String(),
		OwnerID:   u.ID,
		Amenities: []string{},
		Photos:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.apply(&b)
	if err := validateBusiness(b); err != nil {
		return domain.Business{}, err
	}

	if err := s.Store.Businesses().CreateBusiness(ctx, b); err != nil {
		return domain.Business{}, storeErr(err)
	}
	slogx.Category(ctx, "business").Info("business created",
		slog.String("business_id", b.ID),
		slog.String("owner_id", u.ID),
	)
	return b, nil
}

// UpdateBusiness applies in to a listing the signed-in user owns, or any
// listing for admins.
func (s *BusinessService) UpdateBusiness(ctx context.Context, sess *Session, id string, in BusinessInput) (domain.Business, error) {
	_, b, err := s.editable(ctx, sess, id)
	if err != nil {
		return domain.Business{}, err
	}

	in.apply(&b)
	if err := validateBusiness(b); err != nil {
		return domain.Business{}, err
	}
	b.UpdatedAt = clock(s.Now)

	if err := s.Store.Businesses().UpdateBusiness(ctx, b); err != nil {
		return domain.Business{}, storeErr(err)
	}
	return s.GetBusinessByID(ctx, id)
}

// DeleteBusiness removes a listing and its reviews.
func (s *BusinessService) DeleteBusiness(ctx context.Context, sess *Session, id string) error {
	u, _, err := s.editable(ctx, sess, id)
	if err != nil {
		return err
	}
	if err := s.Store.Businesses().DeleteBusiness(ctx, id); err != nil {
		return storeErr(err)
	}
	slogx.Category(ctx, "business").Info("business deleted",
		slog.String("business_id", id),
		slog.String("by", u.ID),
	)
	return nil
}

// GetAllBusinesses lists listings matching f. No session is needed.
func (s *BusinessService) GetAllBusinesses(ctx context.Context, f store.BusinessFilter) ([]domain.Business, error) {
	f.Category = strings.ToLower(strings.TrimSpace(f.Category))
	return s.Store.Businesses().ListBusinesses(ctx, f)
}

func (s *BusinessService) GetBusinessByID(ctx context.Context, id string) (domain.Business, error) {
	b, err := s.Store.Businesses().GetBusinessByID(ctx, id)
	return b, storeErr(err)
}

// VerifyBusiness marks a listing as verified. Admin only.
func (s *BusinessService) VerifyBusiness(ctx context.Context, sess *Session, id string) (domain.Business, error) {
	u, err := currentUser(ctx, s.Store, sess)
	if err != nil {
		return domain.Business{}, err
	}
	if !u.IsAdmin() {
		return domain.Business{}, ErrPermissionDenied
	}

	b, err := s.GetBusinessByID(ctx, id)
	if err != nil {
		return domain.Business{}, err
	}
	b.Verified = true
	b.UpdatedAt = clock(s.Now)
	if err := s.Store.Businesses().UpdateBusiness(ctx, b); err != nil {
		return domain.Business{}, storeErr(err)
	}

	slogx.Category(ctx, "admin").Info("business verified",
		slog.String("business_id", id),
		slog.String("by", u.ID),
	)
	return s.GetBusinessByID(ctx, id)
}

// editable loads a listing the signed-in user may change.
func (s *BusinessService) editable(ctx context.Context, sess *Session, id string) (domain.User, domain.Business, error) {
	u, err := currentUser(ctx, s.Store, sess)
	if err != nil {
		return domain.User{}, domain.Business{}, err
	}
	b, err := s.GetBusinessByID(ctx, id)
	if err != nil {
		return domain.User{}, domain.Business{}, err
	}
	if !b.OwnedBy(u.ID) && !u.IsAdmin() {
		slogx.Category(ctx, "business").Warn("business edit denied",
			slog.String("business_id", id),
			slog.String("user_id", u.ID),
		)
		return domain.User{}, domain.Business{}, ErrPermissionDenied
	}
	return u, b, nil
}
