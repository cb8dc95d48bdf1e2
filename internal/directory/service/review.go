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

// ReviewService manages reviews and the owner responses embedded in them.
// The store recomputes the business rating on every review write.
type ReviewService struct {
	Store store.Store
	Now   func() time.Time
}

// AddReview posts a review by the signed-in user. Ratings outside 1..5 are
// rejected with ErrInvalidRating.
func (s *ReviewService) AddReview(
	ctx context.Context,
	sess *Session,
	businessID string,
	rating int,
	comment string,
	photos []string,
) (domain.Review, error) {
	u, err := currentUser(ctx, s.Store, sess)
	if err != nil {
		return domain.Review{}, err
	}
	if !domain.ValidRating(rating) {
		return domain.Review{}, ErrInvalidRating
	}
	if _, err := s.Store.Businesses().GetBusinessByID(ctx, businessID); err != nil {
		return domain.Review{}, storeErr(err)
	}

	now := clock(s.Now)
	r := domain.Review{
		ID:         idx.NewAt(now).String(),
		BusinessID: businessID,
		UserID:     u.ID,
		Rating:     rating,
		Comment:    strings.TrimSpace(comment),
		Photos:     nonNil(photos),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Store.Reviews().CreateReview(ctx, r); err != nil {
		return domain.Review{}, storeErr(err)
	}

	slogx.Category(ctx, "review").Info("review added",
		slog.String("review_id", r.ID),
		slog.String("business_id", businessID),
		slog.Int("rating", rating),
	)
	return r, nil
}

// GetMyReviews lists the signed-in user's reviews.
func (s *ReviewService) GetMyReviews(ctx context.Context, sess *Session) ([]domain.Review, error) {
	u, err := sess.Require()
	if err != nil {
		return nil, err
	}
	return s.Store.Reviews().ListReviewsByAuthor(ctx, u.ID)
}

// UpdateReview rewrites a review. Only its author or an admin may do so.
func (s *ReviewService) UpdateReview(
	ctx context.Context,
	sess *Session,
	id string,
	rating int,
	comment string,
	photos []string,
) (domain.Review, error) {
	_, r, err := s.authored(ctx, sess, id)
	if err != nil {
		return domain.Review{}, err
	}
	if !domain.ValidRating(rating) {
		return domain.Review{}, ErrInvalidRating
	}

	r.Rating = rating
	r.Comment = strings.TrimSpace(comment)
	if photos != nil {
		r.Photos = photos
	}
	r.UpdatedAt = clock(s.Now)
	if err := s.Store.Reviews().UpdateReview(ctx, r); err != nil {
		return domain.Review{}, storeErr(err)
	}
	return r, nil
}

// DeleteReview removes a review. Only its author or an admin may do so.
func (s *ReviewService) DeleteReview(ctx context.Context, sess *Session, id string) error {
	u, _, err := s.authored(ctx, sess, id)
	if err != nil {
		return err
	}
	if err := s.Store.Reviews().DeleteReview(ctx, id); err != nil {
		return storeErr(err)
	}
	slogx.Category(ctx, "review").Info("review deleted",
		slog.String("review_id", id),
		slog.String("by", u.ID),
	)
	return nil
}

// GetBusinessReviews lists a business's reviews. No session is needed.
func (s *ReviewService) GetBusinessReviews(ctx context.Context, businessID string) ([]domain.Review, error) {
	if _, err := s.Store.Businesses().GetBusinessByID(ctx, businessID); err != nil {
		return nil, storeErr(err)
	}
	return s.Store.Reviews().ListReviewsByBusiness(ctx, businessID)
}

// RespondToReview attaches the business owner's reply to a review. A review
// holds at most one live response.
func (s *ReviewService) RespondToReview(ctx context.Context, sess *Session, reviewID, message string) (domain.Review, error) {
	u, r, err := s.respondable(ctx, sess, reviewID)
	if err != nil {
		return domain.Review{}, err
	}
	if r.Response.Live() {
		return domain.Review{}, ErrAlreadyExists
	}
	message, err = responseMessage(message)
	if err != nil {
		return domain.Review{}, err
	}

	now := clock(s.Now)
	r.Response = &domain.BusinessResponse{
		ID:         idx.NewAt(now).String(),
		ReviewID:   r.ID,
		BusinessID: r.BusinessID,
		OwnerID:    u.ID,
		OwnerName:  u.DisplayName,
		Message:    message,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.UpdatedAt = now
	if err := s.Store.Reviews().UpdateReview(ctx, r); err != nil {
		return domain.Review{}, storeErr(err)
	}
	return r, nil
}

// UpdateResponse changes the message of a live response.
func (s *ReviewService) UpdateResponse(ctx context.Context, sess *Session, reviewID, message string) (domain.Review, error) {
	_, r, err := s.respondable(ctx, sess, reviewID)
	if err != nil {
		return domain.Review{}, err
	}
	if !r.Response.Live() {
		return domain.Review{}, ErrNotFound
	}
	message, err = responseMessage(message)
	if err != nil {
		return domain.Review{}, err
	}

	now := clock(s.Now)
	r.Response.Message = message
	r.Response.UpdatedAt = now
	r.UpdatedAt = now
	if err := s.Store.Reviews().UpdateReview(ctx, r); err != nil {
		return domain.Review{}, storeErr(err)
	}
	return r, nil
}

// DeleteResponse tombstones a live response; the record stays in place
// with its message replaced by domain.DeletedResponseMessage.
func (s *ReviewService) DeleteResponse(ctx context.Context, sess *Session, reviewID string) error {
	u, r, err := s.respondable(ctx, sess, reviewID)
	if err != nil {
		return err
	}
	if !r.Response.Live() {
		return ErrNotFound
	}

	now := clock(s.Now)
	r.Response.Message = domain.DeletedResponseMessage
	r.Response.UpdatedAt = now
	r.UpdatedAt = now
	if err := s.Store.Reviews().UpdateReview(ctx, r); err != nil {
		return storeErr(err)
	}
	slogx.Category(ctx, "review").Info("response deleted",
		slog.String("review_id", reviewID),
		slog.String("by", u.ID),
	)
	return nil
}

// authored loads a review the signed-in user wrote, or any review for
// admins.
func (s *ReviewService) authored(ctx context.Context, sess *Session, id string) (domain.User, domain.Review, error) {
	u, err := currentUser(ctx, s.Store, sess)
	if err != nil {
		return domain.User{}, domain.Review{}, err
	}
	r, err := s.Store.Reviews().GetReviewByID(ctx, id)
	if err != nil {
		return domain.User{}, domain.Review{}, storeErr(err)
	}
	if r.UserID != u.ID && !u.IsAdmin() {
		return domain.User{}, domain.Review{}, ErrPermissionDenied
	}
	return u, r, nil
}

// respondable loads a review on a business the signed-in user owns, or any
// review for admins.
func (s *ReviewService) respondable(ctx context.Context, sess *Session, id string) (domain.User, domain.Review, error) {
	u, err := currentUser(ctx, s.Store, sess)
	if err != nil {
		return domain.User{}, domain.Review{}, err
	}
	r, err := s.Store.Reviews().GetReviewByID(ctx, id)
	if err != nil {
		return domain.User{}, domain.Review{}, storeErr(err)
	}
	b, err := s.Store.Businesses().GetBusinessByID(ctx, r.BusinessID)
	if err != nil {
		return domain.User{}, domain.Review{}, storeErr(err)
	}
	if !b.OwnedBy(u.ID) && !u.IsAdmin() {
		return domain.User{}, domain.Review{}, ErrPermissionDenied
	}
	return u, r, nil
}

func responseMessage(message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" || message == domain.DeletedResponseMessage {
		return "", invalid("response message is required")
	}
	return message, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
