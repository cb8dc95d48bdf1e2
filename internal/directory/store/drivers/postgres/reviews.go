package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/directory/internal/directory/domain"
	"github.com/aussiebroadwan/directory/internal/directory/store"
	"github.com/jackc/pgx/v5"
)

const reviewColumns = `id, business_id, user_id, rating, comment, photos, response,
	created_at, updated_at`

const reviewValues = `$1, $2, $3, $4, $5, $6::jsonb, $7::jsonb, $8, $9`

type reviewsRepo struct {
	conn
}

func scanReview(row pgx.Row) (domain.Review, error) {
	var (
		rv               domain.Review
		photos, response []byte
	)
	if err := row.Scan(
		&rv.ID, &rv.BusinessID, &rv.UserID, &rv.Rating, &rv.Comment, &photos, &response,
		&rv.CreatedAt, &rv.UpdatedAt,
	); err != nil {
		return domain.Review{}, err
	}

	rv.CreatedAt = rv.CreatedAt.UTC()
	rv.UpdatedAt = rv.UpdatedAt.UTC()

	if err := decodeJSON(photos, &rv.Photos); err != nil {
		return domain.Review{}, fmt.Errorf("decode photos: %w", err)
	}
	rv.Photos = nonNil(rv.Photos)
	if err := decodeJSON(response, &rv.Response); err != nil {
		return domain.Review{}, fmt.Errorf("decode response: %w", err)
	}
	return rv, nil
}

func reviewArgs(rv domain.Review) ([]any, error) {
	photos, err := encodeJSON(nonNil(rv.Photos))
	if err != nil {
		return nil, err
	}
	var response *string
	if rv.Response != nil {
		s, err := encodeJSON(rv.Response)
		if err != nil {
			return nil, err
		}
		response = &s
	}
	return []any{
		rv.ID, rv.BusinessID, rv.UserID, rv.Rating, rv.Comment, photos, response,
		rv.CreatedAt.UTC(), rv.UpdatedAt.UTC(),
	}, nil
}

func (r *reviewsRepo) GetReviewByID(ctx context.Context, id string) (domain.Review, error) {
	q, err := r.get()
	if err != nil {
		return domain.Review{}, err
	}
	rv, err := scanReview(q.QueryRow(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id))
	return rv, mapNotFound(err)
}

func (r *reviewsRepo) ListReviews(ctx context.Context) ([]domain.Review, error) {
	return r.list(ctx, `SELECT `+reviewColumns+` FROM reviews ORDER BY created_at DESC, id DESC`)
}

func (r *reviewsRepo) ListReviewsByBusiness(ctx context.Context, businessID string) ([]domain.Review, error) {
	return r.list(ctx, `SELECT `+reviewColumns+` FROM reviews
		WHERE business_id = $1 ORDER BY created_at DESC, id DESC`, businessID)
}

func (r *reviewsRepo) ListReviewsByAuthor(ctx context.Context, userID string) ([]domain.Review, error) {
	return r.list(ctx, `SELECT `+reviewColumns+` FROM reviews
		WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
}

func (r *reviewsRepo) list(ctx context.Context, query string, args ...any) ([]domain.Review, error) {
	q, err := r.get()
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *reviewsRepo) CreateReview(ctx context.Context, rv domain.Review) error {
	q, err := r.get()
	if err != nil {
		return err
	}
	args, err := reviewArgs(rv)
	if err != nil {
		return err
	}

	return inTx(ctx, q, func(q querier) error {
		if err := lockBusinesses(ctx, q, rv.BusinessID); err != nil {
			return err
		}
		if _, err := q.Exec(ctx,
			`INSERT INTO reviews (`+reviewColumns+`) VALUES (`+reviewValues+`)`, args...); err != nil {
			return mapWriteErr(err)
		}
		return recomputeRating(ctx, q, rv.BusinessID, rv.UpdatedAt)
	})
}

func (r *reviewsRepo) UpdateReview(ctx context.Context, rv domain.Review) error {
	q, err := r.get()
	if err != nil {
		return err
	}
	args, err := reviewArgs(rv)
	if err != nil {
		return err
	}

	return inTx(ctx, q, func(q querier) error {
		previous, err := reviewBusinessID(ctx, q, rv.ID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err := lockBusinesses(ctx, q, rv.BusinessID, previous); err != nil {
			return err
		}

		if _, err := q.Exec(ctx, `INSERT INTO reviews (`+reviewColumns+`) VALUES (`+reviewValues+`)
			ON CONFLICT (id) DO UPDATE SET
				business_id = EXCLUDED.business_id,
				user_id = EXCLUDED.user_id,
				rating = EXCLUDED.rating,
				comment = EXCLUDED.comment,
				photos = EXCLUDED.photos,
				response = EXCLUDED.response,
				updated_at = EXCLUDED.updated_at`, args...); err != nil {
			return mapWriteErr(err)
		}

		if err := recomputeRating(ctx, q, rv.BusinessID, rv.UpdatedAt); err != nil {
			return err
		}
		if previous != "" && previous != rv.BusinessID {
			return recomputeRating(ctx, q, previous, rv.UpdatedAt)
		}
		return nil
	})
}

func (r *reviewsRepo) DeleteReview(ctx context.Context, id string) error {
	q, err := r.get()
	if err != nil {
		return err
	}

	return inTx(ctx, q, func(q querier) error {
		businessID, err := reviewBusinessID(ctx, q, id)
		if err != nil {
			return err
		}
		if err := lockBusinesses(ctx, q, businessID); err != nil {
			return err
		}
		if err := expectAffected(q.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)); err != nil {
			return err
		}
		return recomputeRating(ctx, q, businessID, time.Now())
	})
}

func reviewBusinessID(ctx context.Context, q querier, id string) (string, error) {
	var businessID string
	err := q.QueryRow(ctx, `SELECT business_id FROM reviews WHERE id = $1 FOR UPDATE`, id).Scan(&businessID)
	return businessID, mapNotFound(err)
}
