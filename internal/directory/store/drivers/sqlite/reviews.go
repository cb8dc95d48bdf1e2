package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/directory/internal/directory/domain"
	"github.com/aussiebroadwan/directory/internal/directory/store"
)

const reviewColumns = `id, business_id, user_id, rating, comment, photos, response,
	created_at, updated_at`

type reviewsRepo struct {
	conn
}

func scanReview(row scanner) (domain.Review, error) {
	var (
		rv                   domain.Review
		photos               string
		response             sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&rv.ID, &rv.BusinessID, &rv.UserID, &rv.Rating, &rv.Comment, &photos, &response,
		&createdAt, &updatedAt,
	); err != nil {
		return domain.Review{}, err
	}

	var err error
	if rv.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Review{}, err
	}
	if rv.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.Review{}, err
	}
	if err := decodeJSON(photos, &rv.Photos); err != nil {
		return domain.Review{}, err
	}
	rv.Photos = nonNil(rv.Photos)
	if response.Valid {
		if err := decodeJSON(response.String, &rv.Response); err != nil {
			return domain.Review{}, err
		}
	}
	return rv, nil
}

func reviewArgs(rv domain.Review) ([]any, error) {
	photos, err := encodeJSON(nonNil(rv.Photos))
	if err != nil {
		return nil, err
	}
	var response sql.NullString
	if rv.Response != nil {
		s, err := encodeJSON(rv.Response)
		if err != nil {
			return nil, err
		}
		response = sql.NullString{String: s, Valid: true}
	}
	return []any{
		rv.ID, rv.BusinessID, rv.UserID, rv.Rating, rv.Comment, photos, response,
		formatTime(rv.CreatedAt), formatTime(rv.UpdatedAt),
	}, nil
}

func (r *reviewsRepo) GetReviewByID(ctx context.Context, id string) (domain.Review, error) {
	q, err := r.get()
	if err != nil {
		return domain.Review{}, err
	}
	rv, err := scanReview(q.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE id = ?`, id))
	return rv, mapNotFound(err)
}

func (r *reviewsRepo) ListReviews(ctx context.Context) ([]domain.Review, error) {
	return r.list(ctx, `SELECT `+reviewColumns+` FROM reviews ORDER BY created_at DESC, id DESC`)
}

func (r *reviewsRepo) ListReviewsByBusiness(ctx context.Context, businessID string) ([]domain.Review, error) {
	return r.list(ctx, `SELECT `+reviewColumns+` FROM reviews
		WHERE business_id = ? ORDER BY created_at DESC, id DESC`, businessID)
}

func (r *reviewsRepo) ListReviewsByAuthor(ctx context.Context, userID string) ([]domain.Review, error) {
	return r.list(ctx, `SELECT `+reviewColumns+` FROM reviews
		WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
}

func (r *reviewsRepo) list(ctx context.Context, query string, args ...any) ([]domain.Review, error) {
	q, err := r.get()
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, query, args...)
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
		if _, err := q.ExecContext(ctx, `INSERT INTO reviews (`+reviewColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...); err != nil {
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

		if _, err := q.ExecContext(ctx, `INSERT INTO reviews (`+reviewColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				business_id = excluded.business_id,
				user_id = excluded.user_id,
				rating = excluded.rating,
				comment = excluded.comment,
				photos = excluded.photos,
				response = excluded.response,
				updated_at = excluded.updated_at`, args...); err != nil {
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
		if err := expectAffected(q.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)); err != nil {
			return err
		}
		return recomputeRating(ctx, q, businessID, time.Now())
	})
}

func reviewBusinessID(ctx context.Context, q querier, id string) (string, error) {
	var businessID string
	err := q.QueryRowContext(ctx, `SELECT business_id FROM reviews WHERE id = ?`, id).Scan(&businessID)
	return businessID, mapNotFound(err)
}
