package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/aussiebroadwan/directory/internal/directory/domain"
	"github.com/aussiebroadwan/directory/internal/directory/store"
)

const businessColumns = `id, name, description, category, address, phone, website, hours,
	latitude, longitude, amenities, photos, lgbtq_friendly, accessibility, verified,
	owner_id, average_rating, review_count, created_at, updated_at`

type businessesRepo struct {
	conn
}

func scanBusiness(row scanner) (domain.Business, error) {
	var (
		b                                domain.Business
		hours, amenities, photos, access string
		lat, lng                         sql.NullFloat64
		createdAt, updatedAt             string
	)
	if err := row.Scan(
		&b.ID, &b.Name, &b.Description, &b.Category, &b.Address, &b.Phone, &b.Website, &hours,
		&lat, &lng, &amenities, &photos, &b.LGBTQFriendly, &access, &b.Verified,
		&b.OwnerID, &b.AverageRating, &b.ReviewCount, &createdAt, &updatedAt,
	); err != nil {
		return domain.Business{}, err
	}

	if lat.Valid && lng.Valid {
		b.Location = &domain.Location{Latitude: lat.Float64, Longitude: lng.Float64}
	}

	var err error
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Business{}, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.Business{}, err
	}
	if err := decodeJSON(hours, &b.Hours); err != nil {
		return domain.Business{}, err
	}
	if err := decodeJSON(access, &b.Accessibility); err != nil {
		return domain.Business{}, err
	}
	if err := decodeJSON(amenities, &b.Amenities); err != nil {
		return domain.Business{}, err
	}
	if err := decodeJSON(photos, &b.Photos); err != nil {
		return domain.Business{}, err
	}
	b.Amenities = nonNil(b.Amenities)
	b.Photos = nonNil(b.Photos)
	return b, nil
}

func businessArgs(b domain.Business) ([]any, error) {
	var lat, lng sql.NullFloat64
	if b.Location != nil {
		lat = sql.NullFloat64{Float64: b.Location.Latitude, Valid: true}
		lng = sql.NullFloat64{Float64: b.Location.Longitude, Valid: true}
	}

	enc := make([]string, 4)
	for i, v := range []any{b.Hours, nonNil(b.Amenities), nonNil(b.Photos), b.Accessibility} {
		s, err := encodeJSON(v)
		if err != nil {
			return nil, err
		}
		enc[i] = s
	}

	return []any{
		b.ID, b.Name, b.Description, b.Category, b.Address, b.Phone, b.Website, enc[0],
		lat, lng, enc[1], enc[2], b.LGBTQFriendly, enc[3], b.Verified,
		b.OwnerID, b.AverageRating, b.ReviewCount, formatTime(b.CreatedAt), formatTime(b.UpdatedAt),
	}, nil
}

func (r *businessesRepo) GetBusinessByID(ctx context.Context, id string) (domain.Business, error) {
	q, err := r.get()
	if err != nil {
		return domain.Business{}, err
	}
	b, err := scanBusiness(q.QueryRowContext(ctx,
		`SELECT `+businessColumns+` FROM businesses WHERE id = ?`, id))
	return b, mapNotFound(err)
}

func (r *businessesRepo) ListBusinesses(ctx context.Context, f store.BusinessFilter) ([]domain.Business, error) {
	var (
		where []string
		args  []any
	)
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.LGBTQFriendly {
		where = append(where, "lgbtq_friendly = 1")
	}
	if f.VerifiedOnly {
		where = append(where, "verified = 1")
	}

	query := `SELECT ` + businessColumns + ` FROM businesses`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	return r.list(ctx, query+` ORDER BY created_at DESC, id DESC`, args...)
}

func (r *businessesRepo) ListBusinessesByOwner(ctx context.Context, ownerID string) ([]domain.Business, error) {
	return r.list(ctx, `SELECT `+businessColumns+` FROM businesses
		WHERE owner_id = ? ORDER BY created_at DESC, id DESC`, ownerID)
}

func (r *businessesRepo) list(ctx context.Context, query string, args ...any) ([]domain.Business, error) {
	q, err := r.get()
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Business{}
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *businessesRepo) CreateBusiness(ctx context.Context, b domain.Business) error {
	q, err := r.get()
	if err != nil {
		return err
	}
	b.AverageRating, b.ReviewCount = 0, 0
	args, err := businessArgs(b)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `INSERT INTO businesses (`+businessColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	return mapWriteErr(err)
}

func (r *businessesRepo) UpdateBusiness(ctx context.Context, b domain.Business) error {
	q, err := r.get()
	if err != nil {
		return err
	}
	b.AverageRating, b.ReviewCount = 0, 0
	args, err := businessArgs(b)
	if err != nil {
		return err
	}

	return inTx(ctx, q, func(q querier) error {
		_, err := q.ExecContext(ctx, `INSERT INTO businesses (`+businessColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name,
				description = excluded.description,
				category = excluded.category,
				address = excluded.address,
				phone = excluded.phone,
				website = excluded.website,
				hours = excluded.hours,
				latitude = excluded.latitude,
				longitude = excluded.longitude,
				amenities = excluded.amenities,
				photos = excluded.photos,
				lgbtq_friendly = excluded.lgbtq_friendly,
				accessibility = excluded.accessibility,
				verified = excluded.verified,
				owner_id = excluded.owner_id,
				updated_at = excluded.updated_at`, args...)
		if err != nil {
			return mapWriteErr(err)
		}
		return recomputeRating(ctx, q, b.ID, b.UpdatedAt)
	})
}

func (r *businessesRepo) DeleteBusiness(ctx context.Context, id string) error {
	q, err := r.get()
	if err != nil {
		return err
	}
	return expectAffected(q.ExecContext(ctx, `DELETE FROM businesses WHERE id = ?`, id))
}

func (r *businessesRepo) UpdateBusinessRating(ctx context.Context, id string) error {
	q, err := r.get()
	if err != nil {
		return err
	}
	return inTx(ctx, q, func(q querier) error {
		return recomputeRating(ctx, q, id, time.Now())
	})
}

// recomputeRating derives average_rating and review_count for one business
// from its reviews. It must run on the same querier as the triggering write.
func recomputeRating(ctx context.Context, q querier, businessID string, now time.Time) error {
	if now.IsZero() {
		now = time.Now()
	}

	var count, sum int
	if err := q.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(rating), 0) FROM reviews WHERE business_id = ?`,
		businessID,
	).Scan(&count, &sum); err != nil {
		return err
	}

	return expectAffected(q.ExecContext(ctx,
		`UPDATE businesses SET average_rating = ?, review_count = ?, updated_at = ? WHERE id = ?`,
		domain.RoundRating(sum, count), count, formatTime(now), businessID,
	))
}
