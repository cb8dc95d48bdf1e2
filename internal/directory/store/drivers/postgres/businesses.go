package postgres

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/directory/internal/directory/domain"
	"github.com/aussiebroadwan/directory/internal/directory/store"
	"github.com/jackc/pgx/v5"
)

const businessColumns = `id, name, description, category, address, phone, website, hours,
	latitude, longitude, amenities, photos, lgbtq_friendly, accessibility, verified,
	owner_id, average_rating, review_count, created_at, updated_at`

const businessValues = `$1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10, $11::jsonb, $12::jsonb,
	$13, $14::jsonb, $15, $16, $17, $18, $19, $20`

type businessesRepo struct {
	conn
}

func scanBusiness(row pgx.Row) (domain.Business, error) {
	var (
		b                                domain.Business
		hours, amenities, photos, access []byte
		lat, lng                         *float64
	)
	if err := row.Scan(
		&b.ID, &b.Name, &b.Description, &b.Category, &b.Address, &b.Phone, &b.Website, &hours,
		&lat, &lng, &amenities, &photos, &b.LGBTQFriendly, &access, &b.Verified,
		&b.OwnerID, &b.AverageRating, &b.ReviewCount, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return domain.Business{}, err
	}

	if lat != nil && lng != nil {
		b.Location = &domain.Location{Latitude: *lat, Longitude: *lng}
	}
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()

	if err := decodeJSON(hours, &b.Hours); err != nil {
		return domain.Business{}, fmt.Errorf("decode hours: %w", err)
	}
	if err := decodeJSON(access, &b.Accessibility); err != nil {
		return domain.Business{}, fmt.Errorf("decode accessibility: %w", err)
	}
	if err := decodeJSON(amenities, &b.Amenities); err != nil {
		return domain.Business{}, fmt.Errorf("decode amenities: %w", err)
	}
	if err := decodeJSON(photos, &b.Photos); err != nil {
		return domain.Business{}, fmt.Errorf("decode photos: %w", err)
	}
	b.Amenities = nonNil(b.Amenities)
	b.Photos = nonNil(b.Photos)
	return b, nil
}

func businessArgs(b domain.Business) ([]any, error) {
	var lat, lng *float64
	if b.Location != nil {
		lat, lng = &b.Location.Latitude, &b.Location.Longitude
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
		b.OwnerID, b.AverageRating, b.ReviewCount, b.CreatedAt.UTC(), b.UpdatedAt.UTC(),
	}, nil
}

func (r *businessesRepo) GetBusinessByID(ctx context.Context, id string) (domain.Business, error) {
	q, err := r.get()
	if err != nil {
		return domain.Business{}, err
	}
	b, err := scanBusiness(q.QueryRow(ctx,
		`SELECT `+businessColumns+` FROM businesses WHERE id = $1`, id))
	return b, mapNotFound(err)
}

func (r *businessesRepo) ListBusinesses(ctx context.Context, f store.BusinessFilter) ([]domain.Business, error) {
	var (
		where []string
		args  []any
	)
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.LGBTQFriendly {
		where = append(where, "lgbtq_friendly")
	}
	if f.VerifiedOnly {
		where = append(where, "verified")
	}

	query := `SELECT ` + businessColumns + ` FROM businesses`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	return r.list(ctx, query+` ORDER BY created_at DESC, id DESC`, args...)
}

func (r *businessesRepo) ListBusinessesByOwner(ctx context.Context, ownerID string) ([]domain.Business, error) {
	return r.list(ctx, `SELECT `+businessColumns+` FROM businesses
		WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`, ownerID)
}

func (r *businessesRepo) list(ctx context.Context, query string, args ...any) ([]domain.Business, error) {
	q, err := r.get()
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, query, args...)
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
	_, err = q.Exec(ctx, `INSERT INTO businesses (`+businessColumns+`) VALUES (`+businessValues+`)`, args...)
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
		if err := lockBusinesses(ctx, q, b.ID); err != nil {
			return err
		}
		_, err := q.Exec(ctx, `INSERT INTO businesses (`+businessColumns+`) VALUES (`+businessValues+`)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				description = EXCLUDED.description,
				category = EXCLUDED.category,
				address = EXCLUDED.address,
				phone = EXCLUDED.phone,
				website = EXCLUDED.website,
				hours = EXCLUDED.hours,
				latitude = EXCLUDED.latitude,
				longitude = EXCLUDED.longitude,
				amenities = EXCLUDED.amenities,
				photos = EXCLUDED.photos,
				lgbtq_friendly = EXCLUDED.lgbtq_friendly,
				accessibility = EXCLUDED.accessibility,
				verified = EXCLUDED.verified,
				owner_id = EXCLUDED.owner_id,
				updated_at = EXCLUDED.updated_at`, args...)
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
	return expectAffected(q.Exec(ctx, `DELETE FROM businesses WHERE id = $1`, id))
}

func (r *businessesRepo) UpdateBusinessRating(ctx context.Context, id string) error {
	q, err := r.get()
	if err != nil {
		return err
	}
	return inTx(ctx, q, func(q querier) error {
		if err := lockBusinesses(ctx, q, id); err != nil {
			return err
		}
		return recomputeRating(ctx, q, id, time.Now())
	})
}

// lockBusinesses takes row locks on the given businesses, in id order, so
// concurrent review writes recompute one at a time and each sees the others'
// committed rows. Missing ids are skipped.
func lockBusinesses(ctx context.Context, q querier, ids ...string) error {
	ids = slices.Compact(slices.Sorted(slices.Values(ids)))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, err := q.Exec(ctx, `SELECT 1 FROM businesses WHERE id = $1 FOR UPDATE`, id); err != nil {
			return err
		}
	}
	return nil
}

// recomputeRating derives average_rating and review_count for one business
// from its reviews. It must run on the same querier as the triggering write.
func recomputeRating(ctx context.Context, q querier, businessID string, now time.Time) error {
	if now.IsZero() {
		now = time.Now()
	}

	var count, sum int
	if err := q.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(rating), 0) FROM reviews WHERE business_id = $1`,
		businessID,
	).Scan(&count, &sum); err != nil {
		return err
	}

	return expectAffected(q.Exec(ctx,
		`UPDATE businesses SET average_rating = $1, review_count = $2, updated_at = $3 WHERE id = $4`,
		domain.RoundRating(sum, count), count, now.UTC(), businessID,
	))
}
