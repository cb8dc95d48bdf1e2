package postgres

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/directory/internal/directory/domain"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, display_name, role, password_hash, created_at,
	last_login_at, profile, status, admin_notes, updated_at`

type usersRepo struct {
	conn
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		u            domain.User
		role, status string
		profile      []byte
	)
	if err := row.Scan(
		&u.ID, &u.Email, &u.DisplayName, &role, &u.PasswordHash, &u.CreatedAt,
		&u.LastLoginAt, &profile, &status, &u.AdminNotes, &u.UpdatedAt,
	); err != nil {
		return domain.User{}, err
	}

	u.Role = domain.Role(role)
	u.Status = domain.Status(status)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	u.LastLoginAt = utcPtr(u.LastLoginAt)

	if err := decodeJSON(profile, &u.Profile); err != nil {
		return domain.User{}, fmt.Errorf("decode profile: %w", err)
	}
	return u, nil
}

func userArgs(u domain.User) ([]any, error) {
	profile, err := encodeJSON(u.Profile)
	if err != nil {
		return nil, err
	}
	return []any{
		u.ID, domain.NormalizeEmail(u.Email), u.DisplayName, string(u.Role), u.PasswordHash,
		u.CreatedAt.UTC(), utcPtr(u.LastLoginAt), profile, string(u.Status), u.AdminNotes,
		u.UpdatedAt.UTC(),
	}, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	q, err := r.get()
	if err != nil {
		return domain.User{}, err
	}
	u, err := scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	return u, mapNotFound(err)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	q, err := r.get()
	if err != nil {
		return domain.User{}, err
	}
	u, err := scanUser(q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, domain.NormalizeEmail(email)))
	return u, mapNotFound(err)
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	q, err := r.get()
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	q, err := r.get()
	if err != nil {
		return err
	}
	args, err := userArgs(u)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10, $11)`, args...)
	return mapWriteErr(err)
}

func (r *usersRepo) UpdateUser(ctx context.Context, u domain.User) error {
	q, err := r.get()
	if err != nil {
		return err
	}
	args, err := userArgs(u)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			display_name = EXCLUDED.display_name,
			role = EXCLUDED.role,
			password_hash = EXCLUDED.password_hash,
			last_login_at = EXCLUDED.last_login_at,
			profile = EXCLUDED.profile,
			status = EXCLUDED.status,
			admin_notes = EXCLUDED.admin_notes,
			updated_at = EXCLUDED.updated_at`, args...)
	return mapWriteErr(err)
}

func (r *usersRepo) DeleteUser(ctx context.Context, id string) error {
	q, err := r.get()
	if err != nil {
		return err
	}
	return expectAffected(q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id))
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	q, err := r.get()
	if err != nil {
		return false, err
	}
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users)`).Scan(&exists); err != nil {
		return false, err
	}
	return !exists, nil
}
