package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/directory/internal/directory/domain"
)

const userColumns = `id, email, display_name, role, password_hash, created_at,
	last_login_at, profile, status, admin_notes, updated_at`

type usersRepo struct {
	conn
}

func scanUser(row scanner) (domain.User, error) {
	var (
		u                    domain.User
		role, status         string
		createdAt, updatedAt string
		lastLogin            sql.NullString
		profile              string
	)
	if err := row.Scan(
		&u.ID, &u.Email, &u.DisplayName, &role, &u.PasswordHash, &createdAt,
		&lastLogin, &profile, &status, &u.AdminNotes, &updatedAt,
	); err != nil {
		return domain.User{}, err
	}

	u.Role = domain.Role(role)
	u.Status = domain.Status(status)

	var err error
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.User{}, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.User{}, err
	}
	if u.LastLoginAt, err = parseNullTime(lastLogin); err != nil {
		return domain.User{}, err
	}
	if err := decodeJSON(profile, &u.Profile); err != nil {
		return domain.User{}, err
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
		formatTime(u.CreatedAt), formatNullTime(u.LastLoginAt), profile, string(u.Status),
		u.AdminNotes, formatTime(u.UpdatedAt),
	}, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	q, err := r.get()
	if err != nil {
		return domain.User{}, err
	}
	u, err := scanUser(q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	return u, mapNotFound(err)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	q, err := r.get()
	if err != nil {
		return domain.User{}, err
	}
	u, err := scanUser(q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, domain.NormalizeEmail(email)))
	return u, mapNotFound(err)
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	q, err := r.get()
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`)
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
	_, err = q.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
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
	_, err = q.ExecContext(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			email = excluded.email,
			display_name = excluded.display_name,
			role = excluded.role,
			password_hash = excluded.password_hash,
			last_login_at = excluded.last_login_at,
			profile = excluded.profile,
			status = excluded.status,
			admin_notes = excluded.admin_notes,
			updated_at = excluded.updated_at`, args...)
	return mapWriteErr(err)
}

func (r *usersRepo) DeleteUser(ctx context.Context, id string) error {
	q, err := r.get()
	if err != nil {
		return err
	}
	return expectAffected(q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id))
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	q, err := r.get()
	if err != nil {
		return false, err
	}
	var count int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}
