package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/directory/internal/directory/domain"
	"github.com/aussiebroadwan/directory/internal/directory/store"
	"github.com/aussiebroadwan/directory/pkg/slogx"
)

// UserUpdate carries the admin-editable fields of an account. Nil fields are
// left unchanged.
type UserUpdate struct {
	Status     *domain.Status
	Role       *domain.Role
	AdminNotes *string
}

// AdminService holds account management operations. Every method re-checks
// that the caller is an admin.
type AdminService struct {
	Store store.Store
	Now   func() time.Time
}

func (s *AdminService) GetAllUsers(ctx context.Context, sess *Session) ([]domain.User, error) {
	if _, err := s.admin(ctx, sess); err != nil {
		return nil, err
	}
	return s.Store.Users().ListUsers(ctx)
}

// UpdateUser changes another account's status, role or notes. Admins may
// not suspend, deactivate or demote themselves.
func (s *AdminService) UpdateUser(ctx context.Context, sess *Session, id string, upd UserUpdate) (domain.User, error) {
	me, err := s.admin(ctx, sess)
	if err != nil {
		return domain.User{}, err
	}

	if upd.Status != nil && !upd.Status.Valid() {
		return domain.User{}, invalid("unknown status %q", *upd.Status)
	}
	if upd.Role != nil && !upd.Role.Valid() {
		return domain.User{}, invalid("unknown role %q", *upd.Role)
	}
	if id == me.ID {
		if upd.Status != nil && *upd.Status != domain.StatusActive {
			return domain.User{}, ErrPermissionDenied
		}
		if upd.Role != nil && *upd.Role != domain.RoleAdmin {
			return domain.User{}, ErrPermissionDenied
		}
	}

	u, err := s.Store.Users().GetUserByID(ctx, id)
	if err != nil {
		return domain.User{}, storeErr(err)
	}
	if upd.Status != nil {
		u.Status = *upd.Status
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.AdminNotes != nil {
		u.AdminNotes = *upd.AdminNotes
	}
	u.UpdatedAt = clock(s.Now)

	if err := s.Store.Users().UpdateUser(ctx, u); err != nil {
		return domain.User{}, storeErr(err)
	}

	slogx.Category(ctx, "admin").Info("user updated",
		slog.String("user_id", id),
		slog.String("status", string(u.Status)),
		slog.String("role", string(u.Role)),
		slog.String("by", me.ID),
	)
	return u, nil
}

func (s *AdminService) SetUserStatus(ctx context.Context, sess *Session, id string, status domain.Status, notes string) (domain.User, error) {
	upd := UserUpdate{Status: &status}
	if notes != "" {
		upd.AdminNotes = &notes
	}
	return s.UpdateUser(ctx, sess, id, upd)
}

func (s *AdminService) SetUserRole(ctx context.Context, sess *Session, id string, role domain.Role) (domain.User, error) {
	return s.UpdateUser(ctx, sess, id, UserUpdate{Role: &role})
}

// DeleteUser removes another account. The user's reviews are kept.
func (s *AdminService) DeleteUser(ctx context.Context, sess *Session, id string) error {
	me, err := s.admin(ctx, sess)
	if err != nil {
		return err
	}
	if id == me.ID {
		return ErrPermissionDenied
	}
	if err := s.Store.Users().DeleteUser(ctx, id); err != nil {
		return storeErr(err)
	}
	slogx.Category(ctx, "admin").Warn("user deleted", slog.String("user_id", id), slog.String("by", me.ID))
	return nil
}

func (s *AdminService) admin(ctx context.Context, sess *Session) (domain.User, error) {
	u, err := currentUser(ctx, s.Store, sess)
	if err != nil {
		return domain.User{}, err
	}
	if !u.IsAdmin() {
		return domain.User{}, ErrPermissionDenied
	}
	return u, nil
}
