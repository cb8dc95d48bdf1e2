package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/directory/internal/directory/domain"
	"github.com/aussiebroadwan/directory/internal/directory/store"
	"github.com/aussiebroadwan/directory/pkg/cryptox"
	"github.com/aussiebroadwan/directory/pkg/idx"
	"github.com/aussiebroadwan/directory/pkg/slogx"
)

type AuthService struct {
	Store store.Store

	// PasswordScheme selects the credential format for new passwords.
	PasswordScheme cryptox.Scheme

	Now func() time.Time
}

// SignIn authenticates by email and password and signs the user into sess.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) SignIn(ctx context.Context, sess *Session, email, password string) (domain.User, error) {
	l := slogx.Category(ctx, "auth")

	u, err := s.Store.Users().GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		l.Info("sign-in for unknown email")
		return domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, err
	}

	if !cryptox.VerifyPassword(password, u.PasswordHash) {
		l.Info("sign-in password mismatch", slog.String("user_id", u.ID))
		return domain.User{}, ErrInvalidCredentials
	}
	if err := checkStatus(u); err != nil {
		l.Warn("sign-in blocked", slog.String("user_id", u.ID), slog.String("status", string(u.Status)))
		return domain.User{}, err
	}

	now := clock(s.Now)
	u.LastLoginAt = &now
	u.UpdatedAt = now
	if err := s.Store.Users().UpdateUser(ctx, u); err != nil {
		l.Error("failed to record login", slog.String("user_id", u.ID), slog.Any("error", err))
		return domain.User{}, err
	}

	sid := sess.start(u)
	l.Info("signed in", slog.String("user_id", u.ID), slog.String("sid", sid))
	return u, nil
}

// SignUp registers a new active account and signs it into sess. An empty
// role means RoleUser. Registering as admin is only possible while the
// directory has no admin.
func (s *AuthService) SignUp(
	ctx context.Context,
	sess *Session,
	email, password, displayName string,
	role domain.Role,
) (domain.User, error) {
	l := slogx.Category(ctx, "auth")

	email = domain.NormalizeEmail(email)
	displayName = strings.TrimSpace(displayName)
	switch {
	case !domain.ValidEmail(email):
		return domain.User{}, invalid("email address is not valid")
	case len(password) < MinPasswordLength:
		return domain.User{}, invalid("password must be at least %d characters", MinPasswordLength)
	case displayName == "":
		return domain.User{}, invalid("display name is required")
	}

	role, err := domain.ParseRole(string(role))
	if err != nil {
		return domain.User{}, invalid("%v", err)
	}
	if role == domain.RoleAdmin {
		if err := s.checkAdminBootstrap(ctx); err != nil {
			l.Warn("admin sign-up refused", slog.String("email", email))
			return domain.User{}, err
		}
	}

	if _, err := s.Store.Users().GetUserByEmail(ctx, email); err == nil {
		return domain.User{}, ErrAlreadyExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPasswordWith(s.PasswordScheme, password)
	if err != nil {
		return domain.User{}, err
	}

	now := clock(s.Now)
	u := domain.User{
		ID:           idx.NewAt(now).String(),
		Email:        email,
		DisplayName:  displayName,
		Role:         role,
		PasswordHash: hash,
		Status:       domain.StatusActive,
		Profile:      domain.Document{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		return domain.User{}, storeErr(err)
	}

	sid := sess.start(u)
	l.Info("signed up", slog.String("user_id", u.ID), slog.String("role", string(role)), slog.String("sid", sid))
	return u, nil
}

func (s *AuthService) checkAdminBootstrap(ctx context.Context) error {
	users, err := s.Store.Users().ListUsers(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.IsAdmin() {
			return ErrPermissionDenied
		}
	}
	return nil
}

// SignOut clears sess. Signing out twice is harmless.
func (s *AuthService) SignOut(ctx context.Context, sess *Session) {
	if u, ok := sess.User(); ok {
		slogx.Category(ctx, "auth").Info("signed out", slog.String("user_id", u.ID))
	}
	sess.clear()
}

// ChangePassword replaces the signed-in user's password after verifying
// the current one.
func (s *AuthService) ChangePassword(ctx context.Context, sess *Session, current, next string) error {
	u, err := currentUser(ctx, s.Store, sess)
	if err != nil {
		return err
	}
	if !cryptox.VerifyPassword(current, u.PasswordHash) {
		return ErrInvalidCredentials
	}
	if len(next) < MinPasswordLength {
		return invalid("password must be at least %d characters", MinPasswordLength)
	}

	hash, err := cryptox.HashPasswordWith(s.PasswordScheme, next)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.UpdatedAt = clock(s.Now)
	if err := s.Store.Users().UpdateUser(ctx, u); err != nil {
		return err
	}
	sess.refresh(u)

	slogx.Category(ctx, "auth").Info("password changed", slog.String("user_id", u.ID))
	return nil
}

// UpdateProfile shallow-merges partial into the stored profile and returns
// the result.
func (s *AuthService) UpdateProfile(ctx context.Context, sess *Session, partial domain.Document) (domain.Document, error) {
	u, err := currentUser(ctx, s.Store, sess)
	if err != nil {
		return nil, err
	}
	u.Profile = u.Profile.Merge(partial)
	u.UpdatedAt = clock(s.Now)
	if err := s.Store.Users().UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	sess.refresh(u)
	return u.Profile, nil
}

func (s *AuthService) GetProfile(ctx context.Context, sess *Session) (domain.Document, error) {
	u, err := currentUser(ctx, s.Store, sess)
	if err != nil {
		return nil, err
	}
	if u.Profile == nil {
		return domain.Document{}, nil
	}
	return u.Profile, nil
}

// GetCurrentUser returns the user held by sess without touching the store.
func (s *AuthService) GetCurrentUser(sess *Session) (domain.User, error) {
	return sess.Require()
}

// RestoreSession signs userID back into sess under an already issued
// session id, as when a bearer token is presented.
func (s *AuthService) RestoreSession(ctx context.Context, sess *Session, sessionID, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrNoSession
	}
	if err != nil {
		return domain.User{}, err
	}
	if err := checkStatus(u); err != nil {
		return domain.User{}, err
	}
	sess.resume(sessionID, u)
	return u, nil
}
