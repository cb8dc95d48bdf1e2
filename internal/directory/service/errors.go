package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/directory/internal/directory/domain"
	"github.com/aussiebroadwan/directory/internal/directory/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAccountSuspended   = errors.New("account_suspended")
	ErrAccountInactive    = errors.New("account_inactive")
	ErrNoSession          = errors.New("no_session")
	ErrPermissionDenied   = errors.New("permission_denied")
	ErrInvalidRating      = errors.New("invalid_rating")
	ErrInvalidInput       = errors.New("invalid_request")
	ErrAlreadyExists      = errors.New("already_exists")
	ErrNotFound           = errors.New("not_found")
)

// MinPasswordLength applies to sign-up and password changes.
const MinPasswordLength = 8

// storeErr maps store sentinels onto service errors and leaves anything
// else untouched.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return ErrAlreadyExists
	default:
		return err
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func clock(now func() time.Time) time.Time {
	if now != nil {
		return now().UTC()
	}
	return time.Now().UTC()
}

// currentUser re-reads the signed-in user from the store. A user deleted
// since sign-in ends the session.
func currentUser(ctx context.Context, st store.Store, sess *Session) (domain.User, error) {
	cached, err := sess.Require()
	if err != nil {
		return domain.User{}, err
	}
	u, err := st.Users().GetUserByID(ctx, cached.ID)
	if errors.Is(err, store.ErrNotFound) {
		sess.clear()
		return domain.User{}, ErrNoSession
	}
	if err != nil {
		return domain.User{}, err
	}
	sess.refresh(u)
	return u, nil
}

// checkStatus rejects accounts that may not hold a session.
func checkStatus(u domain.User) error {
	switch u.Status {
	case domain.StatusSuspended:
		return ErrAccountSuspended
	case domain.StatusInactive:
		return ErrAccountInactive
	}
	return nil
}
