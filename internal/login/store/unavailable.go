package store

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/kakaologin/internal/login/domain"
)

// Unavailable stands in for a user store that could not be opened at startup.
// Every call fails with ErrUnavailable wrapping the original cause, which lets
// the service keep running in session-only mode.
type Unavailable struct {
	Cause  error
	Target Info
}

func NewUnavailable(target Info, cause error) *Unavailable {
	return &Unavailable{Cause: cause, Target: target}
}

func (u *Unavailable) err() error {
	if u.Cause == nil {
		return ErrUnavailable
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, u.Cause)
}

func (u *Unavailable) Users() Users                   { return unavailableUsers{u} }
func (u *Unavailable) ApplyMigrations() error         { return u.err() }
func (u *Unavailable) Ping(ctx context.Context) error { return u.err() }
func (u *Unavailable) Info() Info                     { return u.Target }
func (u *Unavailable) Close() error                   { return nil }

type unavailableUsers struct{ u *Unavailable }

func (r unavailableUsers) UpsertUser(ctx context.Context, p domain.Profile, loginAt time.Time) (int64, error) {
	return 0, r.u.err()
}

func (r unavailableUsers) GetUser(ctx context.Context, id int64) (domain.User, error) {
	return domain.User{}, r.u.err()
}

func (r unavailableUsers) ListUsers(ctx context.Context) ([]domain.User, error) {
	return nil, r.u.err()
}

func (r unavailableUsers) DeleteUser(ctx context.Context, id int64) (bool, error) {
	return false, r.u.err()
}

func (r unavailableUsers) CountUsers(ctx context.Context) (int64, error) {
	return 0, r.u.err()
}
