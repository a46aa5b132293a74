package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/kakaologin/internal/login/domain"
)

var (
	ErrNotFound    = errors.New("store: not found")
	ErrUnavailable = errors.New("store: unavailable")
)

// Store is the durable user store. Concrete drivers (sqlite, postgres)
// implement it. Every repository call checks out its own connection and
// hands it back before returning, so nothing here needs a transaction.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error

	// Info describes the connection target for status reports.
	Info() Info

	Close() error
}

// Info is a printable description of a store's target. It never carries
// credentials.
type Info struct {
	Driver   string
	Database string
	Host     string
	Port     int
}

type Users interface {
	// UpsertUser inserts the profile or overwrites the stored one in a single
	// statement. created_at survives; updated_at and last_login become
	// loginAt. Returns the number of rows affected.
	UpsertUser(ctx context.Context, p domain.Profile, loginAt time.Time) (int64, error)

	// GetUser returns ErrNotFound when no row has the id.
	GetUser(ctx context.Context, id int64) (domain.User, error)

	// ListUsers returns every user, most recent login first.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// DeleteUser reports whether a row was removed.
	DeleteUser(ctx context.Context, id int64) (bool, error)

	CountUsers(ctx context.Context) (int64, error)
}

// Sessions holds the server-side half of browser sessions.
type Sessions interface {
	SaveSession(ctx context.Context, s domain.Session) error

	// GetSession returns ErrNotFound for unknown or expired sessions.
	GetSession(ctx context.Context, id string) (domain.Session, error)

	// DeleteSession returns ErrNotFound when there was nothing to delete.
	DeleteSession(ctx context.Context, id string) error

	// DeleteExpiredSessions is housekeeping. Backends that expire records on
	// their own may return 0.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error)

	Close() error
}
