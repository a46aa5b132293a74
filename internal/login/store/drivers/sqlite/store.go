package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/aussiebroadwan/kakaologin/internal/login/store"
	_ "modernc.org/sqlite"
)

type Store struct {
	db   *sql.DB
	path string
}

// DSN builds a modernc.org/sqlite connection string for a database file. Times
// are written in SQLite's own text format so they sort and scan back as
// time.Time.
func DSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Set("_time_format", "sqlite")
	return "file:" + path + "?" + q.Encode()
}

// Open opens the database file at path and verifies it answers a ping.
func Open(ctx context.Context, path string) (*Store, error) {
	s, err := NewStore(DSN(path))
	if err != nil {
		return nil, err
	}
	s.path = path
	if err := s.Ping(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("sqlite: ping %s: %w", path, err)
	}
	return s, nil
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, path: dsn}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Info() store.Info {
	return store.Info{Driver: "sqlite", Database: filepath.Base(s.path)}
}

func (s *Store) Users() store.Users { return &usersRepo{s: s} }

// withConn checks a connection out of the pool for the duration of fn and
// returns it on every path.
func (s *Store) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("sqlite: acquire connection: %w", err)
	}
	defer conn.Close()
	return fn(conn)
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

// dbTime normalises a timestamp before it is written. Keeping every value in
// UTC with microsecond precision keeps the text column ordering chronological.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
