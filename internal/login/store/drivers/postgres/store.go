package postgres

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/kakaologin/internal/login/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Options describes a postgres target. Password never appears in Info or
// log output.
type Options struct {
	Host           string
	Port           int
	User           string
	Password       string
	Database       string
	SSLMode        string
	ConnectTimeout time.Duration
}

// DSN renders the options as a postgres:// URL.
func (o Options) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(o.User, o.Password),
		Host:   o.Host + ":" + strconv.Itoa(o.Port),
		Path:   "/" + o.Database,
	}
	q := url.Values{}
	if o.SSLMode != "" {
		q.Set("sslmode", o.SSLMode)
	}
	if o.ConnectTimeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(o.ConnectTimeout.Seconds())))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

type Store struct {
	pool *pgxpool.Pool
	dsn  string
	info store.Info
}

// Open connects a pool to the target and pings it.
func Open(ctx context.Context, opts Options) (*Store, error) {
	s, err := NewStore(ctx, opts.DSN())
	if err != nil {
		return nil, err
	}
	if err := s.Ping(ctx); err != nil {
		s.pool.Close()
		return nil, fmt.Errorf("postgres: ping %s:%d: %w", opts.Host, opts.Port, err)
	}
	return s, nil
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}

	return &Store{
		pool: pool,
		dsn:  dsn,
		info: store.Info{
			Driver:   "postgres",
			Database: cfg.ConnConfig.Database,
			Host:     cfg.ConnConfig.Host,
			Port:     int(cfg.ConnConfig.Port),
		},
	}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Info() store.Info { return s.info }

func (s *Store) Users() store.Users { return &usersRepo{s: s} }

// withConn acquires a pooled connection for the duration of fn and releases
// it on every path.
func (s *Store) withConn(ctx context.Context, fn func(conn *pgxpool.Conn) error) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("postgres: acquire connection: %w", err)
	}
	defer conn.Release()
	return fn(conn)
}

// migrateURL rewrites a postgres:// DSN for golang-migrate's pgx/v5 driver.
func migrateURL(dsn string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if rest, ok := strings.CutPrefix(dsn, prefix); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func mapStringNull(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func mapNullString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
