package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/kakaologin/internal/login/domain"
	"github.com/aussiebroadwan/kakaologin/internal/login/store"
	"github.com/aussiebroadwan/kakaologin/pkg/cryptox"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "kakaologin:session:"

// Options configures the redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Sessions keeps session records in redis with a TTL matching each
// session's expiry, so redis evicts them without housekeeping. Keys are the
// fingerprint of the session id, never the id itself.
type Sessions struct {
	client *goredis.Client
	now    func() time.Time
}

// Open connects to redis and pings it.
func Open(ctx context.Context, opts Options) (*Sessions, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", opts.Addr, err)
	}
	return NewSessions(client), nil
}

func NewSessions(client *goredis.Client) *Sessions {
	return &Sessions{client: client, now: time.Now}
}

// record is the stored form. The access token is kept so logout can revoke
// it at the provider.
type record struct {
	Profile struct {
		ID          int64  `json:"id"`
		DisplayName string `json:"display_name,omitempty"`
		Email       string `json:"email,omitempty"`
		AvatarURL   string `json:"avatar_url,omitempty"`
	} `json:"profile"`
	AccessToken string    `json:"access_token"`
	LoginAt     time.Time `json:"login_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func key(id string) string {
	return keyPrefix + cryptox.FingerprintToken(id)
}

func (s *Sessions) SaveSession(ctx context.Context, sess domain.Session) error {
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("redis: session %q already expired", cryptox.FingerprintToken(sess.ID))
	}

	var rec record
	rec.Profile.ID = sess.Profile.ID
	rec.Profile.DisplayName = sess.Profile.DisplayName
	rec.Profile.Email = sess.Profile.Email
	rec.Profile.AvatarURL = sess.Profile.AvatarURL
	rec.AccessToken = sess.AccessToken
	rec.LoginAt = sess.LoginAt
	rec.ExpiresAt = sess.ExpiresAt

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redis: encode session: %w", err)
	}
	if err := s.client.Set(ctx, key(sess.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis: save session: %w", err)
	}
	return nil
}

func (s *Sessions) GetSession(ctx context.Context, id string) (domain.Session, error) {
	payload, err := s.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.Session{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("redis: get session: %w", err)
	}

	var rec record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return domain.Session{}, fmt.Errorf("redis: decode session: %w", err)
	}

	sess := domain.Session{
		ID: id,
		Profile: domain.Profile{
			ID:          rec.Profile.ID,
			DisplayName: rec.Profile.DisplayName,
			Email:       rec.Profile.Email,
			AvatarURL:   rec.Profile.AvatarURL,
		},
		AccessToken: rec.AccessToken,
		LoginAt:     rec.LoginAt,
		ExpiresAt:   rec.ExpiresAt,
	}
	if sess.Expired(s.now()) {
		return domain.Session{}, store.ErrNotFound
	}
	return sess, nil
}

func (s *Sessions) DeleteSession(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, key(id)).Result()
	if err != nil {
		return fmt.Errorf("redis: delete session: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteExpiredSessions is a no-op: keys carry their own TTL.
func (s *Sessions) DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

func (s *Sessions) Close() error { return s.client.Close() }
