package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/kakaologin/internal/login/domain"
	"github.com/aussiebroadwan/kakaologin/internal/login/store"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a throwaway redis container and returns a connected store.
func setupRedis(t *testing.T) *Sessions {
	t.Helper()
	if testing.Short() {
		t.Skip("redis container tests skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mappedPort, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	s, err := Open(ctx, Options{Addr: fmt.Sprintf("%s:%s", host, mappedPort.Port())})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestKeyHidesSessionID(t *testing.T) {
	t.Parallel()

	k := key("raw-session-id")
	require.Contains(t, k, keyPrefix)
	require.NotContains(t, k, "raw-session-id")
	require.Equal(t, k, key("raw-session-id"))
}

func TestSessionsRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := setupRedis(t)

	now := time.Now().UTC().Truncate(time.Second)
	sess := domain.Session{
		ID:          "sid-redis",
		Profile:     domain.Profile{ID: 42, DisplayName: "Alice", Email: "alice@example.com"},
		AccessToken: "tok-1",
		LoginAt:     now,
		ExpiresAt:   now.Add(time.Hour),
	}

	t.Run("save then get", func(t *testing.T) {
		require.NoError(t, s.SaveSession(ctx, sess))

		got, err := s.GetSession(ctx, sess.ID)
		require.NoError(t, err)
		require.Equal(t, sess.Profile, got.Profile)
		require.Equal(t, "tok-1", got.AccessToken)
		require.True(t, got.ExpiresAt.Equal(sess.ExpiresAt))

		ttl, err := s.client.TTL(ctx, key(sess.ID)).Result()
		require.NoError(t, err)
		require.Greater(t, ttl, 50*time.Minute)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.DeleteSession(ctx, sess.ID))
		require.ErrorIs(t, s.DeleteSession(ctx, sess.ID), store.ErrNotFound)

		_, err := s.GetSession(ctx, sess.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("expired sessions are rejected on save", func(t *testing.T) {
		err := s.SaveSession(ctx, domain.Session{ID: "late", ExpiresAt: now.Add(-time.Minute)})
		require.Error(t, err)
	})
}
