package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/atinyakov/AuthPortal/internal/common"
	"github.com/atinyakov/AuthPortal/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*RedisSessionRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSessionRepository(client), mr
}

func TestRedisSessionRepository_RoundTrip(t *testing.T) {
	repo, mr := setupRedis(t)
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	s := &models.Session{Token: "tok", UserID: "u1", Username: "alice", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, repo.CreateSession(ctx, s))

	assert.Equal(t, time.Hour, mr.TTL("session:tok"))

	got, err := repo.GetSession(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.True(t, got.ExpiresAt.Equal(s.ExpiresAt))

	require.NoError(t, repo.DeleteSession(ctx, "tok"))
	_, err = repo.GetSession(ctx, "tok")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRedisSessionRepository_ExpiresWithTTL(t *testing.T) {
	repo, mr := setupRedis(t)
	ctx := context.Background()

	now := time.Now()
	repo.now = func() time.Time { return now }
	require.NoError(t, repo.CreateSession(ctx, &models.Session{Token: "tok", ExpiresAt: now.Add(time.Minute)}))

	mr.FastForward(2 * time.Minute)

	_, err := repo.GetSession(ctx, "tok")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRedisSessionRepository_RejectsExpired(t *testing.T) {
	repo, _ := setupRedis(t)
	now := time.Now()
	repo.now = func() time.Time { return now }

	err := repo.CreateSession(context.Background(), &models.Session{Token: "tok", ExpiresAt: now.Add(-time.Second)})
	assert.Error(t, err)
}

func TestRedisSessionRepository_CorruptValue(t *testing.T) {
	repo, mr := setupRedis(t)
	require.NoError(t, mr.Set("session:bad", "{not json"))

	_, err := repo.GetSession(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrNotFound)
}

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := ConnectRedis(context.Background(), mr.Addr(), "")
	require.NoError(t, err)
	_ = client.Close()

	mr.Close()
	_, err = ConnectRedis(context.Background(), mr.Addr(), "")
	assert.Error(t, err)
}

func TestRedisSessionRepository_DeleteAllSessions(t *testing.T) {
	repo, mr := setupRedis(t)
	ctx := context.Background()

	now := time.Now()
	repo.now = func() time.Time { return now }
	for _, tok := range []string{"a", "b", "c"} {
		require.NoError(t, repo.CreateSession(ctx, &models.Session{Token: tok, ExpiresAt: now.Add(time.Hour)}))
	}
	require.NoError(t, mr.Set("unrelated", "keep"))

	require.NoError(t, repo.DeleteAllSessions(ctx))

	for _, tok := range []string{"a", "b", "c"} {
		_, err := repo.GetSession(ctx, tok)
		assert.ErrorIs(t, err, common.ErrNotFound)
	}
	assert.True(t, mr.Exists("unrelated"))

	// Nothing left to delete is not an error.
	require.NoError(t, repo.DeleteAllSessions(ctx))
}
