package repository

import (
	"context"
	"testing"

	"github.com/atinyakov/AuthPortal/internal/common"
	"github.com/atinyakov/AuthPortal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Users(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	require.NoError(t, m.CreateUser(ctx, &models.User{ID: "1", Username: "alice"}))
	assert.ErrorIs(t, m.CreateUser(ctx, &models.User{ID: "2", Username: "alice"}), common.ErrUserExists)

	ok, err := m.UserExists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	u, err := m.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "1", u.ID)

	_, err = m.GetUserByUsername(ctx, "bob")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryStore_Sessions(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	require.NoError(t, m.CreateSession(ctx, &models.Session{Token: "t1", Username: "alice"}))

	s, err := m.GetSession(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "alice", s.Username)

	require.NoError(t, m.DeleteSession(ctx, "t1"))
	_, err = m.GetSession(ctx, "t1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryStore_DeleteAllUsersDropsSessions(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	require.NoError(t, m.CreateUser(ctx, &models.User{ID: "1", Username: "alice"}))
	require.NoError(t, m.CreateSession(ctx, &models.Session{Token: "t1", UserID: "1"}))

	require.NoError(t, m.DeleteAllUsers(ctx))

	ok, err := m.UserExists(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = m.GetSession(ctx, "t1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryStore_DeleteAllSessionsKeepsUsers(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	require.NoError(t, m.CreateUser(ctx, &models.User{ID: "1", Username: "alice"}))
	require.NoError(t, m.CreateSession(ctx, &models.Session{Token: "t1", UserID: "1"}))

	require.NoError(t, m.DeleteAllSessions(ctx))

	_, err := m.GetSession(ctx, "t1")
	assert.ErrorIs(t, err, common.ErrNotFound)
	ok, err := m.UserExists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)
}
