package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRegistry_RegisterAndExpire(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	reg := NewRedisRegistry(client)
	ctx := context.Background()

	require.NoError(t, reg.Register(ctx, "session_1_abcdefghi", time.Minute))

	ok, err := reg.Exists(ctx, "session_1_abcdefghi")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("session:session_1_abcdefghi"))

	ok, err = reg.Exists(ctx, "session_2_unknown00")
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(2 * time.Minute)

	ok, err = reg.Exists(ctx, "session_1_abcdefghi")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisRegistry_PropagatesErrors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	reg := NewRedisRegistry(client)
	ctx := context.Background()

	mock.Regexp().ExpectSet("session:session_1_abcdefghi", `.+`, time.Minute).SetErr(errors.New("READONLY"))
	err := reg.Register(ctx, "session_1_abcdefghi", time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "register session")

	mock.ExpectExists("session:session_1_abcdefghi").SetErr(errors.New("connection reset"))
	_, err = reg.Exists(ctx, "session_1_abcdefghi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lookup session")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryRegistry_Expiry(t *testing.T) {
	reg := NewMemoryRegistry()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, reg.Register(ctx, "a", time.Minute))
	require.NoError(t, reg.Register(ctx, "b", time.Hour))

	ok, _ := reg.Exists(ctx, "a")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = reg.Exists(ctx, "a")
	assert.False(t, ok)
	ok, _ = reg.Exists(ctx, "b")
	assert.True(t, ok)

	// registering prunes anything else that has expired
	now = now.Add(2 * time.Hour)
	require.NoError(t, reg.Register(ctx, "c", time.Minute))
	assert.Equal(t, 1, reg.Len())
}
