package otp

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisStore_RoundTripAndTTL(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	s := NewRedisStore(rdb)

	exp := time.Now().Add(5 * time.Minute).Truncate(time.Second)
	require.NoError(t, s.Set(ctx, "otp:admin", Record{Code: "123456", ExpiresAt: exp}, 5*time.Minute))

	assert.Equal(t, 5*time.Minute, mr.TTL("otp:admin"))

	got, err := s.Get(ctx, "otp:admin")
	require.NoError(t, err)
	assert.Equal(t, "123456", got.Code)
	assert.True(t, exp.Equal(got.ExpiresAt))

	mr.FastForward(5*time.Minute + time.Second)
	_, err = s.Get(ctx, "otp:admin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_DeleteReportsPresence(t *testing.T) {
	ctx := context.Background()
	_, rdb := newTestRedis(t)
	s := NewRedisStore(rdb)

	require.NoError(t, s.Set(ctx, "k", Record{Code: "1"}, time.Minute))

	deleted, err := s.Delete(ctx, "k")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.Delete(ctx, "k")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRedisStore_DeleteIfCode(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	s := NewRedisStore(rdb)

	require.NoError(t, s.Set(ctx, "otp:admin", Record{Code: "123456"}, time.Minute))

	deleted, err := s.DeleteIfCode(ctx, "otp:admin", "654321")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.True(t, mr.Exists("otp:admin"))

	deleted, err = s.DeleteIfCode(ctx, "otp:admin", "123456")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.False(t, mr.Exists("otp:admin"))

	deleted, err = s.DeleteIfCode(ctx, "otp:admin", "123456")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestManager_WithRedisStore(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	m := NewManager(NewRedisStore(rdb), 5*time.Minute, WithGenerator(fixedCodes("246810")))

	code, err := m.Issue(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, mr.Exists("otp:admin"))

	require.NoError(t, m.Verify(ctx, "admin", code))
	assert.False(t, mr.Exists("otp:admin"))
	assert.ErrorIs(t, m.Verify(ctx, "admin", code), ErrInvalid)
}
