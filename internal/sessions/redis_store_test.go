package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hoteldesk/internal/domain"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb), mr
}

func TestRedisStore_SaveGetDelete(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	s := testSession(time.Now())

	require.NoError(t, store.Save(ctx, s))
	assert.True(t, mr.Exists("session:sid-1"))
	ttl := mr.TTL("session:sid-1")
	assert.True(t, ttl > 59*time.Minute && ttl <= time.Hour, "ttl=%s", ttl)

	got, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, s.UserID, got.UserID)
	assert.Equal(t, s.Username, got.Username)

	require.NoError(t, store.Delete(ctx, "sid-1"))
	require.NoError(t, store.Delete(ctx, "sid-1"))
	_, err = store.Get(ctx, "sid-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedisStore_ExpiresWithTTL(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSession(time.Now())))
	mr.FastForward(2 * time.Hour)

	_, err := store.Get(ctx, "sid-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedisStore_SaveAlreadyExpired(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	now := time.Now()
	s := domain.Session{ID: "gone", UserID: 1, CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}

	require.NoError(t, store.Save(ctx, s))
	assert.False(t, mr.Exists("session:gone"))
}
