package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client), mr
}

func TestRedisStore_GetAbsent(t *testing.T) {
	store, _ := newTestStore(t)

	val, err := store.Get(context.Background(), "session:missing")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestRedisStore_SetWithTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	err := store.SetWithTTL(ctx, "session:abc", []byte(`{"access_token":"a"}`), 30*time.Second)
	require.NoError(t, err)

	val, err := store.Get(ctx, "session:abc")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"access_token":"a"}`), val)
	assert.Equal(t, 30*time.Second, mr.TTL("session:abc"))
}

func TestRedisStore_DeleteAbsentIsNoop(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.Delete(context.Background(), "session:missing")
	assert.NoError(t, err)
}

func TestRedisStore_SetMembership(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddToSet(ctx, "user_sessions:u1", "tok1"))
	require.NoError(t, store.AddToSet(ctx, "user_sessions:u1", "tok2"))
	require.NoError(t, store.AddToSet(ctx, "user_sessions:u1", "tok1")) // duplicate

	members, err := store.Members(ctx, "user_sessions:u1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"tok1", "tok2"}, members)

	require.NoError(t, store.Expire(ctx, "user_sessions:u1", time.Hour))
	assert.Equal(t, time.Hour, mr.TTL("user_sessions:u1"))
}

func TestRedisStore_MembersOfAbsentKey(t *testing.T) {
	store, _ := newTestStore(t)

	members, err := store.Members(context.Background(), "user_sessions:nobody")
	require.NoError(t, err)
	assert.Empty(t, members)
}
