package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/storage"
)

func setupProvider(t *testing.T) (*Provider, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewProvider(client, 720*time.Hour, time.Hour), mr
}

func TestKV_SetGet(t *testing.T) {
	p, mr := setupProvider(t)
	ctx := context.Background()
	kv := p.Local("sess-1")

	require.NoError(t, kv.Set(ctx, storage.KeyCart, []byte(`[]`)))

	got, err := kv.Get(ctx, storage.KeyCart)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	raw, err := mr.Get("sf:local:sess-1:cart")
	require.NoError(t, err)
	assert.Equal(t, `[]`, raw)
	assert.Equal(t, 720*time.Hour, mr.TTL("sf:local:sess-1:cart"))
}

func TestKV_GetMissing(t *testing.T) {
	p, _ := setupProvider(t)
	_, err := p.Session("sess-1").Get(context.Background(), storage.KeyOrder)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestKV_Remove(t *testing.T) {
	p, mr := setupProvider(t)
	ctx := context.Background()
	kv := p.Session("sess-1")

	require.NoError(t, kv.Set(ctx, storage.KeyOrder, []byte(`{}`)))
	require.NoError(t, kv.Remove(ctx, storage.KeyOrder))
	assert.False(t, mr.Exists("sf:session:sess-1:order"))

	// Removing a missing key is not an error.
	require.NoError(t, kv.Remove(ctx, storage.KeyOrder))
}

func TestKV_NamespacesAreIsolated(t *testing.T) {
	p, _ := setupProvider(t)
	ctx := context.Background()

	require.NoError(t, p.Local("a").Set(ctx, "k", []byte("local-a")))
	require.NoError(t, p.Session("a").Set(ctx, "k", []byte("session-a")))
	require.NoError(t, p.Local("b").Set(ctx, "k", []byte("local-b")))

	got, err := p.Local("a").Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "local-a", string(got))

	got, err = p.Session("a").Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "session-a", string(got))
}

func TestKV_SessionStoreExpires(t *testing.T) {
	p, mr := setupProvider(t)
	ctx := context.Background()
	kv := p.Session("s")

	require.NoError(t, kv.Set(ctx, storage.KeyOrder, []byte(`{}`)))
	mr.FastForward(61 * time.Minute)

	_, err := kv.Get(ctx, storage.KeyOrder)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestKV_ErrorsWhenRedisDown(t *testing.T) {
	p, mr := setupProvider(t)
	mr.Close()

	ctx := context.Background()
	_, err := p.Local("s").Get(ctx, "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
	assert.Error(t, p.Local("s").Set(ctx, "k", nil))
	assert.Error(t, p.Ping(ctx))
}

func TestJSONHelpers(t *testing.T) {
	p, _ := setupProvider(t)
	ctx := context.Background()
	kv := p.Local("s")

	require.NoError(t, storage.SetJSON(ctx, kv, "prefs", map[string]string{"name": "Ada"}))
	var got map[string]string
	require.NoError(t, storage.GetJSON(ctx, kv, "prefs", &got))
	assert.Equal(t, "Ada", got["name"])

	require.NoError(t, kv.Set(ctx, "bad", []byte("{")))
	assert.Error(t, storage.GetJSON(ctx, kv, "bad", &got))
}
