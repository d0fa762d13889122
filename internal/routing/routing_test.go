package routing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewCache(rdb, ttl), mr
}

func TestResolvePath(t *testing.T) {
	var gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"routes":[{"summary":{"distance":1200}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", 5*time.Second, nil)
	geom, err := c.ResolvePath(context.Background(), 37.5, 127.0, 37.6, 127.1)
	require.NoError(t, err)
	assert.JSONEq(t, `{"routes":[{"summary":{"distance":1200}}]}`, string(geom))

	assert.Equal(t, "KakaoAK test-key", gotAuth)
	// Provider coordinates are lon,lat.
	assert.Contains(t, gotQuery, "origin=127.000000%2C37.500000")
	assert.Contains(t, gotQuery, "destination=127.100000%2C37.600000")
	assert.Contains(t, gotQuery, "priority=RECOMMEND")
}

func TestResolvePath_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", time.Second, nil)
	_, err := c.ResolvePath(context.Background(), 37.5, 127.0, 37.6, 127.1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestResolvePath_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", time.Second, nil)
	_, err := c.ResolvePath(context.Background(), 37.5, 127.0, 37.6, 127.1)
	assert.Error(t, err)
}

func TestResolvePath_CacheHitSkipsProvider(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"routes":[]}`))
	}))
	defer srv.Close()

	cache, _ := newTestCache(t, time.Minute)
	c := NewClient(srv.URL, "test-key", time.Second, cache)

	first, err := c.ResolvePath(context.Background(), 37.5, 127.0, 37.6, 127.1)
	require.NoError(t, err)

	second, err := c.ResolvePath(context.Background(), 37.5, 127.0, 37.6, 127.1)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.EqualValues(t, 1, calls.Load(), "second resolve should come from cache")
}

func TestResolvePath_ExpiredEntryRefetches(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"routes":[]}`))
	}))
	defer srv.Close()

	cache, mr := newTestCache(t, time.Minute)
	c := NewClient(srv.URL, "test-key", time.Second, cache)

	_, err := c.ResolvePath(context.Background(), 37.5, 127.0, 37.6, 127.1)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = c.ResolvePath(context.Background(), 37.5, 127.0, 37.6, 127.1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())
}

func TestCache_RoundtripAndKeyRounding(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, ok := cache.Get(ctx, 37.5, 127.0, 37.6, 127.1)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, 37.5, 127.0, 37.6, 127.1, []byte(`{"routes":[]}`)))

	got, ok := cache.Get(ctx, 37.5, 127.0, 37.6, 127.1)
	require.True(t, ok)
	assert.Equal(t, `{"routes":[]}`, string(got))

	// Coordinates that agree to four decimals share an entry.
	got, ok = cache.Get(ctx, 37.50004, 127.00001, 37.59999, 127.09997)
	require.True(t, ok)
	assert.Equal(t, `{"routes":[]}`, string(got))

	assert.True(t, mr.Exists("route:37.5000,127.0000:37.6000,127.1000"))
}

func TestCache_RedisDownIsAMiss(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	mr.Close()

	_, ok := cache.Get(context.Background(), 37.5, 127.0, 37.6, 127.1)
	assert.False(t, ok)
	assert.Error(t, cache.Set(context.Background(), 37.5, 127.0, 37.6, 127.1, []byte("{}")))
}
