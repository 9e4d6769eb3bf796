package cache

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"climate-risk/internal/migrate"
	"climate-risk/internal/risk"
	"climate-risk/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	k := Key("123 Main St, Sacramento, CA")
	assert.True(t, strings.HasPrefix(k, KeyPrefix))
	assert.Equal(t, k, Key("  123  MAIN st,   Sacramento, ca "))
	assert.NotEqual(t, k, Key("124 Main St, Sacramento, CA"))
}

func TestMemoryStoreEviction(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(2)
	require.NoError(t, m.Set(ctx, "a", Entry{Timestamp: 1}))
	require.NoError(t, m.Set(ctx, "b", Entry{Timestamp: 2}))
	_, ok, _ := m.Get(ctx, "a")
	require.True(t, ok)
	require.NoError(t, m.Set(ctx, "c", Entry{Timestamp: 3}))

	assert.Equal(t, 2, m.Len())
	_, ok, _ = m.Get(ctx, "b")
	assert.False(t, ok, "least recently used entry is evicted")
	e, ok, _ := m.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, int64(1), e.Timestamp)

	require.NoError(t, m.Delete(ctx, "a"))
	assert.Equal(t, 1, m.Len())
}

func sampleBundle() risk.Bundle {
	return risk.Bundle{Flood: &risk.Verdict{Available: true, Level: 3, Description: risk.DescHigh}}
}

func TestCacheStaleness(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(0)
	c := New(m, 0)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set(ctx, "1 Ocean Ave", sampleBundle())
	b, ok := c.Get(ctx, "1 ocean ave")
	require.True(t, ok)
	assert.Equal(t, 3, b.Flood.Level)

	now = now.Add(DefaultMaxAge - time.Millisecond)
	_, ok = c.Get(ctx, "1 Ocean Ave")
	assert.True(t, ok)

	now = now.Add(time.Millisecond)
	_, ok = c.Get(ctx, "1 Ocean Ave")
	assert.False(t, ok, "entry at the window boundary is stale")
	assert.Equal(t, 0, m.Len(), "stale entry is removed")
}

func TestExpiredBoundary(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cutoff := Cutoff(now, DefaultMaxAge)
	assert.Equal(t, now.Add(-DefaultMaxAge).UnixMilli(), cutoff)
	assert.True(t, Expired(cutoff, cutoff), "exactly maxAge old")
	assert.True(t, Expired(cutoff-1, cutoff))
	assert.False(t, Expired(cutoff+1, cutoff))
}

func TestCacheRemove(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStore(0), time.Hour)
	c.Set(ctx, "addr", sampleBundle())
	c.Remove(ctx, "addr")
	_, ok := c.Get(ctx, "addr")
	assert.False(t, ok)
}

type failingBackend struct{}

func (failingBackend) Name() string { return "failing" }
func (failingBackend) Get(context.Context, string) (Entry, bool, error) {
	return Entry{}, false, errors.New("down")
}
func (failingBackend) Set(context.Context, string, Entry) error { return errors.New("down") }
func (failingBackend) Delete(context.Context, string) error { return errors.New("down") }

func TestCacheBackendErrorsAreMisses(t *testing.T) {
	ctx := context.Background()
	c := New(failingBackend{}, 0)
	c.Set(ctx, "addr", sampleBundle())
	_, ok := c.Get(ctx, "addr")
	assert.False(t, ok)
	c.Remove(ctx, "addr")
}

func TestRedisStore(t *testing.T) {
	if os.Getenv("REDIS_HOST") == "" {
		t.Skip("REDIS_HOST not set")
	}
	ctx := context.Background()
	s := NewRedisStore(utils.OpenRedisFromEnv(), time.Minute)
	key := Key("redis store test")
	require.NoError(t, s.Set(ctx, key, Entry{Data: sampleBundle(), Timestamp: 42}))
	e, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(42), e.Timestamp)
	require.NoError(t, s.Delete(ctx, key))
	_, ok, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPGStore(t *testing.T) {
	if os.Getenv("PG_HOST") == "" {
		t.Skip("PG_HOST not set")
	}
	ctx := context.Background()
	db, err := utils.OpenPostgresFromEnv()
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, migrate.EnsureSchema(ctx, db))

	s := NewPGStore(db)
	key := Key("pg store test")
	old := time.Now().Add(-2 * DefaultMaxAge).UnixMilli()
	require.NoError(t, s.Set(ctx, key, Entry{Data: sampleBundle(), Timestamp: old}))
	e, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, old, e.Timestamp)

	n, err := s.PurgeOlderThan(ctx, DefaultMaxAge)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))
	_, ok, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	cutoff := Cutoff(time.Now(), DefaultMaxAge)
	edge := Key("pg store boundary")
	require.NoError(t, s.Set(ctx, edge, Entry{Data: sampleBundle(), Timestamp: cutoff}))
	_, err = s.PurgeBefore(ctx, cutoff)
	require.NoError(t, err)
	_, ok, err = s.Get(ctx, edge)
	require.NoError(t, err)
	assert.False(t, ok, "row exactly maxAge old is purged")
}
