package cache

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/lepinkainen/kindlecovers/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestData struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func setupTestCache(t *testing.T) *CacheDB {
	t.Helper()

	env := testutil.NewTestEnv(t)
	cache, err := Open(filepath.Join(env.RootDir(), "test_cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	return cache
}

func setCachedAt(t *testing.T, cache *CacheDB, key string, at time.Time) {
	t.Helper()

	_, err := cache.db.Exec("UPDATE "+PageTable+" SET cached_at = ? WHERE cache_key = ?", at.UTC(), key)
	require.NoError(t, err)
}

func TestGetOrFetch_CacheHit(t *testing.T) {
	cache := setupTestCache(t)
	require.NoError(t, cache.Set(PageTable, "test-key", `{"id":1,"name":"Test"}`))

	fetchCalled := false
	result, fromCache, err := GetOrFetch(cache, PageTable, "test-key", time.Hour, func() (TestData, error) {
		fetchCalled = true
		return TestData{}, nil
	})

	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.False(t, fetchCalled, "fetch function must not run on a hit")
	assert.Equal(t, TestData{ID: 1, Name: "Test"}, result)
}

func TestGetOrFetch_CacheMiss(t *testing.T) {
	cache := setupTestCache(t)

	calls := 0
	fetch := func() (TestData, error) {
		calls++
		return TestData{ID: 2, Name: "Fetched"}, nil
	}

	result, fromCache, err := GetOrFetch(cache, PageTable, "miss", time.Hour, fetch)
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, "Fetched", result.Name)

	result, fromCache, err = GetOrFetch(cache, PageTable, "miss", time.Hour, fetch)
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Equal(t, 2, result.ID)
	assert.Equal(t, 1, calls)
}

func TestGetOrFetch_RespectsTTLExpiration(t *testing.T) {
	cache := setupTestCache(t)
	require.NoError(t, cache.Set(PageTable, "old", `{"id":1,"name":"Stale"}`))
	setCachedAt(t, cache, "old", time.Now().Add(-2*time.Hour))

	result, fromCache, err := GetOrFetch(cache, PageTable, "old", time.Hour, func() (TestData, error) {
		return TestData{ID: 3, Name: "Fresh"}, nil
	})

	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, "Fresh", result.Name)
}

func TestGetOrFetch_FetchErrorNotCached(t *testing.T) {
	cache := setupTestCache(t)
	boom := errors.New("boom")

	_, _, err := GetOrFetch(cache, PageTable, "err", time.Hour, func() (TestData, error) {
		return TestData{}, boom
	})

	require.ErrorIs(t, err, boom)
	assert.False(t, cache.CacheExists(PageTable, "err"))
}

func TestGetOrFetch_NilCache(t *testing.T) {
	result, fromCache, err := GetOrFetch[TestData](nil, PageTable, "k", time.Hour, func() (TestData, error) {
		return TestData{ID: 9}, nil
	})

	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, 9, result.ID)
}

func TestGetOrFetchWithPolicy_SkipsRejectedValues(t *testing.T) {
	cache := setupTestCache(t)
	calls := 0
	fetch := func() (TestData, error) {
		calls++
		return TestData{ID: calls, Name: "blocked"}, nil
	}
	onlyUnblocked := func(d TestData) bool { return d.Name != "blocked" }

	result, fromCache, err := GetOrFetchWithPolicy(cache, PageTable, "policy", time.Hour, fetch, onlyUnblocked)
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, 1, result.ID)
	assert.False(t, cache.CacheExists(PageTable, "policy"))

	_, fromCache, err = GetOrFetchWithPolicy(cache, PageTable, "policy", time.Hour, fetch, onlyUnblocked)
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, 2, calls)
}

func TestGetOrFetchWithPolicy_StoresAcceptedValues(t *testing.T) {
	cache := setupTestCache(t)
	fetch := func() (TestData, error) { return TestData{ID: 7, Name: "ok"}, nil }
	always := func(TestData) bool { return true }

	_, _, err := GetOrFetchWithPolicy(cache, PageTable, "accepted", time.Hour, fetch, always)
	require.NoError(t, err)
	assert.True(t, cache.CacheExists(PageTable, "accepted"))
}

func TestCacheDB_InvalidTable(t *testing.T) {
	cache := setupTestCache(t)

	require.Error(t, cache.Set("users; DROP TABLE page_cache", "k", "v"))
	_, _, err := cache.Get("unknown_cache", "k", time.Hour)
	require.Error(t, err)
	_, err = cache.ClearAll("unknown_cache")
	require.Error(t, err)
	assert.False(t, cache.CacheExists("unknown_cache", "k"))
}

func TestCacheDB_ClearExpired(t *testing.T) {
	cache := setupTestCache(t)
	require.NoError(t, cache.Set(PageTable, "old", "{}"))
	require.NoError(t, cache.Set(PageTable, "new", "{}"))
	setCachedAt(t, cache, "old", time.Now().Add(-48*time.Hour))

	rows, err := cache.ClearExpired(PageTable, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	assert.False(t, cache.CacheExists(PageTable, "old"))
	assert.True(t, cache.CacheExists(PageTable, "new"))
}

func TestCacheDB_ClearAll(t *testing.T) {
	cache := setupTestCache(t)
	require.NoError(t, cache.Set(PageTable, "a", "{}"))
	require.NoError(t, cache.Set(PageTable, "b", "{}"))

	rows, err := cache.ClearAll(PageTable)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rows)

	rows, err = cache.ClearAll(PageTable)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
}
