package integration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbpos/backend/internal/domain/catalog"
	"github.com/wbpos/backend/internal/domain/shared"
	"github.com/wbpos/backend/internal/domain/tracking"
	"github.com/wbpos/backend/internal/infrastructure/cache"
	"github.com/wbpos/backend/internal/infrastructure/migration"
	"github.com/wbpos/backend/internal/infrastructure/persistence"
)

// testBlobStore runs the compare-and-swap contract every backend must keep
func testBlobStore(t *testing.T, store shared.BlobStore) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("create and update", func(t *testing.T) {
		v, err := store.Put(ctx, "cas", []byte(`{"a":1}`), 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)

		_, err = store.Put(ctx, "cas", []byte(`{"a":2}`), 0)
		assert.ErrorIs(t, err, shared.ErrVersionConflict, "create over an existing blob")

		v, err = store.Put(ctx, "cas", []byte(`{"a":2}`), 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), v)

		_, err = store.Put(ctx, "cas", []byte(`{"a":3}`), 1)
		assert.ErrorIs(t, err, shared.ErrVersionConflict, "stale version")

		blob, err := store.Get(ctx, "cas")
		require.NoError(t, err)
		assert.Equal(t, int64(2), blob.Version)
		assert.JSONEq(t, `{"a":2}`, string(blob.Data))
	})

	t.Run("concurrent writers", func(t *testing.T) {
		_, err := store.Put(ctx, "race", []byte(`{}`), 0)
		require.NoError(t, err)

		const writers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
			conflicts int
		)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Put(ctx, "race", []byte(`{"w":true}`), 1)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					succeeded++
				case errors.Is(err, shared.ErrVersionConflict):
					conflicts++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, succeeded)
		assert.Equal(t, writers-1, conflicts)
	})
}

func testConfigRepository(t *testing.T, store shared.BlobStore) {
	ctx := context.Background()
	repo := persistence.NewBlobConfigRepository(store, "")

	_, err := repo.Load(ctx)
	require.ErrorIs(t, err, shared.ErrNotFound)

	cfg := tracking.NewConfig()
	cfg.Token = "tok"
	require.NoError(t, cfg.SetProduct(42))
	cfg.SetKeywords([]string{"mug", "cup"})
	cfg.Record(tracking.Observations{
		"mug": {tracking.NewRankPoint("2026-10-12", 5), tracking.NewRankPoint("2026-10-13", 3)},
		"cup": {tracking.AbsentPoint("2026-10-13")},
	})
	require.NoError(t, repo.Save(ctx, cfg))
	assert.Equal(t, int64(1), cfg.GetVersion())

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), loaded.GetVersion())
	assert.Equal(t, []string{"mug", "cup"}, loaded.Keywords)
	assert.Equal(t, []tracking.Date{"2026-10-12", "2026-10-13"}, loaded.History.UnionDates())
	p, ok := loaded.History.PointAt("cup", "2026-10-13")
	require.True(t, ok)
	assert.True(t, p.Rank.IsAbsent())

	stale := tracking.NewConfig()
	assert.ErrorIs(t, repo.Save(ctx, stale), shared.ErrVersionConflict)
}

func TestPostgresBlobStore(t *testing.T) {
	tdb := NewTestDB(t)
	store := persistence.NewGormBlobStore(tdb.DB)

	require.NoError(t, store.Ping(context.Background()))
	testBlobStore(t, store)
	t.Run("config repository", func(t *testing.T) {
		testConfigRepository(t, store)
	})
}

func TestPostgresMigrations(t *testing.T) {
	tdb := NewTestDB(t)

	m, err := migration.New(tdb.SqlDB)
	require.NoError(t, err)

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	require.NoError(t, m.Up(), "up is idempotent")

	require.NoError(t, m.Down())
	var exists bool
	require.NoError(t, tdb.DB.Raw(`SELECT EXISTS (SELECT 1 FROM pg_tables WHERE tablename = 'config_blobs')`).Scan(&exists).Error)
	assert.False(t, exists)
}

func TestRedisBlobStore(t *testing.T) {
	client := NewTestRedis(t)
	store := cache.NewRedisBlobStoreWithClient(client, "wbpos-test:")

	require.NoError(t, store.Ping(context.Background()))
	testBlobStore(t, store)
	t.Run("config repository", func(t *testing.T) {
		testConfigRepository(t, store)
	})
}

func TestRedisCatalogCache(t *testing.T) {
	client := NewTestRedis(t)
	c := cache.NewRedisCatalogCacheWithClient(client, "wbpos-test:")
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	products := []catalog.Product{{ID: 42, Title: "Coffee mug"}, {ID: 7, VendorCode: "CUP-1"}}
	require.NoError(t, c.Set(ctx, "k", products, time.Minute))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, products, got)

	ttl, err := client.TTL(ctx, "wbpos-test:catalog:k").Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)

	require.NoError(t, c.Delete(ctx, "k"))
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
