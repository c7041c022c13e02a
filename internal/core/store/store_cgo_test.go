//go:build cgo

package store

import (
	"context"
	"testing"
	"time"

	"github.com/ccdaniele/name-finder/internal/config"
	"github.com/ccdaniele/name-finder/internal/core"
	"github.com/stretchr/testify/require"
)

func TestOpenMemoryStore(t *testing.T) {
	ctx := context.Background()
	cfg := config.StoreConfig{
		Driver: "libsql",
		Path:   ":memory:",
	}

	store, err := Open(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, store)
	require.Equal(t, "libsql", store.Driver())
	require.NoError(t, store.Close())
}

func TestFileStoreCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, config.StoreConfig{Path: t.TempDir() + "/namefinder.db"})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Migrate(ctx))

	want := core.DomainResult{Available: true, Domain: "zenvox.io", Price: "$12.00", Source: core.DomainSourceGoDaddy}
	require.NoError(t, store.SetCachedCheck(ctx, "Zenvox", core.CheckTypeDomain, ".io", true, want, time.Hour))

	var got core.DomainResult
	ok, err := store.GetCachedCheck(ctx, "zenvox", core.CheckTypeDomain, ".io", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, got)

	entries, err := store.ListCachedChecks(ctx, "")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	n, err := store.PurgeCache(ctx, true)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}
