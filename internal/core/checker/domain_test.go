package checker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ccdaniele/name-finder/internal/core"
)

func TestSanitizeDomainLabel(t *testing.T) {
	require.Equal(t, "zenvox", SanitizeDomainLabel("Zen-Vox"))
	require.Equal(t, "acme42", SanitizeDomainLabel(" Acme 42! "))
	require.Equal(t, "", SanitizeDomainLabel("--"))
}

func TestDomainCheckerRDAPAvailableUsesInventoryForPriceOnly(t *testing.T) {
	inventory := &stubInventory{quotes: map[string]InventoryQuote{
		"zenvox.com": {Available: false, Price: "$11.99", Currency: "USD"},
	}}
	checker := &DomainChecker{
		RDAP:      stubRDAP{"zenvox.com": {Known: true, Available: true}},
		Inventory: inventory,
	}

	result := checker.CheckDomain(context.Background(), "Zenvox", []string{".com"})
	require.True(t, result.Available)
	require.Equal(t, "zenvox.com", result.Domain)
	require.Equal(t, "$11.99", result.Price)
	require.Equal(t, core.DomainSourceRDAP, result.Source)
	require.Nil(t, result.TLDResults)
}

func TestDomainCheckerRDAPTakenSkipsInventory(t *testing.T) {
	inventory := &stubInventory{}
	checker := &DomainChecker{
		RDAP:      stubRDAP{"zenvox.com": {Known: true, Available: false}},
		Inventory: inventory,
	}

	result := checker.CheckDomain(context.Background(), "Zenvox", []string{"com"})
	require.False(t, result.Available)
	require.Equal(t, core.DomainSourceRDAP, result.Source)
	require.Empty(t, inventory.calls)
}

func TestDomainCheckerFallsBackToInventory(t *testing.T) {
	checker := &DomainChecker{
		RDAP: stubRDAP{},
		Inventory: &stubInventory{quotes: map[string]InventoryQuote{
			"zenvox.io": {Available: true, Price: "$39.99", Currency: "USD"},
		}},
	}

	result := checker.CheckDomain(context.Background(), "Zenvox", []string{".io"})
	require.True(t, result.Available)
	require.Equal(t, core.DomainSourceGoDaddy, result.Source)
	require.Equal(t, "$39.99", result.Price)
}

func TestDomainCheckerFailsClosed(t *testing.T) {
	checker := &DomainChecker{RDAP: stubRDAP{}, Inventory: &stubInventory{}}

	result := checker.CheckDomain(context.Background(), "Zenvox", []string{".com"})
	require.False(t, result.Available)
	require.Equal(t, core.DomainSourceUnknown, result.Source)
	require.Equal(t, "zenvox.com", result.Domain)

	withoutInventory := &DomainChecker{RDAP: stubRDAP{}}
	result = withoutInventory.CheckDomain(context.Background(), "Zenvox", []string{".com"})
	require.False(t, result.Available)
	require.Equal(t, core.DomainSourceUnknown, result.Source)
}

func TestDomainCheckerMultipleTLDs(t *testing.T) {
	checker := &DomainChecker{RDAP: stubRDAP{
		"zenvox.com": {Known: true, Available: false},
		"zenvox.io":  {Known: true, Available: true},
		"zenvox.ai":  {Known: true, Available: true},
	}}

	result := checker.CheckDomain(context.Background(), "Zenvox", []string{".com", ".io", ".ai"})
	require.True(t, result.Available)
	require.Equal(t, "zenvox.io", result.Domain)
	require.Len(t, result.TLDResults, 3)
	require.Equal(t, "zenvox.com", result.TLDResults[0].Domain)
}

func TestAggregateDomainResultsNoneAvailable(t *testing.T) {
	result := AggregateDomainResults([]core.DomainTLDResult{
		{TLD: ".com", Domain: "zenvox.com", Source: core.DomainSourceRDAP},
		{TLD: ".io", Domain: "zenvox.io", Source: core.DomainSourceUnknown},
	})
	require.False(t, result.Available)
	require.Equal(t, "zenvox.com", result.Domain)
	require.Equal(t, core.DomainSourceRDAP, result.Source)
	require.Len(t, result.TLDResults, 2)

	empty := AggregateDomainResults(nil)
	require.False(t, empty.Available)
	require.Equal(t, core.DomainSourceUnknown, empty.Source)
}

func TestDomainCheckerCachesVerdicts(t *testing.T) {
	cache := newMemoryCache()
	rdap := stubRDAP{"zenvox.com": {Known: true, Available: true}}
	checker := &DomainChecker{RDAP: rdap, Cache: cache}

	checker.CheckDomain(context.Background(), "Zenvox", []string{".com"})
	require.Equal(t, 1, cache.writes)

	delete(rdap, "zenvox.com")
	result := checker.CheckDomain(context.Background(), "Zenvox", []string{".com"})
	require.True(t, result.Available)
	require.Equal(t, core.DomainSourceRDAP, result.Source)
}
