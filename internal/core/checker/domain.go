package checker

import (
	"context"
	"strings"
	"time"

	"github.com/ccdaniele/name-finder/internal/core"
	"github.com/ccdaniele/name-finder/internal/metrics"
)

// DomainChecker resolves domain availability in two tiers: RDAP first, then
// the registrar's inventory. It fails closed: a domain nobody can vouch for
// is reported unavailable.
type DomainChecker struct {
	RDAP        RDAPLookup
	Inventory   InventoryProvider
	Cache       ResultCache
	CachePolicy CachePolicy
}

// SanitizeDomainLabel lowercases a name and keeps only ASCII letters and digits.
func SanitizeDomainLabel(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CheckDomain checks name under every TLD and aggregates the verdicts.
func (c *DomainChecker) CheckDomain(ctx context.Context, name string, tlds []string) core.DomainResult {
	start := time.Now()
	label := SanitizeDomainLabel(name)

	results := make([]core.DomainTLDResult, 0, len(tlds))
	for _, raw := range tlds {
		tld := core.NormalizeTLD(raw)
		if tld == "" {
			continue
		}
		results = append(results, c.checkTLD(ctx, label, tld))
	}

	aggregated := AggregateDomainResults(results)
	metrics.RecordCheck(string(core.CheckTypeDomain), domainOutcome(aggregated), time.Since(start))
	return aggregated
}

func (c *DomainChecker) checkTLD(ctx context.Context, label, tld string) core.DomainTLDResult {
	domain := label + tld
	result := core.DomainTLDResult{TLD: tld, Domain: domain, Source: core.DomainSourceUnknown}
	if label == "" {
		return result
	}

	var cached core.DomainTLDResult
	if lookupCache(ctx, c.Cache, label, core.CheckTypeDomain, tld, &cached) {
		return cached
	}

	verdict := RDAPVerdict{}
	if c.RDAP != nil {
		verdict = c.RDAP.LookupDomain(ctx, domain)
	}

	if verdict.Known {
		result.Source = core.DomainSourceRDAP
		result.Available = verdict.Available
		if verdict.Available && c.Inventory != nil {
			// Pricing only; RDAP stays authoritative on availability.
			if quote, err := c.Inventory.Quote(ctx, domain); err == nil {
				result.Price = quote.Price
				result.Currency = quote.Currency
			}
		}
		storeCache(ctx, c.Cache, c.CachePolicy, label, core.CheckTypeDomain, tld, result.Available, result)
		return result
	}

	if c.Inventory == nil {
		logDegraded(core.CheckTypeDomain, FailClosed, "inventory", domain, ErrMissingCredentials)
		return result
	}

	quote, err := c.Inventory.Quote(ctx, domain)
	if err != nil {
		logDegraded(core.CheckTypeDomain, FailClosed, "godaddy", domain, err)
		return result
	}

	result.Source = core.DomainSourceGoDaddy
	result.Available = quote.Available
	result.Price = quote.Price
	result.Currency = quote.Currency
	storeCache(ctx, c.Cache, c.CachePolicy, label, core.CheckTypeDomain, tld, result.Available, result)
	return result
}

// AggregateDomainResults folds per-TLD verdicts into one result. The
// representative domain is the first available one, else the first checked.
func AggregateDomainResults(results []core.DomainTLDResult) core.DomainResult {
	if len(results) == 0 {
		return core.DomainResult{Source: core.DomainSourceUnknown}
	}

	representative := results[0]
	available := false
	for _, r := range results {
		if r.Available {
			if !available {
				representative = r
			}
			available = true
		}
	}

	aggregated := core.DomainResult{
		Available: available,
		Domain:    representative.Domain,
		Price:     representative.Price,
		Currency:  representative.Currency,
		Source:    representative.Source,
	}
	if len(results) > 1 {
		aggregated.TLDResults = results
	}
	return aggregated
}

func domainOutcome(r core.DomainResult) string {
	if r.Source == core.DomainSourceUnknown && !r.Available {
		return "degraded"
	}
	if r.Available {
		return "available"
	}
	return "taken"
}
