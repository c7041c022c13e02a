// Package checker runs the clearance checks for a candidate name: web
// presence, domain availability and trademark conflicts. Each checker owns
// its failure policy and always returns a result.
package checker

import (
	"context"
	"errors"
	"time"

	"github.com/ccdaniele/name-finder/internal/core"
)

// ErrMissingCredentials is returned by providers that have no API key configured.
var ErrMissingCredentials = errors.New("missing provider credentials")

// SearchProvider runs a web search for a name and returns results formatted
// for an assessor.
type SearchProvider interface {
	Search(ctx context.Context, name string) (string, error)
}

// WebAssessment is the assessor's judgement on search results.
type WebAssessment struct {
	HasConflict         bool     `json:"has_conflict"`
	Assessment          string   `json:"assessment"`
	ConflictingEntities []string `json:"conflicting_entities"`
}

// WebAssessor judges whether search results show a conflicting business.
type WebAssessor interface {
	AssessWeb(ctx context.Context, name, industry, searchResults string) (WebAssessment, error)
}

// TrademarkRecord is one registered mark returned by a trademark provider.
type TrademarkRecord struct {
	Keyword      string `json:"keyword"`
	SerialNumber string `json:"serialnumber"`
	Code         string `json:"code"`
	StatusLabel  string `json:"status_label"`
	StatusCode   string `json:"status_code"`
}

// TrademarkProvider searches active registrations for a name.
type TrademarkProvider interface {
	SearchTrademarks(ctx context.Context, name string) ([]TrademarkRecord, error)
}

// RDAPVerdict is the outcome of an RDAP lookup. Known is false when the
// registry gave no usable answer.
type RDAPVerdict struct {
	Known     bool
	Available bool
}

// RDAPLookup queries registration data for a fully qualified domain.
type RDAPLookup interface {
	LookupDomain(ctx context.Context, domain string) RDAPVerdict
}

// InventoryQuote is a registrar's availability and price for a domain.
type InventoryQuote struct {
	Available bool
	Price     string
	Currency  string
}

// InventoryProvider quotes domain availability and pricing from a registrar.
type InventoryProvider interface {
	Quote(ctx context.Context, domain string) (InventoryQuote, error)
}

// ResultCache persists check results between runs.
type ResultCache interface {
	GetCachedCheck(ctx context.Context, name string, checkType core.CheckType, variant string, out any) (bool, error)
	SetCachedCheck(ctx context.Context, name string, checkType core.CheckType, variant string, passed bool, value any, ttl time.Duration) error
}
