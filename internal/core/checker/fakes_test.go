package checker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/ccdaniele/name-finder/internal/core"
)

type memoryCache struct {
	entries map[string][]byte
	writes  int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func cacheKey(name string, checkType core.CheckType, variant string) string {
	return strings.ToLower(name) + "|" + string(checkType) + "|" + variant
}

func (m *memoryCache) GetCachedCheck(ctx context.Context, name string, checkType core.CheckType, variant string, out any) (bool, error) {
	raw, ok := m.entries[cacheKey(name, checkType, variant)]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

func (m *memoryCache) SetCachedCheck(ctx context.Context, name string, checkType core.CheckType, variant string, passed bool, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[cacheKey(name, checkType, variant)] = raw
	m.writes++
	return nil
}

type stubSearch struct {
	results string
	err     error
	calls   int
}

func (s *stubSearch) Search(ctx context.Context, name string) (string, error) {
	s.calls++
	return s.results, s.err
}

type stubAssessor struct {
	assessment WebAssessment
	err        error
	industry   string
}

func (s *stubAssessor) AssessWeb(ctx context.Context, name, industry, searchResults string) (WebAssessment, error) {
	s.industry = industry
	return s.assessment, s.err
}

type stubTrademarks struct {
	records []TrademarkRecord
	err     error
}

func (s *stubTrademarks) SearchTrademarks(ctx context.Context, name string) ([]TrademarkRecord, error) {
	return s.records, s.err
}

type stubRDAP map[string]RDAPVerdict

func (s stubRDAP) LookupDomain(ctx context.Context, domain string) RDAPVerdict {
	return s[domain]
}

type stubInventory struct {
	quotes map[string]InventoryQuote
	calls  []string
}

func (s *stubInventory) Quote(ctx context.Context, domain string) (InventoryQuote, error) {
	s.calls = append(s.calls, domain)
	quote, ok := s.quotes[domain]
	if !ok {
		return InventoryQuote{}, errors.New("inventory unavailable")
	}
	return quote, nil
}
