package core

import (
	"fmt"
	"strings"
	"time"
)

// CheckType identifies a clearance check for caching and metrics.
type CheckType string

const (
	CheckTypeWebSearch CheckType = "web_search"
	CheckTypeDomain    CheckType = "domain"
	CheckTypeTrademark CheckType = "trademark"
)

// DistinctivenessCategory classifies a name on the trademark spectrum.
type DistinctivenessCategory string

const (
	DistinctivenessFanciful    DistinctivenessCategory = "fanciful"
	DistinctivenessArbitrary   DistinctivenessCategory = "arbitrary"
	DistinctivenessSuggestive  DistinctivenessCategory = "suggestive"
	DistinctivenessDescriptive DistinctivenessCategory = "descriptive"
	DistinctivenessGeneric     DistinctivenessCategory = "generic"
)

// DistinctivenessCategories lists the categories from most to least distinctive.
var DistinctivenessCategories = []DistinctivenessCategory{
	DistinctivenessFanciful,
	DistinctivenessArbitrary,
	DistinctivenessSuggestive,
	DistinctivenessDescriptive,
	DistinctivenessGeneric,
}

// ParseDistinctivenessCategory normalizes raw case-insensitively. An empty
// value means suggestive; anything outside the spectrum is an error.
func ParseDistinctivenessCategory(raw string) (DistinctivenessCategory, error) {
	value := DistinctivenessCategory(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return DistinctivenessSuggestive, nil
	}
	for _, c := range DistinctivenessCategories {
		if c == value {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown distinctiveness category %q", raw)
}

// GeneratedName is a candidate produced by the name generator.
type GeneratedName struct {
	Name                    string                  `json:"name"`
	Rationale               string                  `json:"rationale"`
	DistinctivenessCategory DistinctivenessCategory `json:"distinctiveness_category"`
	RelevanceToInput        string                  `json:"relevance_to_input,omitempty"`
	LinguisticNotes         string                  `json:"linguistic_notes,omitempty"`
}

// USPTOClass is a Nice classification entry with the reason it applies.
type USPTOClass struct {
	ClassNumber int    `json:"class_number"`
	ClassName   string `json:"class_name"`
	Rationale   string `json:"rationale,omitempty"`
}

// PreferenceSummary is the structured profile derived from a business description.
type PreferenceSummary struct {
	Industry                  string       `json:"industry"`
	TargetAudience            string       `json:"target_audience"`
	BrandPersonality          []string     `json:"brand_personality"`
	NamingStyleRecommendation string       `json:"naming_style_recommendation"`
	AvoidPatterns             []string     `json:"avoid_patterns"`
	DesiredTone               string       `json:"desired_tone"`
	USPTOClasses              []USPTOClass `json:"uspto_classes"`
	KeyThemes                 []string     `json:"key_themes"`
	Summary                   string       `json:"summary"`
}

// ClassNumbers returns the class numbers of the profile in declaration order.
func (p PreferenceSummary) ClassNumbers() []int {
	out := make([]int, 0, len(p.USPTOClasses))
	for _, c := range p.USPTOClasses {
		out = append(out, c.ClassNumber)
	}
	return out
}

// CheckToggle enables a check and controls whether a negative outcome rejects the name.
type CheckToggle struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	CanFail bool `json:"can_fail" mapstructure:"can_fail"`
}

// DomainToggle extends CheckToggle with the TLDs to query.
type DomainToggle struct {
	Enabled bool     `json:"enabled" mapstructure:"enabled"`
	CanFail bool     `json:"can_fail" mapstructure:"can_fail"`
	TLDs    []string `json:"tlds" mapstructure:"tlds"`
}

// ValidationConfig selects which checks run and how they affect a candidate.
type ValidationConfig struct {
	WebSearch CheckToggle  `json:"web_search" mapstructure:"web_search"`
	Domain    DomainToggle `json:"domain" mapstructure:"domain"`
	Trademark CheckToggle  `json:"trademark" mapstructure:"trademark"`
}

// DefaultValidationConfig returns the standard check configuration.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		WebSearch: CheckToggle{Enabled: true, CanFail: false},
		Domain:    DomainToggle{Enabled: true, CanFail: true, TLDs: []string{".com"}},
		Trademark: CheckToggle{Enabled: true, CanFail: false},
	}
}

// Validate rejects an empty TLD list and normalizes each TLD to a leading dot.
func (c *ValidationConfig) Validate() error {
	if len(c.Domain.TLDs) == 0 {
		return fmt.Errorf("domain.tlds must contain at least one TLD")
	}
	tlds := make([]string, 0, len(c.Domain.TLDs))
	seen := make(map[string]struct{}, len(c.Domain.TLDs))
	for _, raw := range c.Domain.TLDs {
		tld := NormalizeTLD(raw)
		if tld == "" {
			return fmt.Errorf("domain.tlds contains an empty entry")
		}
		if _, ok := seen[tld]; ok {
			continue
		}
		seen[tld] = struct{}{}
		tlds = append(tlds, tld)
	}
	c.Domain.TLDs = tlds
	return nil
}

// NormalizeTLD lowercases a TLD and guarantees a single leading dot.
func NormalizeTLD(raw string) string {
	tld := strings.ToLower(strings.TrimSpace(raw))
	tld = strings.TrimLeft(tld, ".")
	if tld == "" {
		return ""
	}
	return "." + tld
}

// WebSearchResult is the outcome of the web-presence check.
type WebSearchResult struct {
	Passed           bool     `json:"passed"`
	Score            int      `json:"score"`
	Details          string   `json:"details"`
	SimilarCompanies []string `json:"similar_companies"`
	AIAssessment     string   `json:"ai_assessment"`
	Skipped          bool     `json:"skipped,omitempty"`
	Unverified       bool     `json:"unverified,omitempty"`
}

// DomainSource names the tier that produced a domain verdict.
type DomainSource string

const (
	DomainSourceRDAP    DomainSource = "rdap"
	DomainSourceGoDaddy DomainSource = "godaddy"
	DomainSourceUnknown DomainSource = "unknown"
)

// DomainTLDResult is the verdict for one fully qualified domain.
type DomainTLDResult struct {
	TLD       string       `json:"tld"`
	Domain    string       `json:"domain"`
	Available bool         `json:"available"`
	Price     string       `json:"price,omitempty"`
	Currency  string       `json:"currency,omitempty"`
	Source    DomainSource `json:"source"`
}

// DomainResult aggregates the per-TLD verdicts for a name.
type DomainResult struct {
	Available  bool              `json:"available"`
	Domain     string            `json:"domain"`
	Price      string            `json:"price,omitempty"`
	Currency   string            `json:"currency,omitempty"`
	Source     DomainSource      `json:"source"`
	TLDResults []DomainTLDResult `json:"tld_results,omitempty"`
	Skipped    bool              `json:"skipped,omitempty"`
}

// TrademarkConflict is a registered mark similar enough to matter.
type TrademarkConflict struct {
	RegisteredName     string  `json:"registered_name"`
	SerialNumber       string  `json:"serial_number"`
	Status             string  `json:"status"`
	SimilarityScore    float64 `json:"similarity_score"`
	OverlappingClasses bool    `json:"overlapping_classes"`
	ClassNumbers       []int   `json:"class_numbers"`
}

// RiskLevel summarizes trademark exposure.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// TrademarkResult is the outcome of the trademark search.
type TrademarkResult struct {
	Passed     bool                `json:"passed"`
	Score      int                 `json:"score"`
	Conflicts  []TrademarkConflict `json:"conflicts"`
	RiskLevel  RiskLevel           `json:"risk_level"`
	Skipped    bool                `json:"skipped,omitempty"`
	Unverified bool                `json:"unverified,omitempty"`
}

// ScoreBreakdown holds the component scores, each 0-100.
type ScoreBreakdown struct {
	Distinctiveness int `json:"distinctiveness"`
	ConflictRisk    int `json:"conflict_risk"`
	Registrability  int `json:"registrability"`
	WebSearch       int `json:"web_search"`
	Trademark       int `json:"trademark"`
}

// Grade is the letter grade of a score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// TrademarkabilityScore is the composite score for a candidate.
type TrademarkabilityScore struct {
	Overall      int            `json:"overall"`
	Breakdown    ScoreBreakdown `json:"breakdown"`
	AIAdjustment int            `json:"ai_adjustment"`
	Grade        Grade          `json:"grade"`
	Report       string         `json:"report"`
}

// ValidationResult collects whatever stages ran for a candidate.
type ValidationResult struct {
	Name          string                 `json:"name"`
	WebSearch     *WebSearchResult       `json:"web_search,omitempty"`
	Domain        *DomainResult          `json:"domain,omitempty"`
	Trademark     *TrademarkResult       `json:"trademark,omitempty"`
	Score         *TrademarkabilityScore `json:"score,omitempty"`
	OverallPass   bool                   `json:"overall_pass"`
	HasWarnings   bool                   `json:"has_warnings"`
	FailureReason string                 `json:"failure_reason,omitempty"`
}

// Unverified reports whether any stage fell back to a fail-open result.
func (r ValidationResult) Unverified() bool {
	return (r.WebSearch != nil && r.WebSearch.Unverified) ||
		(r.Trademark != nil && r.Trademark.Unverified)
}

// ValidationStep names a pipeline stage.
type ValidationStep string

const (
	StepPending   ValidationStep = "pending"
	StepWebSearch ValidationStep = "web_search"
	StepDomain    ValidationStep = "domain"
	StepTrademark ValidationStep = "trademark"
	StepScoring   ValidationStep = "scoring"
	StepComplete  ValidationStep = "complete"
)

// ValidatedName is a candidate that survived every enabled check.
type ValidatedName struct {
	Generated  GeneratedName    `json:"generated"`
	Validation ValidationResult `json:"validation"`
}

// FailedName is a candidate rejected at a specific step.
type FailedName struct {
	Generated     GeneratedName    `json:"generated"`
	Validation    ValidationResult `json:"validation"`
	FailureStep   ValidationStep   `json:"failure_step"`
	FailureReason string           `json:"failure_reason"`
}

// Progress is emitted on every stage transition of a run.
type Progress struct {
	CurrentName      string         `json:"current_name"`
	CurrentStep      ValidationStep `json:"current_step"`
	TotalNames       int            `json:"total_names"`
	ProcessedCount   int            `json:"processed_count"`
	PassedCount      int            `json:"passed_count"`
	FailedCount      int            `json:"failed_count"`
	ReplacementRound int            `json:"replacement_round"`
}

// RunResult is a snapshot of a generation and validation run.
type RunResult struct {
	RunID     string          `json:"run_id"`
	Passed    []ValidatedName `json:"passed"`
	Failed    []FailedName    `json:"failed"`
	Rounds    int             `json:"rounds"`
	Requested int             `json:"requested"`
	Cancelled bool            `json:"cancelled"`
}

// FailedFeedback tells the generator why an earlier name was rejected.
type FailedFeedback struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// RateLimitState captures per-endpoint rate limiting state.
type RateLimitState struct {
	RequestCount int
	WindowStart  time.Time
	BackoffUntil *time.Time
	Last429At    *time.Time
}

// GenerateRequest asks the generator for candidates. Replacement requests
// carry feedback on the names being replaced.
type GenerateRequest struct {
	Profile        PreferenceSummary `json:"profile"`
	Insights       string            `json:"insights,omitempty"`
	Count          int               `json:"count"`
	IsReplacement  bool              `json:"is_replacement"`
	FailedFeedback []FailedFeedback  `json:"failed_feedback,omitempty"`
	ExcludedNames  []string          `json:"excluded_names,omitempty"`
}
