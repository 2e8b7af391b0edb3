// Package estimator is the client-side mirror of the search service: a cheap,
// local confidence estimate over the last known population statistics, so a
// UI can advise on criteria quality per keystroke without a network round
// trip. The server remains authoritative for actual scoring.
package estimator

import (
	"math"
	"strings"
	"sync/atomic"

	"smartsearch/pkg/statistics"
)

// Config holds the thresholds the estimate is tuned against. Values must
// match the server's search configuration or the two will disagree on what
// counts as an exact path.
type Config struct {
	IdentifierMinLength int
	PhoneMinLength      int
	PartialMinLength    int

	// NameFrequencyScale widens per-token name frequencies before they
	// compound, compensating for the top-100 tables undercounting rare
	// names.
	NameFrequencyScale float64
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		IdentifierMinLength: 8,
		PhoneMinLength:      8,
		PartialMinLength:    4,
		NameFrequencyScale:  2.0,
	}
}

// Estimator computes confidence estimates and validates criteria. Safe for
// concurrent use: the statistics fetch swaps snapshots in from another
// goroutine while the UI estimates per keystroke, so the snapshot pointer is
// held atomically and each calculation reads it exactly once.
type Estimator struct {
	cfg   Config
	stats atomic.Pointer[statistics.Statistics]
}

// New constructs an Estimator. stats may be nil; estimates then return the
// neutral default until SetStatistics is called.
func New(cfg Config, stats *statistics.Statistics) *Estimator {
	e := &Estimator{cfg: cfg}
	e.stats.Store(stats)
	return e
}

// SetStatistics swaps in a fresher snapshot.
func (e *Estimator) SetStatistics(stats *statistics.Statistics) {
	e.stats.Store(stats)
}

// EstimateConfidence maps criteria to 0..100: the likelihood that a search
// with these criteria pins down one person. The operation order is tuned
// together with the validation table; do not reorder.
func (e *Estimator) EstimateConfidence(c Criteria) int {
	c = c.normalized()
	stats := e.stats.Load()
	if stats == nil {
		return 50
	}
	if e.isExactPath(c) {
		return 100
	}

	expected := float64(stats.TotalRecords)

	if c.Region != "" {
		if count, ok := regionCount(stats, c.Region); ok {
			expected = float64(count)
		} else {
			expected = float64(stats.TotalRecords) / 10
		}
	}

	if c.Group != "" {
		groupCap := float64(stats.AvgGroupSize) * 2
		if groupCap < expected {
			expected = groupCap
		}
	}

	if c.Name != "" {
		product := 1.0
		for _, token := range strings.Fields(strings.ToLower(c.Name)) {
			freq, known := stats.SurnameFreq(token)
			if !known {
				freq, _ = stats.FirstnameFreq(token)
			}
			multiplier := freq * e.cfg.NameFrequencyScale
			if multiplier > 1 {
				multiplier = 1
			}
			product *= multiplier
		}
		expected *= product
		if expected < 1 {
			expected = 1
		}
	}

	if len(digits(c.PartialIdentifier)) >= e.cfg.PartialMinLength {
		expected *= 1 - stats.Factor(statistics.FactorPartialID)
	}
	if len(digits(c.PartialPhone)) >= e.cfg.PartialMinLength {
		expected *= 1 - stats.Factor(statistics.FactorPartialPhone)
	}
	if c.Subregion != "" {
		expected *= 1 - stats.Factor(statistics.FactorSubregion)
	}
	if c.Organization != "" {
		expected *= 1 - stats.Factor(statistics.FactorOrganization)
	}

	return confidenceFromExpected(expected)
}

// isExactPath mirrors the server's exact-path dispatch: an identifier of at
// least the minimum length, of any alphabet, or a phone carrying enough
// digits.
func (e *Estimator) isExactPath(c Criteria) bool {
	return len([]rune(c.Identifier)) >= e.cfg.IdentifierMinLength ||
		len(digits(c.Phone)) >= e.cfg.PhoneMinLength
}

func regionCount(stats *statistics.Statistics, region string) (int, bool) {
	for code, count := range stats.RegionCounts {
		if strings.EqualFold(code, region) {
			return count, true
		}
	}
	return 0, false
}

// confidenceFromExpected linearly maps an expected result-set size to a
// confidence: 20 or fewer expected rows is a certain find, 1000 or more is
// hopeless.
func confidenceFromExpected(expected float64) int {
	switch {
	case expected <= 20:
		return 100
	case expected >= 1000:
		return 0
	}
	confidence := int(math.Round(100 * (1000 - expected) / 980))
	if confidence < 0 {
		return 0
	}
	if confidence > 100 {
		return 100
	}
	return confidence
}

// ValidateCriteria runs the deterministic rule table. Rule order is
// load-bearing: earlier rules win even when a later rule also matches.
func (e *Estimator) ValidateCriteria(c Criteria) ValidationResult {
	c = c.normalized()

	hasName := c.Name != ""
	hasPartialID := c.PartialIdentifier != ""
	hasPartialPhone := c.PartialPhone != ""

	switch {
	case e.isExactPath(c):
		return ValidationResult{State: StateExactMatch, CanSearch: true,
			Message: "exact match: identifier or phone provided"}

	case c.empty():
		return ValidationResult{State: StateRejected, CanSearch: false,
			Message: "enter search criteria"}

	case hasName && c.Region == "" && c.Group == "" && !hasPartialID &&
		!hasPartialPhone && c.Subregion == "" && c.Organization == "":
		return ValidationResult{State: StateRejected, CanSearch: false,
			Message: "name alone is too broad, add region or group"}

	case c.Region != "" && !hasName && !hasPartialID && !hasPartialPhone:
		return ValidationResult{State: StateRejected, CanSearch: false,
			Message: "region alone is too broad, add name or id"}

	case c.Group != "" && !hasName && !hasPartialID && !hasPartialPhone:
		return ValidationResult{State: StateRejected, CanSearch: false,
			Message: "group alone is too broad, add name or id"}

	case hasName && (c.Group != "" || hasPartialID || hasPartialPhone ||
		c.Subregion != "" || (c.Organization != "" && c.Region != "")):
		return ValidationResult{State: StateAcceptable, CanSearch: true}

	case hasName && c.Region != "" && c.Group == "":
		return ValidationResult{State: StateWarning, CanSearch: true,
			Message: "results may be broad, add a group to narrow them"}

	case hasPartialID && !hasName && c.Region == "" && c.Group == "" &&
		!hasPartialPhone && c.Subregion == "" && c.Organization == "":
		return ValidationResult{State: StateWarning, CanSearch: true,
			Message: "add a name for better results"}

	default:
		return ValidationResult{State: StateWarning, CanSearch: true,
			Message: "add more criteria for better results"}
	}
}
