package models

import (
	"strings"

	"smartsearch/internal/match"
	"smartsearch/internal/platform/config"
	registry "smartsearch/internal/registry/models"
)

// ResultType labels which search path produced a result set.
type ResultType string

const (
	ResultExactIdentifierMatch ResultType = "exact_identifier_match"
	ResultExactPhoneMatch      ResultType = "exact_phone_match"
	ResultCriteriaMatch        ResultType = "criteria_match"
	ResultNoResults            ResultType = "no_results"
)

// SearchCriteria carries everything a caller may search on. All fields are
// optional; the orchestrator decides the path based on which are set.
type SearchCriteria struct {
	Identifier        string `json:"identifier,omitempty"`
	Phone             string `json:"phone,omitempty"`
	FirstName         string `json:"first_name,omitempty"`
	LastName          string `json:"last_name,omitempty"`
	Name              string `json:"name,omitempty"`
	Region            string `json:"region,omitempty"`
	RegionCode        string `json:"region_code,omitempty"`
	RegionName        string `json:"region_name,omitempty"`
	Group             string `json:"group,omitempty"`
	Subregion         string `json:"subregion,omitempty"`
	Organization      string `json:"organization,omitempty"`
	PartialIdentifier string `json:"partial_identifier,omitempty"`
	PartialPhone      string `json:"partial_phone,omitempty"`
	Limit             int    `json:"limit,omitempty"`
}

// Normalize trims every field, folds first/last name into the combined Name
// field when Name itself is empty, and folds the region_code/region_name
// wire keys into the single Region filter. The store matches Region against
// both code and name, so the three keys share one filter value; Region wins
// when several are set.
func (c SearchCriteria) Normalize() SearchCriteria {
	c.Identifier = strings.TrimSpace(c.Identifier)
	c.Phone = strings.TrimSpace(c.Phone)
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Name = strings.TrimSpace(c.Name)
	c.Region = strings.TrimSpace(c.Region)
	if c.Region == "" {
		c.Region = strings.TrimSpace(c.RegionCode)
	}
	if c.Region == "" {
		c.Region = strings.TrimSpace(c.RegionName)
	}
	c.Group = strings.TrimSpace(c.Group)
	c.Subregion = strings.TrimSpace(c.Subregion)
	c.Organization = strings.TrimSpace(c.Organization)
	c.PartialIdentifier = strings.TrimSpace(c.PartialIdentifier)
	c.PartialPhone = strings.TrimSpace(c.PartialPhone)
	if c.Name == "" {
		c.Name = strings.TrimSpace(c.FirstName + " " + c.LastName)
	}
	return c
}

// HasExactIdentifier reports whether the identifier exact path applies.
func (c SearchCriteria) HasExactIdentifier() bool {
	return c.Identifier != ""
}

// HasExactPhone reports whether the phone exact path applies.
func (c SearchCriteria) HasExactPhone() bool {
	return match.NormalizePhone(c.Phone) != ""
}

// HasCriteria reports whether any fuzzy-path field is present.
func (c SearchCriteria) HasCriteria() bool {
	return c.Name != "" || c.Region != "" || c.Group != "" ||
		c.Subregion != "" || c.Organization != "" ||
		c.PartialIdentifier != "" || c.PartialPhone != ""
}

// EffectiveLimit clamps the requested limit to the return cap.
func (c SearchCriteria) EffectiveLimit() int {
	if c.Limit <= 0 || c.Limit > config.MaxReturnResults {
		return config.MaxReturnResults
	}
	return c.Limit
}

// ScoredPerson is a person plus their relevance score for the query.
type ScoredPerson struct {
	registry.Person
	Score int `json:"score"`
}

// SearchResult is the envelope every search operation returns. Failures set
// Success=false and Error rather than surfacing a transport error, so callers
// always get a well-formed body.
type SearchResult struct {
	Success      bool           `json:"success"`
	ResultType   ResultType     `json:"result_type"`
	TotalCount   int            `json:"total_count"`
	Records      []ScoredPerson `json:"records"`
	SearchTimeMs int64          `json:"search_time_ms"`
	Error        string         `json:"error,omitempty"`
	Suggestions  []string       `json:"suggestions,omitempty"`
}

// Failure builds a failed envelope with an empty record set.
func Failure(msg string, elapsedMs int64) SearchResult {
	return SearchResult{
		Success:      false,
		ResultType:   ResultNoResults,
		Records:      []ScoredPerson{},
		SearchTimeMs: elapsedMs,
		Error:        msg,
	}
}
