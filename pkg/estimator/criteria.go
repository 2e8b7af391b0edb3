package estimator

import (
	"strings"
	"unicode"
)

// Criteria mirrors the server's search criteria. The estimator deliberately
// carries its own copy so client builds do not depend on server internals.
type Criteria struct {
	Identifier        string `json:"identifier,omitempty"`
	Phone             string `json:"phone,omitempty"`
	Name              string `json:"name,omitempty"`
	Region            string `json:"region,omitempty"`
	Group             string `json:"group,omitempty"`
	Subregion         string `json:"subregion,omitempty"`
	Organization      string `json:"organization,omitempty"`
	PartialIdentifier string `json:"partial_identifier,omitempty"`
	PartialPhone      string `json:"partial_phone,omitempty"`
}

// State classifies a criteria combination before any search is issued.
type State string

const (
	StateExactMatch State = "exact_match"
	StateAcceptable State = "acceptable"
	StateWarning    State = "warning"
	StateRejected   State = "rejected"
)

// ValidationResult tells the UI whether the current criteria are worth
// sending and what to suggest otherwise.
type ValidationResult struct {
	State     State  `json:"state"`
	CanSearch bool   `json:"can_search"`
	Message   string `json:"message,omitempty"`
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (c Criteria) normalized() Criteria {
	c.Identifier = strings.TrimSpace(c.Identifier)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Name = strings.TrimSpace(c.Name)
	c.Region = strings.TrimSpace(c.Region)
	c.Group = strings.TrimSpace(c.Group)
	c.Subregion = strings.TrimSpace(c.Subregion)
	c.Organization = strings.TrimSpace(c.Organization)
	c.PartialIdentifier = strings.TrimSpace(c.PartialIdentifier)
	c.PartialPhone = strings.TrimSpace(c.PartialPhone)
	return c
}

func (c Criteria) empty() bool {
	return c.Identifier == "" && c.Phone == "" && c.Name == "" && c.Region == "" &&
		c.Group == "" && c.Subregion == "" && c.Organization == "" &&
		c.PartialIdentifier == "" && c.PartialPhone == ""
}
