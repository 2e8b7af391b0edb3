package models

import (
	"strings"

	"smartsearch/internal/match"
)

// Person is one read-only row from the record source. The orchestrator owns
// a snapshot for the duration of a single search call and never mutates it.
type Person struct {
	ID               string `json:"id"`
	Identifier       string `json:"identifier"`
	IdentifierMasked string `json:"identifier_masked"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Gender           string `json:"gender"`
	DateOfBirth      string `json:"date_of_birth"`
	Phone            string `json:"phone"`
	PhoneMasked      string `json:"phone_masked"`
	RegionCode       string `json:"region_code"`
	RegionName       string `json:"region_name"`
	Subregion        string `json:"subregion"`
	Group            string `json:"group"`
	Organization     string `json:"organization"`
	SourceRecordID   string `json:"source_record_id"`

	// PhoneticCode is the precomputed "XXXX YYYY" code for first+last name,
	// stored alongside the record so scoring never recomputes it per row.
	PhoneticCode string `json:"-"`
}

// SearchName is the precomputed lowercase "first last" string substring
// matches run against.
func (p Person) SearchName() string {
	return match.NormalizeName(p.FirstName + " " + p.LastName)
}

// NormalizedPhone is the digits-only phone used for equality and substring
// lookups.
func (p Person) NormalizedPhone() string {
	return match.NormalizePhone(p.Phone)
}

// WithDerivedFields returns a copy with the masked and phonetic fields
// populated from the raw values. Stores call this when loading rows.
func (p Person) WithDerivedFields() Person {
	p.IdentifierMasked = MaskIdentifier(p.Identifier)
	p.PhoneMasked = MaskPhone(p.Phone)
	if p.PhoneticCode == "" {
		p.PhoneticCode = match.FullNamePhonetic(p.FirstName, p.LastName)
	}
	return p
}

// MaskIdentifier hides all but the last four characters. Values of four
// characters or fewer are returned as-is.
func MaskIdentifier(identifier string) string {
	if len(identifier) <= 4 {
		return identifier
	}
	return "..." + identifier[len(identifier)-4:]
}

// MaskPhone hides all but the last four digits of a phone number.
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	digits := match.NormalizePhone(phone)
	if len(digits) <= 4 {
		return phone
	}
	return "..." + digits[len(digits)-4:]
}

// FieldValue is one autocomplete entry: a distinct field value and how many
// records carry it.
type FieldValue struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// FieldType names the fields autocomplete may enumerate.
type FieldType string

const (
	FieldGroup        FieldType = "group"
	FieldSubregion    FieldType = "subregion"
	FieldOrganization FieldType = "organization"
)

// ParseFieldType validates an autocomplete field name.
func ParseFieldType(s string) (FieldType, bool) {
	switch FieldType(strings.ToLower(strings.TrimSpace(s))) {
	case FieldGroup:
		return FieldGroup, true
	case FieldSubregion:
		return FieldSubregion, true
	case FieldOrganization:
		return FieldOrganization, true
	default:
		return "", false
	}
}
