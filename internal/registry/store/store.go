// Package store is the record source boundary: a query capability over the
// person registry accepting equality, substring, and prefix predicates with
// an explicit row cap. Search and statistics both consume it; implementations
// are interface-driven so tests run against memory and deployments against
// PostgreSQL.
package store

import (
	"context"

	"smartsearch/internal/registry/models"
	dErrors "smartsearch/pkg/domain-errors"
)

// ErrNotFound keeps store-level 404s consistent across the in-memory and
// PostgreSQL implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "person not found")

// NameField selects which name column a frequency query aggregates.
type NameField string

const (
	NameFieldFirst NameField = "first_name"
	NameFieldLast  NameField = "last_name"
)

// Filter holds the AND-combined predicates of a criteria search. Zero-value
// fields are not applied. Region matches case-insensitively against either
// the region code or the region name; partial identifier/phone are substring
// matches on the normalized value; Name is an OR of a lowercase search-name
// substring and a phonetic-code substring.
type Filter struct {
	Region            string
	Group             string
	Subregion         string
	Organization      string
	PartialIdentifier string
	PartialPhone      string
	Name              string
	NamePhonetic      string
}

// Store is the record source.
type Store interface {
	// FindByID returns a single person by registry row ID, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*models.Person, error)

	// FindByIdentifier returns every row whose identifier equals the value.
	// Zero rows is a valid, non-error outcome.
	FindByIdentifier(ctx context.Context, identifier string) ([]models.Person, error)

	// FindByPhone returns every row whose normalized phone equals the
	// digits-only value.
	FindByPhone(ctx context.Context, normalizedPhone string) ([]models.Person, error)

	// Search returns up to limit rows matching all populated filter fields,
	// in stable registry order.
	Search(ctx context.Context, f Filter, limit int) ([]models.Person, error)

	// CountAll returns the total number of records.
	CountAll(ctx context.Context) (int, error)

	// CountByRegion returns per-region-code record counts, uncapped.
	CountByRegion(ctx context.Context) (map[string]int, error)

	// NameFrequencies returns the topN most frequent lowercased values of
	// the given name field with their counts.
	NameFrequencies(ctx context.Context, field NameField, topN int) (map[string]int, error)

	// AvgGroupSize returns the mean number of records per group, rounded.
	AvgGroupSize(ctx context.Context) (int, error)

	// FieldValues lists distinct values of an autocomplete field with
	// record counts, optionally narrowed by region code and a query string,
	// ordered by count descending.
	FieldValues(ctx context.Context, field models.FieldType, regionCode, query string, limit int) ([]models.FieldValue, error)
}
