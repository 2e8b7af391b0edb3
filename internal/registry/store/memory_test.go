package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartsearch/internal/match"
	"smartsearch/internal/registry/models"
)

func seedPeople() *Memory {
	m := NewMemory()
	m.Seed(
		models.Person{
			ID: "p1", Identifier: "123456789", FirstName: "Thabo", LastName: "Mohapi",
			Phone: "+266 5555 0001", RegionCode: "BER", RegionName: "Berea",
			Group: "Ha Rasekila", Subregion: "Senekane", Organization: "Berea Growers",
		},
		models.Person{
			ID: "p2", Identifier: "987654321", FirstName: "Lerato", LastName: "Sello",
			Phone: "+266 5555 0002", RegionCode: "LEI", RegionName: "Leribe",
			Group: "Hlotse", Subregion: "Maoteng",
		},
		models.Person{
			ID: "p3", Identifier: "555000111", FirstName: "Mamosa", LastName: "Mohapi",
			Phone: "+266 5555 0003", RegionCode: "BER", RegionName: "Berea",
			Group: "Ha Rasekila",
		},
	)
	return m
}

func TestMemoryFindByID(t *testing.T) {
	m := seedPeople()
	ctx := context.Background()

	p, err := m.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Thabo", p.FirstName)
	assert.Equal(t, "...6789", p.IdentifierMasked)

	_, err = m.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryFindByIdentifier(t *testing.T) {
	m := seedPeople()

	people, err := m.FindByIdentifier(context.Background(), " 123456789 ")
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "p1", people[0].ID)

	people, err = m.FindByIdentifier(context.Background(), "000")
	require.NoError(t, err)
	assert.Empty(t, people)
}

func TestMemoryFindByPhone(t *testing.T) {
	m := seedPeople()

	people, err := m.FindByPhone(context.Background(), "26655550002")
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "p2", people[0].ID)
}

func TestMemorySearchRegionMatchesCodeOrName(t *testing.T) {
	m := seedPeople()
	ctx := context.Background()

	byCode, err := m.Search(ctx, Filter{Region: "ber"}, 10)
	require.NoError(t, err)
	assert.Len(t, byCode, 2)

	byName, err := m.Search(ctx, Filter{Region: "Berea"}, 10)
	require.NoError(t, err)
	assert.Len(t, byName, 2)
}

func TestMemorySearchNameSubstringOrPhonetic(t *testing.T) {
	m := seedPeople()
	ctx := context.Background()

	// Exact substring on the search name.
	hits, err := m.Search(ctx, Filter{Name: "mohapi"}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	// Misspelled, but phonetically identical.
	hits, err = m.Search(ctx, Filter{Name: "Mohape", NamePhonetic: match.QueryPhonetic("Mohape")}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestMemorySearchCombinesFiltersWithAND(t *testing.T) {
	m := seedPeople()

	hits, err := m.Search(context.Background(), Filter{Region: "BER", Name: "mohapi", Group: "ha rasekila"}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	hits, err = m.Search(context.Background(), Filter{Region: "LEI", Name: "mohapi"}, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestMemorySearchPartialFilters(t *testing.T) {
	m := seedPeople()
	ctx := context.Background()

	hits, err := m.Search(ctx, Filter{PartialIdentifier: "6789"}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "p1", hits[0].ID)

	hits, err = m.Search(ctx, Filter{PartialPhone: "55-50 003"}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "p3", hits[0].ID)
}

func TestMemorySearchRespectsCap(t *testing.T) {
	m := seedPeople()

	hits, err := m.Search(context.Background(), Filter{}, 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
	// Insertion order is the stable fetch order.
	assert.Equal(t, "p1", hits[0].ID)
	assert.Equal(t, "p2", hits[1].ID)
}

func TestMemoryAggregates(t *testing.T) {
	m := seedPeople()
	ctx := context.Background()

	total, err := m.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	regions, err := m.CountByRegion(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"BER": 2, "LEI": 1}, regions)

	surnames, err := m.NameFrequencies(ctx, NameFieldLast, 10)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"mohapi": 2, "sello": 1}, surnames)

	avg, err := m.AvgGroupSize(ctx)
	require.NoError(t, err)
	// Groups: Ha Rasekila=2, Hlotse=1 -> mean 1.5 rounds to 2.
	assert.Equal(t, 2, avg)
}

func TestMemoryNameFrequenciesTopN(t *testing.T) {
	m := seedPeople()

	surnames, err := m.NameFrequencies(context.Background(), NameFieldLast, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"mohapi": 2}, surnames)
}

func TestMemoryFieldValues(t *testing.T) {
	m := seedPeople()
	ctx := context.Background()

	groups, err := m.FieldValues(ctx, models.FieldGroup, "", "", 50)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, models.FieldValue{Name: "Ha Rasekila", Count: 2}, groups[0])

	groups, err = m.FieldValues(ctx, models.FieldGroup, "LEI", "", 50)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Hlotse", groups[0].Name)

	orgs, err := m.FieldValues(ctx, models.FieldOrganization, "", "growers", 50)
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	assert.Equal(t, "Berea Growers", orgs[0].Name)
}
