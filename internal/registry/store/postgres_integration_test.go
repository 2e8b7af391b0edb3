//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"smartsearch/internal/match"
	"smartsearch/internal/registry/models"
	"smartsearch/internal/registry/store"
	"smartsearch/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "v_person_search"))
	s.insert(models.Person{
		ID: "p1", Identifier: "123456789", FirstName: "Thabo", LastName: "Mohapi",
		Phone: "+266 5555 0001", RegionCode: "BER", RegionName: "Berea",
		Group: "Ha Rasekila", Subregion: "Senekane", Organization: "Berea Growers",
	})
	s.insert(models.Person{
		ID: "p2", Identifier: "987654321", FirstName: "Lerato", LastName: "Sello",
		Phone: "+266 5555 0002", RegionCode: "LEI", RegionName: "Leribe", Group: "Hlotse",
	})
	s.insert(models.Person{
		ID: "p3", Identifier: "555000111", FirstName: "Mamosa", LastName: "Mohapi",
		Phone: "+266 5555 0003", RegionCode: "BER", RegionName: "Berea", Group: "Ha Rasekila",
	})
}

// insert mirrors what the registry's view computes in production: the
// normalized phone, lowercase search name, and phonetic code columns.
func (s *PostgresStoreSuite) insert(p models.Person) {
	s.T().Helper()
	const q = `
		INSERT INTO v_person_search (
			id, identifier, first_name, last_name, phone, phone_normalized,
			region_code, region_name, subregion, group_name, organization,
			search_name, phonetic_code
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := s.postgres.DB.ExecContext(context.Background(), q,
		p.ID, p.Identifier, p.FirstName, p.LastName, p.Phone,
		match.NormalizePhone(p.Phone), p.RegionCode, p.RegionName,
		p.Subregion, p.Group, p.Organization,
		p.SearchName(), match.FullNamePhonetic(p.FirstName, p.LastName),
	)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestFindByID() {
	ctx := context.Background()

	p, err := s.store.FindByID(ctx, "p1")
	s.Require().NoError(err)
	s.Equal("Thabo", p.FirstName)
	s.Equal("...6789", p.IdentifierMasked)

	_, err = s.store.FindByID(ctx, "missing")
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *PostgresStoreSuite) TestFindByIdentifier() {
	people, err := s.store.FindByIdentifier(context.Background(), "123456789")
	s.Require().NoError(err)
	s.Require().Len(people, 1)
	s.Equal("p1", people[0].ID)
}

func (s *PostgresStoreSuite) TestFindByPhone() {
	people, err := s.store.FindByPhone(context.Background(), "26655550002")
	s.Require().NoError(err)
	s.Require().Len(people, 1)
	s.Equal("p2", people[0].ID)
}

func (s *PostgresStoreSuite) TestSearchRegionCodeOrName() {
	ctx := context.Background()

	byCode, err := s.store.Search(ctx, store.Filter{Region: "ber"}, 10)
	s.Require().NoError(err)
	s.Len(byCode, 2)

	byName, err := s.store.Search(ctx, store.Filter{Region: "Berea"}, 10)
	s.Require().NoError(err)
	s.Len(byName, 2)
}

func (s *PostgresStoreSuite) TestSearchNamePhoneticFallback() {
	// Misspelled name, phonetically identical to Mohapi.
	hits, err := s.store.Search(context.Background(), store.Filter{
		Name:         "Mohape",
		NamePhonetic: match.QueryPhonetic("Mohape"),
	}, 10)
	s.Require().NoError(err)
	s.Len(hits, 2)
}

func (s *PostgresStoreSuite) TestSearchCombinesConditions() {
	hits, err := s.store.Search(context.Background(), store.Filter{
		Region:       "BER",
		Group:        "ha rasekila",
		PartialPhone: "0003",
	}, 10)
	s.Require().NoError(err)
	s.Require().Len(hits, 1)
	s.Equal("p3", hits[0].ID)
}

func (s *PostgresStoreSuite) TestSearchLimit() {
	hits, err := s.store.Search(context.Background(), store.Filter{}, 2)
	s.Require().NoError(err)
	s.Len(hits, 2)
}

func (s *PostgresStoreSuite) TestAggregates() {
	ctx := context.Background()

	total, err := s.store.CountAll(ctx)
	s.Require().NoError(err)
	s.Equal(3, total)

	regions, err := s.store.CountByRegion(ctx)
	s.Require().NoError(err)
	s.Equal(map[string]int{"BER": 2, "LEI": 1}, regions)

	surnames, err := s.store.NameFrequencies(ctx, store.NameFieldLast, 10)
	s.Require().NoError(err)
	s.Equal(map[string]int{"mohapi": 2, "sello": 1}, surnames)

	avg, err := s.store.AvgGroupSize(ctx)
	s.Require().NoError(err)
	s.Equal(2, avg)
}

func (s *PostgresStoreSuite) TestFieldValues() {
	ctx := context.Background()

	groups, err := s.store.FieldValues(ctx, models.FieldGroup, "", "", 50)
	s.Require().NoError(err)
	s.Require().Len(groups, 2)
	s.Equal(models.FieldValue{Name: "Ha Rasekila", Count: 2}, groups[0])

	orgs, err := s.store.FieldValues(ctx, models.FieldOrganization, "BER", "grow", 50)
	s.Require().NoError(err)
	s.Require().Len(orgs, 1)
	s.Equal("Berea Growers", orgs[0].Name)
}
