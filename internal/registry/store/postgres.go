package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"smartsearch/internal/match"
	"smartsearch/internal/registry/models"
)

// searchView is the read-optimized view the registry exposes for search. It
// carries the precomputed search_name, phone_normalized, and phonetic_code
// columns so every predicate stays sargable.
const searchView = "v_person_search"

const personColumns = `id, identifier, first_name, last_name, gender, date_of_birth,
	phone, phone_normalized, region_code, region_name, subregion, group_name,
	organization, phonetic_code, source_record_id`

// Postgres is the production record source backed by lib/pq.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed record source.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// DB exposes the underlying handle so other stores can share the pool.
func (s *Postgres) DB() *sql.DB {
	return s.db
}

func (s *Postgres) FindByID(ctx context.Context, id string) (*models.Person, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", personColumns, searchView)
	row := s.db.QueryRowContext(ctx, query, strings.TrimSpace(id))
	p, err := scanPerson(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find person by id: %w", err)
	}
	return &p, nil
}

func (s *Postgres) FindByIdentifier(ctx context.Context, identifier string) ([]models.Person, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE identifier = $1", personColumns, searchView)
	return s.queryPeople(ctx, "find by identifier", query, strings.TrimSpace(identifier))
}

func (s *Postgres) FindByPhone(ctx context.Context, normalizedPhone string) ([]models.Person, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE phone_normalized = $1", personColumns, searchView)
	return s.queryPeople(ctx, "find by phone", query, normalizedPhone)
}

func (s *Postgres) Search(ctx context.Context, f Filter, limit int) ([]models.Person, error) {
	var (
		conditions []string
		args       []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Region != "" {
		region := strings.TrimSpace(f.Region)
		conditions = append(conditions, fmt.Sprintf(
			"(LOWER(region_code) = LOWER(%s) OR LOWER(region_name) = LOWER(%s))",
			arg(region), arg(region)))
	}
	if f.Group != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(group_name) = LOWER(%s)", arg(strings.TrimSpace(f.Group))))
	}
	if f.Subregion != "" {
		conditions = append(conditions, fmt.Sprintf("subregion = %s", arg(strings.TrimSpace(f.Subregion))))
	}
	if f.Organization != "" {
		conditions = append(conditions, fmt.Sprintf("organization = %s", arg(strings.TrimSpace(f.Organization))))
	}
	if f.PartialIdentifier != "" {
		conditions = append(conditions, fmt.Sprintf("identifier LIKE %s", arg("%"+strings.TrimSpace(f.PartialIdentifier)+"%")))
	}
	if f.PartialPhone != "" {
		conditions = append(conditions, fmt.Sprintf("phone_normalized LIKE %s", arg("%"+match.NormalizePhone(f.PartialPhone)+"%")))
	}
	if f.Name != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(search_name LIKE %s OR phonetic_code LIKE %s)",
			arg("%"+match.NormalizeName(f.Name)+"%"), arg("%"+f.NamePhonetic+"%")))
	}

	query := fmt.Sprintf("SELECT %s FROM %s", personColumns, searchView)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY id LIMIT %s", arg(limit))

	return s.queryPeople(ctx, "criteria search", query, args...)
}

func (s *Postgres) CountAll(ctx context.Context) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", searchView)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return total, nil
}

func (s *Postgres) CountByRegion(ctx context.Context) (map[string]int, error) {
	query := fmt.Sprintf(`SELECT region_code, COUNT(*)
		FROM %s
		WHERE region_code IS NOT NULL AND region_code != ''
		GROUP BY region_code
		ORDER BY COUNT(*) DESC`, searchView)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count by region: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var code string
		var count int
		if err := rows.Scan(&code, &count); err != nil {
			return nil, fmt.Errorf("scan region count: %w", err)
		}
		counts[code] = count
	}
	return counts, rows.Err()
}

func (s *Postgres) NameFrequencies(ctx context.Context, field NameField, topN int) (map[string]int, error) {
	column, err := nameColumn(field)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT LOWER(%s), COUNT(*)
		FROM %s
		WHERE %s IS NOT NULL AND %s != ''
		GROUP BY LOWER(%s)
		ORDER BY COUNT(*) DESC
		LIMIT $1`, column, searchView, column, column, column)

	rows, err := s.db.QueryContext(ctx, query, topN)
	if err != nil {
		return nil, fmt.Errorf("name frequencies: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("scan name frequency: %w", err)
		}
		counts[name] = count
	}
	return counts, rows.Err()
}

func (s *Postgres) AvgGroupSize(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`SELECT COALESCE(AVG(group_count), 0) FROM (
		SELECT COUNT(*) AS group_count
		FROM %s
		WHERE group_name IS NOT NULL AND group_name != ''
		GROUP BY group_name
	) AS group_sizes`, searchView)

	var avg float64
	if err := s.db.QueryRowContext(ctx, query).Scan(&avg); err != nil {
		return 0, fmt.Errorf("average group size: %w", err)
	}
	return int(math.Round(avg)), nil
}

func (s *Postgres) FieldValues(ctx context.Context, field models.FieldType, regionCode, query string, limit int) ([]models.FieldValue, error) {
	column, err := fieldColumn(field)
	if err != nil {
		return nil, err
	}

	var (
		conditions = []string{
			fmt.Sprintf("%s IS NOT NULL AND %s != ''", column, column),
		}
		args []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if regionCode != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(region_code) = LOWER(%s)", arg(strings.TrimSpace(regionCode))))
	}
	if query != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(%s) LIKE LOWER(%s)", column, arg("%"+strings.TrimSpace(query)+"%")))
	}

	sqlQuery := fmt.Sprintf(`SELECT %s, COUNT(*) FROM %s
		WHERE %s
		GROUP BY %s
		ORDER BY COUNT(*) DESC, %s ASC
		LIMIT %s`, column, searchView, strings.Join(conditions, " AND "), column, column, arg(limit))

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("field values: %w", err)
	}
	defer rows.Close()

	var values []models.FieldValue
	for rows.Next() {
		var fv models.FieldValue
		if err := rows.Scan(&fv.Name, &fv.Count); err != nil {
			return nil, fmt.Errorf("scan field value: %w", err)
		}
		values = append(values, fv)
	}
	return values, rows.Err()
}

func (s *Postgres) queryPeople(ctx context.Context, op, query string, args ...any) ([]models.Person, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var people []models.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		people = append(people, p)
	}
	return people, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner) (models.Person, error) {
	var p models.Person
	var phoneNormalized sql.NullString
	var dob sql.NullString
	err := row.Scan(
		&p.ID, &p.Identifier, &p.FirstName, &p.LastName, &p.Gender, &dob,
		&p.Phone, &phoneNormalized, &p.RegionCode, &p.RegionName, &p.Subregion,
		&p.Group, &p.Organization, &p.PhoneticCode, &p.SourceRecordID,
	)
	if err != nil {
		return models.Person{}, err
	}
	p.DateOfBirth = dob.String
	return p.WithDerivedFields(), nil
}

func nameColumn(field NameField) (string, error) {
	switch field {
	case NameFieldFirst:
		return "first_name", nil
	case NameFieldLast:
		return "last_name", nil
	default:
		return "", fmt.Errorf("unknown name field %q", field)
	}
}

func fieldColumn(field models.FieldType) (string, error) {
	switch field {
	case models.FieldGroup:
		return "group_name", nil
	case models.FieldSubregion:
		return "subregion", nil
	case models.FieldOrganization:
		return "organization", nil
	default:
		return "", fmt.Errorf("unknown autocomplete field %q", field)
	}
}
