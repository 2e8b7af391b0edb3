package store

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"smartsearch/internal/match"
	"smartsearch/internal/registry/models"
)

// Memory is an in-memory record source. Rows keep insertion order so filtered
// scans return stable results, which the orchestrator relies on for
// deterministic tie-breaking.
type Memory struct {
	mu      sync.RWMutex
	people  []models.Person
	indexed map[string]int
}

// NewMemory creates an empty in-memory record source.
func NewMemory() *Memory {
	return &Memory{indexed: make(map[string]int)}
}

// Put inserts or replaces a person, computing derived fields.
func (m *Memory) Put(p models.Person) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = p.WithDerivedFields()
	if i, ok := m.indexed[p.ID]; ok {
		m.people[i] = p
		return
	}
	m.indexed[p.ID] = len(m.people)
	m.people = append(m.people, p)
}

// Seed loads a batch of people.
func (m *Memory) Seed(people ...models.Person) {
	for _, p := range people {
		m.Put(p)
	}
}

func (m *Memory) FindByID(_ context.Context, id string) (*models.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i, ok := m.indexed[strings.TrimSpace(id)]; ok {
		p := m.people[i]
		return &p, nil
	}
	return nil, ErrNotFound
}

func (m *Memory) FindByIdentifier(_ context.Context, identifier string) ([]models.Person, error) {
	identifier = strings.TrimSpace(identifier)
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Person
	for _, p := range m.people {
		if p.Identifier == identifier {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Memory) FindByPhone(_ context.Context, normalizedPhone string) ([]models.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Person
	for _, p := range m.people {
		if p.NormalizedPhone() == normalizedPhone {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Memory) Search(_ context.Context, f Filter, limit int) ([]models.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Person
	for _, p := range m.people {
		if !matches(p, f) {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func matches(p models.Person, f Filter) bool {
	if f.Region != "" {
		region := strings.ToLower(strings.TrimSpace(f.Region))
		if !strings.EqualFold(p.RegionCode, region) && !strings.EqualFold(p.RegionName, region) {
			return false
		}
	}
	if f.Group != "" && !strings.EqualFold(strings.TrimSpace(f.Group), p.Group) {
		return false
	}
	if f.Subregion != "" && strings.TrimSpace(f.Subregion) != p.Subregion {
		return false
	}
	if f.Organization != "" && strings.TrimSpace(f.Organization) != p.Organization {
		return false
	}
	if f.PartialIdentifier != "" && !strings.Contains(p.Identifier, strings.TrimSpace(f.PartialIdentifier)) {
		return false
	}
	if f.PartialPhone != "" && !strings.Contains(p.NormalizedPhone(), match.NormalizePhone(f.PartialPhone)) {
		return false
	}
	if f.Name != "" {
		nameHit := strings.Contains(p.SearchName(), match.NormalizeName(f.Name))
		phoneticHit := f.NamePhonetic != "" && strings.Contains(p.PhoneticCode, f.NamePhonetic)
		if !nameHit && !phoneticHit {
			return false
		}
	}
	return true
}

func (m *Memory) CountAll(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.people), nil
}

func (m *Memory) CountByRegion(_ context.Context) (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[string]int)
	for _, p := range m.people {
		if p.RegionCode != "" {
			counts[p.RegionCode]++
		}
	}
	return counts, nil
}

func (m *Memory) NameFrequencies(_ context.Context, field NameField, topN int) (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int)
	for _, p := range m.people {
		var name string
		switch field {
		case NameFieldFirst:
			name = p.FirstName
		case NameFieldLast:
			name = p.LastName
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			counts[name]++
		}
	}

	if topN <= 0 || len(counts) <= topN {
		return counts, nil
	}

	type entry struct {
		name  string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, entry{name, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})

	top := make(map[string]int, topN)
	for _, e := range entries[:topN] {
		top[e.name] = e.count
	}
	return top, nil
}

func (m *Memory) AvgGroupSize(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int)
	for _, p := range m.people {
		if p.Group != "" {
			counts[p.Group]++
		}
	}
	if len(counts) == 0 {
		return 0, nil
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	return int(math.Round(float64(total) / float64(len(counts)))), nil
}

func (m *Memory) FieldValues(_ context.Context, field models.FieldType, regionCode, query string, limit int) ([]models.FieldValue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int)
	for _, p := range m.people {
		if regionCode != "" && !strings.EqualFold(p.RegionCode, strings.TrimSpace(regionCode)) {
			continue
		}
		var value string
		switch field {
		case models.FieldGroup:
			value = p.Group
		case models.FieldSubregion:
			value = p.Subregion
		case models.FieldOrganization:
			value = p.Organization
		}
		if value == "" {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(value), strings.ToLower(strings.TrimSpace(query))) {
			continue
		}
		counts[value]++
	}

	values := make([]models.FieldValue, 0, len(counts))
	for name, count := range counts {
		values = append(values, models.FieldValue{Name: name, Count: count})
	}
	sort.Slice(values, func(i, j int) bool {
		if values[i].Count != values[j].Count {
			return values[i].Count > values[j].Count
		}
		return values[i].Name < values[j].Name
	})

	if limit > 0 && len(values) > limit {
		values = values[:limit]
	}
	return values, nil
}
