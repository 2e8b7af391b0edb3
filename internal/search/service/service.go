package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"smartsearch/internal/audit"
	"smartsearch/internal/match"
	"smartsearch/internal/platform/config"
	"smartsearch/internal/platform/middleware"
	registry "smartsearch/internal/registry/models"
	"smartsearch/internal/registry/store"
	"smartsearch/internal/search/metrics"
	"smartsearch/internal/search/models"
	dErrors "smartsearch/pkg/domain-errors"
)

// RecordSource is the slice of the registry store the orchestrator needs.
type RecordSource interface {
	FindByID(ctx context.Context, id string) (*registry.Person, error)
	FindByIdentifier(ctx context.Context, identifier string) ([]registry.Person, error)
	FindByPhone(ctx context.Context, normalizedPhone string) ([]registry.Person, error)
	Search(ctx context.Context, f store.Filter, limit int) ([]registry.Person, error)
	FieldValues(ctx context.Context, field registry.FieldType, regionCode, query string, limit int) ([]registry.FieldValue, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service orchestrates person search. It is stateless per call; concurrent
// searches share nothing.
type Service struct {
	source  RecordSource
	logger  *slog.Logger
	auditor AuditPublisher
	metrics *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(source RecordSource, opts ...Option) *Service {
	s := &Service{source: source, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search dispatches to the exact or criteria path and always returns a
// well-formed envelope. A record-source failure comes back as success=false,
// never as an error; the only error returned is the no-criteria rejection.
func (s *Service) Search(ctx context.Context, criteria models.SearchCriteria) (models.SearchResult, error) {
	criteria = criteria.Normalize()
	if !criteria.HasExactIdentifier() && !criteria.HasExactPhone() && !criteria.HasCriteria() {
		return models.SearchResult{}, dErrors.New(dErrors.CodeValidation, "no search criteria provided")
	}

	start := time.Now()
	var result models.SearchResult
	switch {
	case criteria.HasExactIdentifier():
		result = s.exactPath(ctx, criteria, start, models.ResultExactIdentifierMatch)
	case criteria.HasExactPhone():
		result = s.exactPath(ctx, criteria, start, models.ResultExactPhoneMatch)
	default:
		result = s.criteriaPath(ctx, criteria, start)
	}

	s.observe(ctx, criteria, result, start)
	return result, nil
}

// SearchByIdentifier is the single-field fast path for identifier lookups.
func (s *Service) SearchByIdentifier(ctx context.Context, identifier string) (models.SearchResult, error) {
	if strings.TrimSpace(identifier) == "" {
		return models.SearchResult{}, dErrors.New(dErrors.CodeValidation, "identifier is required")
	}
	return s.Search(ctx, models.SearchCriteria{Identifier: identifier})
}

// SearchByPhone is the single-field fast path for phone lookups.
func (s *Service) SearchByPhone(ctx context.Context, phone string) (models.SearchResult, error) {
	if match.NormalizePhone(phone) == "" {
		return models.SearchResult{}, dErrors.New(dErrors.CodeValidation, "phone is required")
	}
	return s.Search(ctx, models.SearchCriteria{Phone: phone})
}

// Lookup fetches a single person by record ID.
func (s *Service) Lookup(ctx context.Context, id string) (*registry.Person, error) {
	if strings.TrimSpace(id) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "id is required")
	}
	p, err := s.source.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load person")
	}
	return p, nil
}

// FieldValues returns autocomplete values for a location or membership field,
// optionally narrowed by region and a substring query.
func (s *Service) FieldValues(ctx context.Context, field registry.FieldType, regionCode, query string) ([]registry.FieldValue, error) {
	values, err := s.source.FieldValues(ctx, field, regionCode, query, config.MaxRawResults)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list field values")
	}
	if values == nil {
		values = []registry.FieldValue{}
	}
	return values, nil
}

func (s *Service) exactPath(ctx context.Context, criteria models.SearchCriteria, start time.Time, resultType models.ResultType) models.SearchResult {
	var (
		people []registry.Person
		err    error
	)
	if resultType == models.ResultExactIdentifierMatch {
		people, err = s.source.FindByIdentifier(ctx, criteria.Identifier)
	} else {
		people, err = s.source.FindByPhone(ctx, match.NormalizePhone(criteria.Phone))
	}
	if err != nil {
		return s.sourceFailure(ctx, err, start)
	}

	records := make([]models.ScoredPerson, 0, len(people))
	for _, p := range people {
		records = append(records, models.ScoredPerson{Person: p, Score: 100})
	}
	if len(records) == 0 {
		resultType = models.ResultNoResults
	}
	return models.SearchResult{
		Success:      true,
		ResultType:   resultType,
		TotalCount:   len(records),
		Records:      records,
		SearchTimeMs: time.Since(start).Milliseconds(),
	}
}

func (s *Service) criteriaPath(ctx context.Context, criteria models.SearchCriteria, start time.Time) models.SearchResult {
	filter := store.Filter{
		Region:            criteria.Region,
		Group:             criteria.Group,
		Subregion:         criteria.Subregion,
		Organization:      criteria.Organization,
		PartialIdentifier: criteria.PartialIdentifier,
		PartialPhone:      criteria.PartialPhone,
		Name:              criteria.Name,
	}
	if criteria.Name != "" {
		filter.NamePhonetic = match.QueryPhonetic(criteria.Name)
	}

	people, err := s.source.Search(ctx, filter, config.MaxRawResults)
	if err != nil {
		return s.sourceFailure(ctx, err, start)
	}

	scored := make([]models.ScoredPerson, 0, len(people))
	for _, p := range people {
		scored = append(scored, models.ScoredPerson{Person: p, Score: scorePerson(criteria, p)})
	}
	// Stable keeps fetch order on equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	total := len(scored)
	if limit := criteria.EffectiveLimit(); len(scored) > limit {
		scored = scored[:limit]
	}

	resultType := models.ResultCriteriaMatch
	if total == 0 {
		resultType = models.ResultNoResults
	}
	return models.SearchResult{
		Success:      true,
		ResultType:   resultType,
		TotalCount:   total,
		Records:      scored,
		SearchTimeMs: time.Since(start).Milliseconds(),
	}
}

func scorePerson(criteria models.SearchCriteria, p registry.Person) int {
	nameScore := match.NameRelevance(criteria.Name, p.FirstName, p.LastName, p.PhoneticCode)
	regionMatch := criteria.Region != "" &&
		(strings.EqualFold(criteria.Region, p.RegionCode) || strings.EqualFold(criteria.Region, p.RegionName))
	groupMatch := criteria.Group != "" && strings.EqualFold(criteria.Group, p.Group)
	return match.CombinedRelevance(nameScore, regionMatch, groupMatch)
}

func (s *Service) sourceFailure(ctx context.Context, err error, start time.Time) models.SearchResult {
	s.logger.ErrorContext(ctx, "record source query failed", "error", err)
	if s.metrics != nil {
		s.metrics.IncrementFailure()
	}
	return models.Failure(fmt.Sprintf("search failed: %v", err), time.Since(start).Milliseconds())
}

func (s *Service) observe(ctx context.Context, criteria models.SearchCriteria, result models.SearchResult, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveSearch(start)
		if result.Success {
			s.metrics.IncrementSearch(string(result.ResultType))
		}
	}
	if s.auditor == nil {
		return
	}
	event := audit.Event{
		RequestID:  middleware.GetRequestID(ctx),
		Action:     audit.ActionSearchExecuted,
		ResultType: string(result.ResultType),
		Criteria:   criteriaSummary(criteria),
		Results:    result.TotalCount,
		DurationMs: result.SearchTimeMs,
	}
	if !result.Success {
		event.Action = audit.ActionSearchFailed
		event.Error = result.Error
	}
	s.auditor.Emit(ctx, event)
}

// criteriaSummary renders criteria for the audit trail with identifying
// values masked. Full identifiers and phones never reach the audit store.
func criteriaSummary(c models.SearchCriteria) string {
	var parts []string
	add := func(field, value string) {
		if value != "" {
			parts = append(parts, field+"="+value)
		}
	}
	add("identifier", registry.MaskIdentifier(c.Identifier))
	add("phone", registry.MaskPhone(c.Phone))
	add("name", c.Name)
	add("region", c.Region)
	add("group", c.Group)
	add("subregion", c.Subregion)
	add("organization", c.Organization)
	add("partial_identifier", registry.MaskIdentifier(c.PartialIdentifier))
	add("partial_phone", registry.MaskPhone(c.PartialPhone))
	return strings.Join(parts, " ")
}
