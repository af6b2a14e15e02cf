package audit

import (
	"context"
	"errors"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-rbac/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed audit repository.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*Entry]
	Clock      types.Clock
	IDGen      types.IDGenerator
}

type auditStore interface {
	repository.Repository[*Entry]
}

// Repository persists audit entries and exposes query helpers.
type Repository struct {
	auditStore
	db    *bun.DB
	clock types.Clock
	idGen types.IDGenerator
}

// NewRepository constructs a repository that implements both AuditSink and
// AuditRepository interfaces.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("audit: db or repository required")
	}
	repo := cfg.Repository
	if repo == nil {
		repo = repository.NewRepository(cfg.DB, repository.ModelHandlers[*Entry]{
			NewRecord: func() *Entry { return &Entry{} },
			GetID: func(entry *Entry) uuid.UUID {
				if entry == nil {
					return uuid.Nil
				}
				return entry.ID
			},
			SetID: func(entry *Entry, id uuid.UUID) {
				if entry != nil {
					entry.ID = id
				}
			},
		})
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}

	return &Repository{
		auditStore: repo,
		db:         cfg.DB,
		clock:      clock,
		idGen:      idGen,
	}, nil
}

var (
	_ repository.Repository[*Entry] = (*Repository)(nil)
	_ types.AuditSink               = (*Repository)(nil)
	_ types.AuditRepository         = (*Repository)(nil)
)

// Log persists an audit record into the database. Data payloads are masked
// before they reach storage so secrets never land in the trail.
func (r *Repository) Log(ctx context.Context, record types.AuditRecord) error {
	entry := toEntry(SanitizeRecord(nil, record))
	if entry.ID == uuid.Nil {
		entry.ID = r.idGen.UUID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.clock.Now()
	}
	_, err := r.Create(ctx, entry)
	return err
}

// ListAudit returns a paginated audit feed filtered by the supplied criteria.
func (r *Repository) ListAudit(ctx context.Context, filter types.AuditFilter) (types.AuditPage, error) {
	pagination := normalizePagination(filter.Pagination, 50, 200)
	criteria := []repository.SelectCriteria{
		func(q *bun.SelectQuery) *bun.SelectQuery {
			q = q.OrderExpr("created_at DESC").
				Limit(pagination.Limit).
				Offset(pagination.Offset)
			return applyAuditFilter(q, filter)
		},
	}

	rows, total, err := r.List(ctx, criteria...)
	if err != nil {
		return types.AuditPage{}, err
	}
	records := make([]types.AuditRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, toAuditRecord(row))
	}
	return types.AuditPage{
		Records:    records,
		Total:      total,
		NextOffset: pagination.Offset + pagination.Limit,
		HasMore:    pagination.Offset+pagination.Limit < total,
	}, nil
}

// DecisionStats aggregates audit counts grouped by verb and decision.
func (r *Repository) DecisionStats(ctx context.Context, filter types.AuditFilter) (DecisionStats, error) {
	stats := DecisionStats{
		ByVerb:     make(map[string]int),
		ByDecision: make(map[string]int),
	}
	if r.db == nil {
		return stats, errors.New("audit: stats requires bun DB")
	}
	query := r.db.NewSelect().
		Table("rbac_audit").
		ColumnExpr("COUNT(*) AS total").
		ColumnExpr("verb").
		ColumnExpr("decision").
		Group("verb", "decision")
	query = applyAuditFilter(query, filter)

	type row struct {
		Verb     string `bun:"verb"`
		Decision string `bun:"decision"`
		Total    int    `bun:"total"`
	}
	var rows []row
	if err := query.Scan(ctx, &rows); err != nil {
		return stats, err
	}
	total := 0
	for _, rec := range rows {
		stats.ByVerb[rec.Verb] += rec.Total
		stats.ByDecision[rec.Decision] += rec.Total
		total += rec.Total
	}
	stats.Total = total
	return stats, nil
}

// DecisionStats summarizes the audit trail.
type DecisionStats struct {
	Total      int
	ByVerb     map[string]int
	ByDecision map[string]int
}

func applyAuditFilter(q *bun.SelectQuery, filter types.AuditFilter) *bun.SelectQuery {
	if filter.Scope.TenantID != uuid.Nil {
		q = q.Where("tenant_id = ?", filter.Scope.TenantID)
	}
	if filter.Scope.OrgID != uuid.Nil {
		q = q.Where("org_id = ?", filter.Scope.OrgID)
	}
	if filter.SubjectID != uuid.Nil && filter.ActorID != uuid.Nil {
		q = q.Where("(subject_id = ? OR actor_id = ?)", filter.SubjectID, filter.ActorID)
	} else {
		if filter.SubjectID != uuid.Nil {
			q = q.Where("subject_id = ?", filter.SubjectID)
		}
		if filter.ActorID != uuid.Nil {
			q = q.Where("actor_id = ?", filter.ActorID)
		}
	}
	if len(filter.Verbs) > 0 {
		q = q.Where("verb IN (?)", bun.In(filter.Verbs))
	}
	if filter.Decision != "" {
		q = q.Where("decision = ?", filter.Decision)
	}
	if filter.Since != nil && !filter.Since.IsZero() {
		q = q.Where("created_at >= ?", filter.Since)
	}
	if filter.Until != nil && !filter.Until.IsZero() {
		q = q.Where("created_at <= ?", filter.Until)
	}
	return q
}

func toEntry(record types.AuditRecord) *Entry {
	return &Entry{
		ID:         record.ID,
		ActorID:    record.ActorID,
		SubjectID:  record.SubjectID,
		TenantID:   record.TenantID,
		OrgID:      record.OrgID,
		Verb:       record.Verb,
		Decision:   record.Decision,
		Permission: record.Permission,
		Data:       cloneMap(record.Data),
		CreatedAt:  record.OccurredAt,
	}
}

func toAuditRecord(entry *Entry) types.AuditRecord {
	if entry == nil {
		return types.AuditRecord{}
	}
	return types.AuditRecord{
		ID:         entry.ID,
		ActorID:    entry.ActorID,
		SubjectID:  entry.SubjectID,
		TenantID:   entry.TenantID,
		OrgID:      entry.OrgID,
		Verb:       entry.Verb,
		Decision:   entry.Decision,
		Permission: entry.Permission,
		Data:       cloneMap(entry.Data),
		OccurredAt: entry.CreatedAt,
	}
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func normalizePagination(p types.Pagination, def, max int) types.Pagination {
	if p.Limit <= 0 {
		p.Limit = def
	}
	if p.Limit > max {
		p.Limit = max
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
