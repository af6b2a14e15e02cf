package query

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-rbac/pkg/types"
	"github.com/goliatone/go-rbac/scope"
	"github.com/google/uuid"
)

// AuditTrailQuery renders paginated audit feeds for admin dashboards.
type AuditTrailQuery struct {
	repo  types.AuditRepository
	guard scope.Guard
}

// NewAuditTrailQuery constructs the feed query helper.
func NewAuditTrailQuery(repo types.AuditRepository, guard scope.Guard) *AuditTrailQuery {
	return &AuditTrailQuery{
		repo:  repo,
		guard: safeScopeGuard(guard),
	}
}

var _ gocommand.Querier[types.AuditFilter, types.AuditPage] = (*AuditTrailQuery)(nil)

// Query fetches a page of audit records via the injected repository.
func (q *AuditTrailQuery) Query(ctx context.Context, filter types.AuditFilter) (types.AuditPage, error) {
	if q.repo == nil {
		return types.AuditPage{}, types.ErrMissingAuditRepository
	}
	if err := filter.Validate(); err != nil {
		return types.AuditPage{}, err
	}
	enforced, err := q.guard.Enforce(ctx, filter.Actor, filter.Scope, types.PolicyActionAuditRead, uuid.Nil)
	if err != nil {
		return types.AuditPage{}, err
	}
	filter.Scope = enforced.Scope
	return q.repo.ListAudit(ctx, filter)
}
