package query

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-rbac/permission"
	"github.com/goliatone/go-rbac/pkg/types"
	"github.com/goliatone/go-rbac/scope"
	"github.com/google/uuid"
)

// MembershipsQuery lists memberships filtered by scope/user/role.
type MembershipsQuery struct {
	registry types.MembershipRepository
	guard    scope.Guard
}

// NewMembershipsQuery constructs the query helper.
func NewMembershipsQuery(registry types.MembershipRepository, guard scope.Guard) *MembershipsQuery {
	return &MembershipsQuery{
		registry: registry,
		guard:    safeScopeGuard(guard),
	}
}

var _ gocommand.Querier[types.MembershipFilter, []types.Membership] = (*MembershipsQuery)(nil)

// Query returns memberships from the repository.
func (q *MembershipsQuery) Query(ctx context.Context, filter types.MembershipFilter) ([]types.Membership, error) {
	if q.registry == nil {
		return nil, types.ErrMissingMembershipRepository
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	enforced, err := q.guard.Enforce(ctx, filter.Actor, filter.Scope, types.PolicyActionMembersRead, uuid.Nil)
	if err != nil {
		return nil, err
	}
	filter.Scope = enforced.Scope
	return q.registry.ListMemberships(ctx, filter)
}

// EffectivePermissionsInput asks for a user's expanded permission set.
type EffectivePermissionsInput struct {
	UserID uuid.UUID
	Scope  types.ScopeFilter
	Actor  types.ActorRef
}

// Type implements gocommand.Message.
func (EffectivePermissionsInput) Type() string {
	return "query.permission.effective"
}

// Validate implements gocommand.Message.
func (input EffectivePermissionsInput) Validate() error {
	switch {
	case input.Actor.ID == uuid.Nil:
		return types.ErrActorRequired
	case input.UserID == uuid.Nil:
		return types.ErrUserIDRequired
	default:
		return nil
	}
}

// EffectivePermissionsQuery resolves a user's authority and expands it into
// the full permission list, hierarchy implications included.
type EffectivePermissionsQuery struct {
	resolver types.AuthorityResolver
	guard    scope.Guard
}

// NewEffectivePermissionsQuery constructs the query helper.
func NewEffectivePermissionsQuery(resolver types.AuthorityResolver, guard scope.Guard) *EffectivePermissionsQuery {
	return &EffectivePermissionsQuery{
		resolver: resolver,
		guard:    safeScopeGuard(guard),
	}
}

var _ gocommand.Querier[EffectivePermissionsInput, []string] = (*EffectivePermissionsQuery)(nil)

// Query returns the expanded permission set for the target user.
func (q *EffectivePermissionsQuery) Query(ctx context.Context, input EffectivePermissionsInput) ([]string, error) {
	if q.resolver == nil {
		return nil, types.ErrMissingAuthorityResolver
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	enforced, err := q.guard.Enforce(ctx, input.Actor, input.Scope, types.PolicyActionPermissionsRead, input.UserID)
	if err != nil {
		return nil, err
	}
	authority, err := q.resolver.ResolveAuthority(ctx, types.ActorRef{ID: input.UserID}, enforced.Scope)
	if err != nil {
		return nil, err
	}
	return permission.EffectivePermissions(authority), nil
}

// PermissionCheckInput asks whether a user holds one permission.
type PermissionCheckInput struct {
	UserID     uuid.UUID
	Permission string
	Scope      types.ScopeFilter
	Actor      types.ActorRef
}

// Type implements gocommand.Message.
func (PermissionCheckInput) Type() string {
	return "query.permission.check"
}

// Validate implements gocommand.Message.
func (input PermissionCheckInput) Validate() error {
	switch {
	case input.Actor.ID == uuid.Nil:
		return types.ErrActorRequired
	case input.UserID == uuid.Nil:
		return types.ErrUserIDRequired
	default:
		return nil
	}
}

// PermissionCheckResult reports the evaluation outcome.
type PermissionCheckResult struct {
	Allowed    bool
	Permission string
}

// PermissionCheckQuery evaluates a single permission for a user, applying
// the same hierarchy inference the evaluator uses everywhere else.
type PermissionCheckQuery struct {
	resolver types.AuthorityResolver
	guard    scope.Guard
}

// NewPermissionCheckQuery constructs the query helper.
func NewPermissionCheckQuery(resolver types.AuthorityResolver, guard scope.Guard) *PermissionCheckQuery {
	return &PermissionCheckQuery{
		resolver: resolver,
		guard:    safeScopeGuard(guard),
	}
}

var _ gocommand.Querier[PermissionCheckInput, PermissionCheckResult] = (*PermissionCheckQuery)(nil)

// Query evaluates the permission for the target user.
func (q *PermissionCheckQuery) Query(ctx context.Context, input PermissionCheckInput) (PermissionCheckResult, error) {
	if q.resolver == nil {
		return PermissionCheckResult{}, types.ErrMissingAuthorityResolver
	}
	if err := input.Validate(); err != nil {
		return PermissionCheckResult{}, err
	}
	enforced, err := q.guard.Enforce(ctx, input.Actor, input.Scope, types.PolicyActionPermissionsRead, input.UserID)
	if err != nil {
		return PermissionCheckResult{}, err
	}
	authority, err := q.resolver.ResolveAuthority(ctx, types.ActorRef{ID: input.UserID}, enforced.Scope)
	if err != nil {
		return PermissionCheckResult{}, err
	}
	perm := permission.Normalize(input.Permission)
	return PermissionCheckResult{
		Allowed:    permission.AuthorityHas(authority, perm),
		Permission: perm,
	}, nil
}

func assignableForAuthority(authority types.Authority) []types.Role {
	var out []types.Role
	for _, target := range types.Roles() {
		if permission.CanAssign(authority, target) {
			out = append(out, target)
		}
	}
	return out
}
