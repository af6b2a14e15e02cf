package query

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-rbac/pkg/types"
	"github.com/goliatone/go-rbac/scope"
	"github.com/google/uuid"
)

var errRoleIDRequired = errors.New("go-rbac: role id required")

// RoleListQuery lists custom roles for admin surfaces.
type RoleListQuery struct {
	registry types.RoleRegistry
	guard    scope.Guard
}

// NewRoleListQuery builds the list query.
func NewRoleListQuery(registry types.RoleRegistry, guard scope.Guard) *RoleListQuery {
	return &RoleListQuery{
		registry: registry,
		guard:    safeScopeGuard(guard),
	}
}

var _ gocommand.Querier[types.RoleFilter, types.RolePage] = (*RoleListQuery)(nil)

// Query forwards to the registry.
func (q *RoleListQuery) Query(ctx context.Context, filter types.RoleFilter) (types.RolePage, error) {
	if q.registry == nil {
		return types.RolePage{}, types.ErrMissingRoleRegistry
	}
	if err := filter.Validate(); err != nil {
		return types.RolePage{}, err
	}
	enforced, err := q.guard.Enforce(ctx, filter.Actor, filter.Scope, types.PolicyActionRolesRead, uuid.Nil)
	if err != nil {
		return types.RolePage{}, err
	}
	filter.Scope = enforced.Scope
	return q.registry.ListRoles(ctx, filter)
}

// RoleDetailInput fetches a single role by ID.
type RoleDetailInput struct {
	RoleID uuid.UUID
	Scope  types.ScopeFilter
	Actor  types.ActorRef
}

// Type implements gocommand.Message.
func (RoleDetailInput) Type() string {
	return "query.role.detail"
}

// Validate implements gocommand.Message.
func (input RoleDetailInput) Validate() error {
	switch {
	case input.RoleID == uuid.Nil:
		return errRoleIDRequired
	case input.Actor.ID == uuid.Nil:
		return types.ErrActorRequired
	default:
		return nil
	}
}

// RoleDetailQuery loads custom role metadata.
type RoleDetailQuery struct {
	registry types.RoleRegistry
	guard    scope.Guard
}

// NewRoleDetailQuery constructs the detail query.
func NewRoleDetailQuery(registry types.RoleRegistry, guard scope.Guard) *RoleDetailQuery {
	return &RoleDetailQuery{
		registry: registry,
		guard:    safeScopeGuard(guard),
	}
}

var _ gocommand.Querier[RoleDetailInput, *types.RoleDefinition] = (*RoleDetailQuery)(nil)

// Query fetches role detail.
func (q *RoleDetailQuery) Query(ctx context.Context, input RoleDetailInput) (*types.RoleDefinition, error) {
	if q.registry == nil {
		return nil, types.ErrMissingRoleRegistry
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	enforced, err := q.guard.Enforce(ctx, input.Actor, input.Scope, types.PolicyActionRolesRead, input.RoleID)
	if err != nil {
		return nil, err
	}
	return q.registry.GetRole(ctx, input.RoleID, enforced.Scope)
}

// AssignableRolesInput asks which predefined roles the actor may hand out.
type AssignableRolesInput struct {
	Scope types.ScopeFilter
	Actor types.ActorRef
}

// Type implements gocommand.Message.
func (AssignableRolesInput) Type() string {
	return "query.role.assignable"
}

// Validate implements gocommand.Message.
func (input AssignableRolesInput) Validate() error {
	if input.Actor.ID == uuid.Nil {
		return types.ErrActorRequired
	}
	return nil
}

// AssignableRolesQuery resolves the actor's authority and reports the
// predefined roles it may assign, so admin panels can populate pickers
// without guessing at the delegation rules.
type AssignableRolesQuery struct {
	resolver types.AuthorityResolver
	guard    scope.Guard
}

// NewAssignableRolesQuery constructs the query helper.
func NewAssignableRolesQuery(resolver types.AuthorityResolver, guard scope.Guard) *AssignableRolesQuery {
	return &AssignableRolesQuery{
		resolver: resolver,
		guard:    safeScopeGuard(guard),
	}
}

var _ gocommand.Querier[AssignableRolesInput, []types.Role] = (*AssignableRolesQuery)(nil)

// Query lists assignable predefined roles in descending authority order.
func (q *AssignableRolesQuery) Query(ctx context.Context, input AssignableRolesInput) ([]types.Role, error) {
	if q.resolver == nil {
		return nil, types.ErrMissingAuthorityResolver
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	enforced, err := q.guard.Enforce(ctx, input.Actor, input.Scope, types.PolicyActionMembersRead, uuid.Nil)
	if err != nil {
		return nil, err
	}
	authority := enforced.Authority
	if authority.IsZero() {
		authority, err = q.resolver.ResolveAuthority(ctx, input.Actor, enforced.Scope)
		if err != nil {
			return nil, err
		}
	}
	return assignableForAuthority(authority), nil
}
