package registry

import (
	"context"
	"errors"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-rbac/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RoleRegistryConfig configures the Bun-backed role registry.
type RoleRegistryConfig struct {
	DB          *bun.DB
	Roles       repository.Repository[*CustomRole]
	Memberships repository.Repository[*Membership]
	Clock       types.Clock
	Hooks       types.Hooks
	Logger      types.Logger
	IDGenerator types.IDGenerator
}

// RoleRegistry persists custom roles and memberships using Bun repositories.
type RoleRegistry struct {
	db          *bun.DB
	roles       repository.Repository[*CustomRole]
	memberships repository.Repository[*Membership]
	clock       types.Clock
	hooks       types.Hooks
	logger      types.Logger
	idGen       types.IDGenerator
}

var _ types.RoleRegistry = (*RoleRegistry)(nil)

// NewRoleRegistry constructs the default registry. Either DB or both repositories
// must be provided; when DB is supplied the repositories are created automatically.
func NewRoleRegistry(cfg RoleRegistryConfig, options ...RepositoryOption) (*RoleRegistry, error) {
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	idGen := cfg.IDGenerator
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}

	rolesRepo := cfg.Roles
	membershipRepo := cfg.Memberships

	if rolesRepo == nil || membershipRepo == nil {
		if cfg.DB == nil {
			return nil, errors.New("bun role registry: db or repositories must be provided")
		}
		if rolesRepo == nil {
			rolesRepo = repository.NewRepository(cfg.DB, repository.ModelHandlers[*CustomRole]{
				NewRecord: func() *CustomRole { return &CustomRole{} },
				GetID: func(role *CustomRole) uuid.UUID {
					if role == nil {
						return uuid.Nil
					}
					return role.ID
				},
				SetID: func(role *CustomRole, id uuid.UUID) {
					if role != nil {
						role.ID = id
					}
				},
			})
		}
		if membershipRepo == nil {
			membershipRepo = repository.NewRepository(cfg.DB, repository.ModelHandlers[*Membership]{
				NewRecord: func() *Membership { return &Membership{} },
				GetID: func(m *Membership) uuid.UUID {
					if m == nil {
						return uuid.Nil
					}
					return m.ID
				},
				SetID: func(m *Membership, id uuid.UUID) {
					if m != nil {
						m.ID = id
					}
				},
			})
		}
	}

	opts := applyRepositoryOptions(options)
	if opts.CacheEnabled {
		var err error
		rolesRepo, err = wrapRoleCache(rolesRepo, opts)
		if err != nil {
			return nil, err
		}
		membershipRepo, err = wrapMembershipCache(membershipRepo, opts)
		if err != nil {
			return nil, err
		}
	}

	return &RoleRegistry{
		db:          cfg.DB,
		roles:       rolesRepo,
		memberships: membershipRepo,
		clock:       clock,
		hooks:       cfg.Hooks,
		logger:      logger,
		idGen:       idGen,
	}, nil
}

// CreateRole inserts a custom role scoped to the provided tenant/org.
func (r *RoleRegistry) CreateRole(ctx context.Context, input types.RoleMutation) (*types.RoleDefinition, error) {
	name := normalizeRoleName(input.Name)
	if name == "" {
		return nil, errors.New("role name required")
	}
	now := r.clock.Now()
	role := &CustomRole{
		ID:          r.idGen.UUID(),
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Color:       strings.TrimSpace(input.Color),
		Permissions: copyPermissions(input.Permissions),
		IsSystem:    input.IsSystem,
		TenantID:    input.Scope.TenantID,
		OrgID:       input.Scope.OrgID,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   input.ActorID,
		UpdatedBy:   input.ActorID,
	}
	created, err := r.roles.Create(ctx, role)
	if err != nil {
		return nil, err
	}
	def := toRoleDefinition(created)
	r.emitRoleEvent(ctx, types.RoleEvent{
		RoleID:     def.ID,
		Action:     "role.created",
		ActorID:    input.ActorID,
		Scope:      def.Scope,
		OccurredAt: now,
		Role:       *def,
	})
	return def, nil
}

// UpdateRole updates mutable fields on a custom role.
func (r *RoleRegistry) UpdateRole(ctx context.Context, id uuid.UUID, input types.RoleMutation) (*types.RoleDefinition, error) {
	role, err := r.roles.GetByID(ctx, id.String(), scopeSelectCriteria(input.Scope))
	if err != nil {
		return nil, err
	}
	if name := normalizeRoleName(input.Name); name != "" {
		role.Name = name
	}
	role.Description = strings.TrimSpace(input.Description)
	role.Color = strings.TrimSpace(input.Color)
	if input.Permissions != nil {
		role.Permissions = copyPermissions(input.Permissions)
	}
	if input.IsSystem {
		role.IsSystem = true
	}
	role.UpdatedAt = r.clock.Now()
	role.UpdatedBy = input.ActorID

	updated, err := r.roles.Update(ctx, role)
	if err != nil {
		return nil, err
	}
	def := toRoleDefinition(updated)
	r.emitRoleEvent(ctx, types.RoleEvent{
		RoleID:     def.ID,
		Action:     "role.updated",
		ActorID:    input.ActorID,
		Scope:      def.Scope,
		OccurredAt: role.UpdatedAt,
		Role:       *def,
	})
	return def, nil
}

// DeleteRole removes a custom role (unless marked as system). Memberships
// pointing at the role are cleared in the same call so no user is left with a
// dangling authority source.
func (r *RoleRegistry) DeleteRole(ctx context.Context, id uuid.UUID, scope types.ScopeFilter, actor uuid.UUID) error {
	role, err := r.roles.GetByID(ctx, id.String(), scopeSelectCriteria(scope))
	if err != nil {
		return err
	}
	if role.IsSystem {
		return errors.New("cannot delete system roles")
	}
	if err := r.roles.Delete(ctx, role); err != nil {
		return err
	}
	err = r.memberships.DeleteWhere(ctx, func(q *bun.DeleteQuery) *bun.DeleteQuery {
		return q.Where("custom_role_id = ? AND tenant_id = ? AND org_id = ?",
			role.ID, role.TenantID, role.OrgID)
	})
	if err != nil {
		return err
	}
	r.emitRoleEvent(ctx, types.RoleEvent{
		RoleID:     role.ID,
		Action:     "role.deleted",
		ActorID:    actor,
		Scope:      scopeFromRecord(role),
		OccurredAt: r.clock.Now(),
		Role:       *toRoleDefinition(role),
	})
	return nil
}

// ListRoles returns paginated roles filtered by scope/keyword.
func (r *RoleRegistry) ListRoles(ctx context.Context, filter types.RoleFilter) (types.RolePage, error) {
	pagination := normalizePagination(filter.Pagination, 50, 200)
	criteria := []repository.SelectCriteria{
		scopeSelectCriteria(filter.Scope),
		func(q *bun.SelectQuery) *bun.SelectQuery {
			q = q.OrderExpr("LOWER(name) ASC").
				Limit(pagination.Limit).
				Offset(pagination.Offset)
			if len(filter.RoleIDs) > 0 {
				q = q.Where("id IN (?)", bun.In(filter.RoleIDs))
			}
			if filter.Keyword != "" {
				keyword := "%" + strings.ToLower(strings.TrimSpace(filter.Keyword)) + "%"
				q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", keyword, keyword)
			}
			if !filter.IncludeSystem {
				q = q.Where("is_system = FALSE")
			}
			return q
		},
	}

	records, total, err := r.roles.List(ctx, criteria...)
	if err != nil {
		return types.RolePage{}, err
	}
	defs := make([]types.RoleDefinition, 0, len(records))
	for _, record := range records {
		defs = append(defs, *toRoleDefinition(record))
	}
	return types.RolePage{
		Roles:      defs,
		Total:      total,
		NextOffset: pagination.Offset + pagination.Limit,
		HasMore:    pagination.Offset+pagination.Limit < total,
	}, nil
}

// GetRole returns a single role matching the scope constraints.
func (r *RoleRegistry) GetRole(ctx context.Context, id uuid.UUID, scope types.ScopeFilter) (*types.RoleDefinition, error) {
	role, err := r.roles.GetByID(ctx, id.String(), scopeSelectCriteria(scope))
	if err != nil {
		return nil, err
	}
	return toRoleDefinition(role), nil
}

// SetMembership creates or replaces the user's membership in the scope. The
// mutation must carry exactly one authority source: a valid predefined role or
// a custom role id that exists in the same scope.
func (r *RoleRegistry) SetMembership(ctx context.Context, input types.MembershipMutation) (*types.Membership, error) {
	if input.UserID == uuid.Nil {
		return nil, types.ErrUserIDRequired
	}
	hasRole := input.Role.Valid()
	hasCustom := input.CustomRoleID != uuid.Nil
	if hasRole == hasCustom {
		return nil, types.ErrAmbiguousAuthority
	}
	if hasCustom {
		if _, err := r.roles.GetByID(ctx, input.CustomRoleID.String(), scopeSelectCriteria(input.Scope)); err != nil {
			return nil, err
		}
	}

	now := r.clock.Now()
	record, err := r.findMembership(ctx, input.UserID, input.Scope)
	if err != nil && !errors.Is(err, types.ErrMembershipNotFound) {
		return nil, err
	}

	action := "membership.assigned"
	if record == nil {
		record = &Membership{
			ID:       r.idGen.UUID(),
			UserID:   input.UserID,
			TenantID: input.Scope.TenantID,
			OrgID:    input.Scope.OrgID,
		}
		record.Role = string(input.Role)
		record.CustomRoleID = input.CustomRoleID
		record.AssignedAt = now
		record.AssignedBy = input.ActorID
		record, err = r.memberships.Create(ctx, record)
	} else {
		action = "membership.updated"
		record.Role = string(input.Role)
		record.CustomRoleID = input.CustomRoleID
		record.AssignedAt = now
		record.AssignedBy = input.ActorID
		record, err = r.memberships.Update(ctx, record)
	}
	if err != nil {
		return nil, err
	}

	membership := toMembership(record)
	r.emitMembershipEvent(ctx, types.MembershipEvent{
		UserID:     membership.UserID,
		Role:       membership.Role,
		RoleID:     membership.CustomRoleID,
		Action:     action,
		ActorID:    input.ActorID,
		Scope:      membership.Scope,
		OccurredAt: now,
	})
	return membership, nil
}

// ClearMembership removes the user's membership from the scope. Clearing an
// absent membership is a no-op.
func (r *RoleRegistry) ClearMembership(ctx context.Context, userID uuid.UUID, scope types.ScopeFilter, actor uuid.UUID) error {
	if userID == uuid.Nil {
		return types.ErrUserIDRequired
	}
	record, err := r.findMembership(ctx, userID, scope)
	if err != nil {
		if errors.Is(err, types.ErrMembershipNotFound) {
			return nil
		}
		return err
	}
	err = r.memberships.DeleteWhere(ctx, func(q *bun.DeleteQuery) *bun.DeleteQuery {
		return q.Where("user_id = ? AND tenant_id = ? AND org_id = ?",
			userID, scope.TenantID, scope.OrgID)
	})
	if err != nil {
		return err
	}
	r.emitMembershipEvent(ctx, types.MembershipEvent{
		UserID:     userID,
		Role:       types.Role(record.Role),
		RoleID:     record.CustomRoleID,
		Action:     "membership.cleared",
		ActorID:    actor,
		Scope:      scope,
		OccurredAt: r.clock.Now(),
	})
	return nil
}

// GetMembership returns the user's membership in the scope, or
// types.ErrMembershipNotFound when the user holds none.
func (r *RoleRegistry) GetMembership(ctx context.Context, userID uuid.UUID, scope types.ScopeFilter) (*types.Membership, error) {
	record, err := r.findMembership(ctx, userID, scope)
	if err != nil {
		return nil, err
	}
	return toMembership(record), nil
}

// ListMemberships returns memberships filtered by scope/user/role.
func (r *RoleRegistry) ListMemberships(ctx context.Context, filter types.MembershipFilter) ([]types.Membership, error) {
	criteria := []repository.SelectCriteria{
		func(q *bun.SelectQuery) *bun.SelectQuery {
			q = q.Where("tenant_id = ? AND org_id = ?", filter.Scope.TenantID, filter.Scope.OrgID)
			if filter.UserID != uuid.Nil {
				q = q.Where("user_id = ?", filter.UserID)
			}
			if len(filter.UserIDs) > 0 {
				q = q.Where("user_id IN (?)", bun.In(filter.UserIDs))
			}
			if filter.Role.Valid() {
				q = q.Where("role = ?", string(filter.Role))
			}
			if filter.RoleID != uuid.Nil {
				q = q.Where("custom_role_id = ?", filter.RoleID)
			}
			return q.OrderExpr("assigned_at ASC")
		},
	}
	records, _, err := r.memberships.List(ctx, criteria...)
	if err != nil {
		return nil, err
	}
	memberships := make([]types.Membership, 0, len(records))
	for _, record := range records {
		memberships = append(memberships, *toMembership(record))
	}
	return memberships, nil
}

func (r *RoleRegistry) findMembership(ctx context.Context, userID uuid.UUID, scope types.ScopeFilter) (*Membership, error) {
	records, _, err := r.memberships.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("user_id = ? AND tenant_id = ? AND org_id = ?",
			userID, scope.TenantID, scope.OrgID).Limit(1)
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, types.ErrMembershipNotFound
	}
	return records[0], nil
}

func (r *RoleRegistry) emitRoleEvent(ctx context.Context, event types.RoleEvent) {
	if r.hooks.AfterRoleChange == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("role hook panic", errors.New("panic in AfterRoleChange"), "panic", rec)
		}
	}()
	r.hooks.AfterRoleChange(ctx, event)
}

func (r *RoleRegistry) emitMembershipEvent(ctx context.Context, event types.MembershipEvent) {
	if r.hooks.AfterMembershipChange == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("membership hook panic", errors.New("panic in AfterMembershipChange"), "panic", rec)
		}
	}()
	r.hooks.AfterMembershipChange(ctx, event)
}

func scopeSelectCriteria(scope types.ScopeFilter) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("tenant_id = ? AND org_id = ?", scope.TenantID, scope.OrgID)
	}
}

func normalizeRoleName(name string) string {
	return strings.TrimSpace(name)
}

func copyPermissions(values []string) []string {
	if len(values) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		out = append(out, value)
	}
	return out
}

func toRoleDefinition(record *CustomRole) *types.RoleDefinition {
	if record == nil {
		return nil
	}
	return &types.RoleDefinition{
		ID:          record.ID,
		Name:        record.Name,
		Description: record.Description,
		Color:       record.Color,
		Permissions: append([]string{}, record.Permissions...),
		IsSystem:    record.IsSystem,
		Scope:       scopeFromRecord(record),
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
		CreatedBy:   record.CreatedBy,
		UpdatedBy:   record.UpdatedBy,
	}
}

func toMembership(record *Membership) *types.Membership {
	if record == nil {
		return nil
	}
	return &types.Membership{
		UserID: record.UserID,
		Scope: types.ScopeFilter{
			TenantID: record.TenantID,
			OrgID:    record.OrgID,
		},
		Role:         types.Role(record.Role),
		CustomRoleID: record.CustomRoleID,
		AssignedAt:   record.AssignedAt,
		AssignedBy:   record.AssignedBy,
	}
}

func scopeFromRecord(record *CustomRole) types.ScopeFilter {
	if record == nil {
		return types.ScopeFilter{}
	}
	return types.ScopeFilter{
		TenantID: record.TenantID,
		OrgID:    record.OrgID,
	}
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
