package command

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-rbac/pkg/types"
	"github.com/goliatone/go-rbac/scope"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCreateRoleCommand_OwnerCreatesRole(t *testing.T) {
	registry := newFakeRoleRegistry()
	sink := &memoryAuditSink{}
	cmd := NewCreateRoleCommand(RoleCommandConfig{
		Registry:   registry,
		ScopeGuard: authorityGuard(types.PredefinedAuthority(types.RoleOrganizationOwner)),
		Audit:      sink,
	})

	var result types.RoleDefinition
	err := cmd.Execute(context.Background(), CreateRoleInput{
		Name:        "Support Agent",
		Permissions: []string{"crm:read", "collaboration:write"},
		Scope:       types.ScopeFilter{TenantID: uuid.New()},
		Actor:       types.ActorRef{ID: uuid.New()},
		Result:      &result,
	})

	require.NoError(t, err)
	require.Equal(t, "Support Agent", result.Name)
	require.Len(t, registry.roles, 1)
	require.Len(t, sink.records, 1)
	require.Equal(t, "role.created", sink.records[0].Verb)
	require.Equal(t, "allow", sink.records[0].Decision)
}

func TestCreateRoleCommand_LowRankActorForbidden(t *testing.T) {
	registry := newFakeRoleRegistry()
	cmd := NewCreateRoleCommand(RoleCommandConfig{
		Registry:   registry,
		ScopeGuard: authorityGuard(types.PredefinedAuthority(types.RoleDepartmentManager)),
	})

	err := cmd.Execute(context.Background(), CreateRoleInput{
		Name:        "Shadow Admin",
		Permissions: []string{"crm:read"},
		Scope:       types.ScopeFilter{TenantID: uuid.New()},
		Actor:       types.ActorRef{ID: uuid.New()},
	})

	require.Error(t, err)
	var richErr *goerrors.Error
	require.ErrorAs(t, err, &richErr)
	require.Equal(t, "CUSTOM_ROLE_FORBIDDEN", richErr.TextCode)
	require.Empty(t, registry.roles)
}

func TestCreateRoleCommand_UngrantablePermissions(t *testing.T) {
	registry := newFakeRoleRegistry()
	sink := &memoryAuditSink{}
	cmd := NewCreateRoleCommand(RoleCommandConfig{
		Registry:   registry,
		ScopeGuard: authorityGuard(types.PredefinedAuthority(types.RoleSuperAdmin)),
		Audit:      sink,
	})

	err := cmd.Execute(context.Background(), CreateRoleInput{
		Name:        "Billing Clerk",
		Permissions: []string{"billing:read", "crm:read"},
		Scope:       types.ScopeFilter{TenantID: uuid.New()},
		Actor:       types.ActorRef{ID: uuid.New()},
	})

	require.Error(t, err)
	var richErr *goerrors.Error
	require.ErrorAs(t, err, &richErr)
	require.Equal(t, "UNGRANTABLE_PERMISSIONS", richErr.TextCode)
	require.Equal(t, goerrors.CodeBadRequest, richErr.Code)
	require.Empty(t, registry.roles)
	require.Len(t, sink.records, 1)
	require.Equal(t, "deny", sink.records[0].Decision)
}

func TestCreateRoleCommand_FeatureGateDisabled(t *testing.T) {
	registry := newFakeRoleRegistry()
	gate := &stubFeatureGate{enabled: false}
	cmd := NewCreateRoleCommand(RoleCommandConfig{
		Registry:    registry,
		ScopeGuard:  authorityGuard(types.PredefinedAuthority(types.RoleOrganizationOwner)),
		FeatureGate: gate,
	})

	err := cmd.Execute(context.Background(), CreateRoleInput{
		Name:        "Gated",
		Permissions: []string{"crm:read"},
		Scope:       types.ScopeFilter{TenantID: uuid.New()},
		Actor:       types.ActorRef{ID: uuid.New()},
	})

	require.ErrorIs(t, err, ErrCustomRolesDisabled)
	require.Equal(t, []string{featureCustomRoles}, gate.keys)
	require.Empty(t, registry.roles)
}

func TestCreateRoleCommand_InputValidation(t *testing.T) {
	cmd := NewCreateRoleCommand(RoleCommandConfig{Registry: newFakeRoleRegistry()})

	err := cmd.Execute(context.Background(), CreateRoleInput{
		Name:  "No Actor",
		Scope: types.ScopeFilter{TenantID: uuid.New()},
	})
	require.ErrorIs(t, err, ErrActorRequired)

	err = cmd.Execute(context.Background(), CreateRoleInput{
		Actor: types.ActorRef{ID: uuid.New()},
	})
	require.ErrorIs(t, err, ErrRoleNameRequired)
}

func TestUpdateRoleCommand_RevalidatesPermissions(t *testing.T) {
	registry := newFakeRoleRegistry()
	scopeFilter := types.ScopeFilter{TenantID: uuid.New()}
	actor := types.ActorRef{ID: uuid.New()}

	created, err := registry.CreateRole(context.Background(), types.RoleMutation{
		Name:        "Analyst",
		Permissions: []string{"finance:read"},
		Scope:       scopeFilter,
		ActorID:     actor.ID,
	})
	require.NoError(t, err)

	cmd := NewUpdateRoleCommand(RoleCommandConfig{
		Registry:   registry,
		ScopeGuard: authorityGuard(types.PredefinedAuthority(types.RoleSuperAdmin)),
	})

	err = cmd.Execute(context.Background(), UpdateRoleInput{
		RoleID:      created.ID,
		Name:        "Analyst",
		Permissions: []string{"organization:billing", "finance:read"},
		Scope:       scopeFilter,
		Actor:       actor,
	})
	require.Error(t, err, "super admin cannot grant billing")

	var result types.RoleDefinition
	err = cmd.Execute(context.Background(), UpdateRoleInput{
		RoleID:      created.ID,
		Name:        "Senior Analyst",
		Permissions: []string{"finance:write", "finance:read"},
		Scope:       scopeFilter,
		Actor:       actor,
		Result:      &result,
	})
	require.NoError(t, err)
	require.Equal(t, "Senior Analyst", result.Name)
}

func TestDeleteRoleCommand(t *testing.T) {
	registry := newFakeRoleRegistry()
	scopeFilter := types.ScopeFilter{TenantID: uuid.New()}
	actor := types.ActorRef{ID: uuid.New()}

	created, err := registry.CreateRole(context.Background(), types.RoleMutation{
		Name:        "Temp",
		Permissions: []string{"crm:read"},
		Scope:       scopeFilter,
		ActorID:     actor.ID,
	})
	require.NoError(t, err)

	sink := &memoryAuditSink{}
	cmd := NewDeleteRoleCommand(RoleCommandConfig{
		Registry:   registry,
		ScopeGuard: authorityGuard(types.PredefinedAuthority(types.RoleOrganizationOwner)),
		Audit:      sink,
	})

	require.NoError(t, cmd.Execute(context.Background(), DeleteRoleInput{
		RoleID: created.ID,
		Scope:  scopeFilter,
		Actor:  actor,
	}))
	require.Empty(t, registry.roles)
	require.Len(t, sink.records, 1)
	require.Equal(t, "role.deleted", sink.records[0].Verb)

	err = cmd.Execute(context.Background(), DeleteRoleInput{Scope: scopeFilter, Actor: actor})
	require.ErrorIs(t, err, ErrRoleIDRequired)
}

func authorityGuard(authority types.Authority) scope.Guard {
	return scope.NewGuard(scope.GuardConfig{
		AuthorityResolver: types.AuthorityResolverFunc(func(context.Context, types.ActorRef, types.ScopeFilter) (types.Authority, error) {
			return authority, nil
		}),
	})
}

type memoryAuditSink struct {
	records []types.AuditRecord
}

func (m *memoryAuditSink) Log(_ context.Context, record types.AuditRecord) error {
	m.records = append(m.records, record)
	return nil
}

type stubFeatureGate struct {
	enabled bool
	err     error
	keys    []string
}

func (s *stubFeatureGate) Enabled(_ context.Context, key string, _ ...featuregate.ResolveOption) (bool, error) {
	s.keys = append(s.keys, key)
	if s.err != nil {
		return false, s.err
	}
	return s.enabled, nil
}

type fakeRoleRegistry struct {
	roles       map[uuid.UUID]*types.RoleDefinition
	memberships map[string]*types.Membership
	idGen       types.IDGenerator
	clock       types.Clock
}

func newFakeRoleRegistry() *fakeRoleRegistry {
	return &fakeRoleRegistry{
		roles:       map[uuid.UUID]*types.RoleDefinition{},
		memberships: map[string]*types.Membership{},
		idGen:       types.UUIDGenerator{},
		clock:       types.SystemClock{},
	}
}

func membershipKey(userID uuid.UUID, scope types.ScopeFilter) string {
	return userID.String() + "/" + scope.TenantID.String() + "/" + scope.OrgID.String()
}

func (f *fakeRoleRegistry) CreateRole(_ context.Context, input types.RoleMutation) (*types.RoleDefinition, error) {
	def := &types.RoleDefinition{
		ID:          f.idGen.UUID(),
		Name:        input.Name,
		Description: input.Description,
		Color:       input.Color,
		Permissions: append([]string{}, input.Permissions...),
		IsSystem:    input.IsSystem,
		Scope:       input.Scope,
		CreatedAt:   f.clock.Now(),
		UpdatedAt:   f.clock.Now(),
		CreatedBy:   input.ActorID,
		UpdatedBy:   input.ActorID,
	}
	f.roles[def.ID] = def
	return def, nil
}

func (f *fakeRoleRegistry) UpdateRole(_ context.Context, id uuid.UUID, input types.RoleMutation) (*types.RoleDefinition, error) {
	def, ok := f.roles[id]
	if !ok {
		return nil, types.ErrMembershipNotFound
	}
	if input.Name != "" {
		def.Name = input.Name
	}
	if input.Permissions != nil {
		def.Permissions = append([]string{}, input.Permissions...)
	}
	def.UpdatedBy = input.ActorID
	return def, nil
}

func (f *fakeRoleRegistry) DeleteRole(_ context.Context, id uuid.UUID, _ types.ScopeFilter, _ uuid.UUID) error {
	delete(f.roles, id)
	return nil
}

func (f *fakeRoleRegistry) ListRoles(_ context.Context, filter types.RoleFilter) (types.RolePage, error) {
	page := types.RolePage{}
	for _, def := range f.roles {
		if def.Scope.TenantID == filter.Scope.TenantID && def.Scope.OrgID == filter.Scope.OrgID {
			page.Roles = append(page.Roles, *def)
		}
	}
	page.Total = len(page.Roles)
	return page, nil
}

func (f *fakeRoleRegistry) GetRole(_ context.Context, id uuid.UUID, _ types.ScopeFilter) (*types.RoleDefinition, error) {
	def, ok := f.roles[id]
	if !ok {
		return nil, types.ErrMembershipNotFound
	}
	return def, nil
}

func (f *fakeRoleRegistry) SetMembership(_ context.Context, input types.MembershipMutation) (*types.Membership, error) {
	membership := &types.Membership{
		UserID:       input.UserID,
		Scope:        input.Scope,
		Role:         input.Role,
		CustomRoleID: input.CustomRoleID,
		AssignedAt:   f.clock.Now(),
		AssignedBy:   input.ActorID,
	}
	f.memberships[membershipKey(input.UserID, input.Scope)] = membership
	return membership, nil
}

func (f *fakeRoleRegistry) ClearMembership(_ context.Context, userID uuid.UUID, scope types.ScopeFilter, _ uuid.UUID) error {
	delete(f.memberships, membershipKey(userID, scope))
	return nil
}

func (f *fakeRoleRegistry) GetMembership(_ context.Context, userID uuid.UUID, scope types.ScopeFilter) (*types.Membership, error) {
	membership, ok := f.memberships[membershipKey(userID, scope)]
	if !ok {
		return nil, types.ErrMembershipNotFound
	}
	return membership, nil
}

func (f *fakeRoleRegistry) ListMemberships(_ context.Context, filter types.MembershipFilter) ([]types.Membership, error) {
	var out []types.Membership
	for _, membership := range f.memberships {
		if membership.Scope.TenantID == filter.Scope.TenantID && membership.Scope.OrgID == filter.Scope.OrgID {
			out = append(out, *membership)
		}
	}
	return out, nil
}
