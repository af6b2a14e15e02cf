package command

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-rbac/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestAssignMembershipCommand_OwnerAssignsAnyRole(t *testing.T) {
	registry := newFakeRoleRegistry()
	sink := &memoryAuditSink{}
	cmd := NewAssignMembershipCommand(MembershipCommandConfig{
		Registry:   registry,
		ScopeGuard: authorityGuard(types.PredefinedAuthority(types.RoleOrganizationOwner)),
		Audit:      sink,
	})

	scopeFilter := types.ScopeFilter{TenantID: uuid.New()}
	var result types.Membership
	err := cmd.Execute(context.Background(), AssignMembershipInput{
		UserID: uuid.New(),
		Role:   types.RoleSuperAdmin,
		Scope:  scopeFilter,
		Actor:  types.ActorRef{ID: uuid.New()},
		Result: &result,
	})

	require.NoError(t, err)
	require.Equal(t, types.RoleSuperAdmin, result.Role)
	require.Len(t, registry.memberships, 1)
	require.Len(t, sink.records, 1)
	require.Equal(t, "membership.assigned", sink.records[0].Verb)
}

func TestAssignMembershipCommand_OwnerCannotAssignOwner(t *testing.T) {
	cmd := NewAssignMembershipCommand(MembershipCommandConfig{
		Registry:   newFakeRoleRegistry(),
		ScopeGuard: authorityGuard(types.PredefinedAuthority(types.RoleOrganizationOwner)),
	})

	err := cmd.Execute(context.Background(), AssignMembershipInput{
		UserID: uuid.New(),
		Role:   types.RoleOrganizationOwner,
		Scope:  types.ScopeFilter{TenantID: uuid.New()},
		Actor:  types.ActorRef{ID: uuid.New()},
	})

	var richErr *goerrors.Error
	require.ErrorAs(t, err, &richErr)
	require.Equal(t, "ASSIGNMENT_DENIED", richErr.TextCode)
}

func TestAssignMembershipCommand_SuperAdminBoundedByLevel(t *testing.T) {
	cmd := NewAssignMembershipCommand(MembershipCommandConfig{
		Registry:   newFakeRoleRegistry(),
		ScopeGuard: authorityGuard(types.PredefinedAuthority(types.RoleSuperAdmin)),
	})
	scopeFilter := types.ScopeFilter{TenantID: uuid.New()}
	actor := types.ActorRef{ID: uuid.New()}

	require.NoError(t, cmd.Execute(context.Background(), AssignMembershipInput{
		UserID: uuid.New(),
		Role:   types.RoleFinanceManager,
		Scope:  scopeFilter,
		Actor:  actor,
	}))

	err := cmd.Execute(context.Background(), AssignMembershipInput{
		UserID: uuid.New(),
		Role:   types.RoleDepartmentManager,
		Scope:  scopeFilter,
		Actor:  actor,
	})
	require.Error(t, err, "department manager sits at level 4, above the super admin assignment bound")
}

func TestAssignMembershipCommand_EmployeeDenied(t *testing.T) {
	sink := &memoryAuditSink{}
	cmd := NewAssignMembershipCommand(MembershipCommandConfig{
		Registry:   newFakeRoleRegistry(),
		ScopeGuard: authorityGuard(types.PredefinedAuthority(types.RoleEmployee)),
		Audit:      sink,
	})

	err := cmd.Execute(context.Background(), AssignMembershipInput{
		UserID: uuid.New(),
		Role:   types.RoleViewer,
		Scope:  types.ScopeFilter{TenantID: uuid.New()},
		Actor:  types.ActorRef{ID: uuid.New()},
	})

	require.Error(t, err)
	require.Len(t, sink.records, 1)
	require.Equal(t, "permission.denied", sink.records[0].Verb)
	require.Equal(t, "deny", sink.records[0].Decision)
}

func TestAssignMembershipCommand_CustomAuthorityWithMembersPermission(t *testing.T) {
	registry := newFakeRoleRegistry()
	cmd := NewAssignMembershipCommand(MembershipCommandConfig{
		Registry:   registry,
		ScopeGuard: authorityGuard(types.CustomAuthority([]string{"organization:members", "crm:read"})),
	})

	err := cmd.Execute(context.Background(), AssignMembershipInput{
		UserID: uuid.New(),
		Role:   types.RoleEmployee,
		Scope:  types.ScopeFilter{TenantID: uuid.New()},
		Actor:  types.ActorRef{ID: uuid.New()},
	})

	require.NoError(t, err)
	require.Len(t, registry.memberships, 1)
}

func TestAssignMembershipCommand_CustomRoleTarget(t *testing.T) {
	registry := newFakeRoleRegistry()
	scopeFilter := types.ScopeFilter{TenantID: uuid.New()}
	role, err := registry.CreateRole(context.Background(), types.RoleMutation{
		Name:        "Support",
		Permissions: []string{"crm:read"},
		Scope:       scopeFilter,
		ActorID:     uuid.New(),
	})
	require.NoError(t, err)

	cmd := NewAssignMembershipCommand(MembershipCommandConfig{
		Registry:   registry,
		ScopeGuard: authorityGuard(types.PredefinedAuthority(types.RoleDepartmentManager)),
	})

	var result types.Membership
	require.NoError(t, cmd.Execute(context.Background(), AssignMembershipInput{
		UserID:       uuid.New(),
		CustomRoleID: role.ID,
		Scope:        scopeFilter,
		Actor:        types.ActorRef{ID: uuid.New()},
		Result:       &result,
	}))
	require.True(t, result.HasCustomRole())
}

func TestAssignMembershipCommand_InputValidation(t *testing.T) {
	cmd := NewAssignMembershipCommand(MembershipCommandConfig{Registry: newFakeRoleRegistry()})
	ctx := context.Background()
	scopeFilter := types.ScopeFilter{TenantID: uuid.New()}
	actor := types.ActorRef{ID: uuid.New()}

	err := cmd.Execute(ctx, AssignMembershipInput{Role: types.RoleViewer, Scope: scopeFilter, Actor: actor})
	require.ErrorIs(t, err, ErrUserIDRequired)

	err = cmd.Execute(ctx, AssignMembershipInput{UserID: uuid.New(), Scope: scopeFilter, Actor: actor})
	require.ErrorIs(t, err, ErrRoleTargetRequired)

	err = cmd.Execute(ctx, AssignMembershipInput{
		UserID:       uuid.New(),
		Role:         types.RoleViewer,
		CustomRoleID: uuid.New(),
		Scope:        scopeFilter,
		Actor:        actor,
	})
	require.ErrorIs(t, err, ErrRoleTargetRequired)

	err = cmd.Execute(ctx, AssignMembershipInput{
		UserID: uuid.New(),
		Role:   types.Role("warlord"),
		Scope:  scopeFilter,
		Actor:  actor,
	})
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestClearMembershipCommand(t *testing.T) {
	registry := newFakeRoleRegistry()
	scopeFilter := types.ScopeFilter{TenantID: uuid.New()}
	userID := uuid.New()
	_, err := registry.SetMembership(context.Background(), types.MembershipMutation{
		UserID: userID,
		Role:   types.RoleEmployee,
		Scope:  scopeFilter,
	})
	require.NoError(t, err)

	sink := &memoryAuditSink{}
	cmd := NewClearMembershipCommand(MembershipCommandConfig{
		Registry:   registry,
		ScopeGuard: authorityGuard(types.PredefinedAuthority(types.RoleDepartmentManager)),
		Audit:      sink,
	})

	require.NoError(t, cmd.Execute(context.Background(), ClearMembershipInput{
		UserID: userID,
		Scope:  scopeFilter,
		Actor:  types.ActorRef{ID: uuid.New()},
	}))
	require.Empty(t, registry.memberships)
	require.Equal(t, "membership.cleared", sink.records[0].Verb)

	denied := NewClearMembershipCommand(MembershipCommandConfig{
		Registry:   registry,
		ScopeGuard: authorityGuard(types.PredefinedAuthority(types.RoleContractor)),
	})
	err = denied.Execute(context.Background(), ClearMembershipInput{
		UserID: uuid.New(),
		Scope:  scopeFilter,
		Actor:  types.ActorRef{ID: uuid.New()},
	})
	require.Error(t, err)
}
