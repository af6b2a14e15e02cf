package scope

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-rbac/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_NopPassesThrough(t *testing.T) {
	requested := types.ScopeFilter{TenantID: uuid.New()}

	res, err := NopGuard().Enforce(context.Background(), types.ActorRef{ID: uuid.New()}, requested, types.PolicyActionRolesRead, uuid.Nil)

	require.NoError(t, err)
	assert.Equal(t, requested, res.Scope)
	assert.True(t, res.Authority.IsZero())
}

func TestGuard_ResolvesScopeAndAuthority(t *testing.T) {
	canonical := types.ScopeFilter{TenantID: uuid.New(), OrgID: uuid.New()}
	authority := types.PredefinedAuthority(types.RoleSuperAdmin)

	g := NewGuard(GuardConfig{
		ScopeResolver: types.ScopeResolverFunc(func(_ context.Context, _ types.ActorRef, _ types.ScopeFilter) (types.ScopeFilter, error) {
			return canonical, nil
		}),
		AuthorityResolver: types.AuthorityResolverFunc(func(_ context.Context, _ types.ActorRef, scope types.ScopeFilter) (types.Authority, error) {
			assert.Equal(t, canonical, scope, "authority resolves against the canonical scope")
			return authority, nil
		}),
	})

	res, err := g.Enforce(context.Background(), types.ActorRef{ID: uuid.New()}, types.ScopeFilter{}, types.PolicyActionRolesWrite, uuid.Nil)

	require.NoError(t, err)
	assert.Equal(t, canonical, res.Scope)
	assert.Equal(t, authority, res.Authority)
}

func TestGuard_PolicyReceivesAuthority(t *testing.T) {
	authority := types.CustomAuthority([]string{"organization:admin"})
	var seen types.PolicyCheck

	g := NewGuard(GuardConfig{
		AuthorityResolver: types.AuthorityResolverFunc(func(context.Context, types.ActorRef, types.ScopeFilter) (types.Authority, error) {
			return authority, nil
		}),
		AuthorizationPolicy: types.AuthorizationPolicyFunc(func(_ context.Context, check types.PolicyCheck) error {
			seen = check
			return nil
		}),
	})

	target := uuid.New()
	_, err := g.Enforce(context.Background(), types.ActorRef{ID: uuid.New()}, types.ScopeFilter{}, types.PolicyActionMembersWrite, target)

	require.NoError(t, err)
	assert.Equal(t, authority, seen.Authority)
	assert.Equal(t, target, seen.TargetID)
}

func TestGuard_PolicyDenialBlocks(t *testing.T) {
	g := NewGuard(GuardConfig{
		AuthorizationPolicy: types.AuthorizationPolicyFunc(func(context.Context, types.PolicyCheck) error {
			return types.ErrUnauthorizedScope
		}),
	})

	_, err := g.Enforce(context.Background(), types.ActorRef{ID: uuid.New()}, types.ScopeFilter{}, types.PolicyActionRolesWrite, uuid.Nil)

	require.ErrorIs(t, err, types.ErrUnauthorizedScope)
}

func TestGuard_EmptyActionSkipsPolicy(t *testing.T) {
	called := false
	g := NewGuard(GuardConfig{
		AuthorizationPolicy: types.AuthorizationPolicyFunc(func(context.Context, types.PolicyCheck) error {
			called = true
			return types.ErrUnauthorizedScope
		}),
	})

	_, err := g.Enforce(context.Background(), types.ActorRef{ID: uuid.New()}, types.ScopeFilter{}, "", uuid.Nil)

	require.NoError(t, err)
	assert.False(t, called)
}

func TestPermissionPolicy_EvaluatesAction(t *testing.T) {
	policy := NewPermissionPolicy(nil)

	err := policy.Authorize(context.Background(), types.PolicyCheck{
		Actor:     types.ActorRef{ID: uuid.New()},
		Action:    types.PolicyActionRolesWrite,
		Authority: types.PredefinedAuthority(types.RoleSuperAdmin),
	})
	require.NoError(t, err)

	err = policy.Authorize(context.Background(), types.PolicyCheck{
		Actor:     types.ActorRef{ID: uuid.New()},
		Action:    types.PolicyActionRolesWrite,
		Authority: types.PredefinedAuthority(types.RoleViewer),
	})
	require.Error(t, err)

	var richErr *goerrors.Error
	require.ErrorAs(t, err, &richErr)
	assert.Equal(t, goerrors.CodeForbidden, richErr.Code)
}

func TestPermissionPolicy_FallsBackToResolver(t *testing.T) {
	policy := NewPermissionPolicy(types.AuthorityResolverFunc(func(context.Context, types.ActorRef, types.ScopeFilter) (types.Authority, error) {
		return types.CustomAuthority([]string{"organization:admin"}), nil
	}))

	err := policy.Authorize(context.Background(), types.PolicyCheck{
		Actor:  types.ActorRef{ID: uuid.New()},
		Action: types.PolicyActionRolesWrite,
	})
	require.NoError(t, err)
}
