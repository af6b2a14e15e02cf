package registry

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-rbac/pkg/types"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func TestBunRoleRegistry_CreateListDelete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyTestMigration(t, db, rbacSchemaDDL)

	var events []types.RoleEvent
	registry, err := NewRoleRegistry(RoleRegistryConfig{
		DB: db,
		Hooks: types.Hooks{
			AfterRoleChange: func(_ context.Context, evt types.RoleEvent) {
				events = append(events, evt)
			},
		},
		Clock: fixedClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)

	scope := types.ScopeFilter{TenantID: uuid.New()}
	actor := uuid.New()

	role, err := registry.CreateRole(ctx, types.RoleMutation{
		Name:        "Regional Sales Lead",
		Description: "crm write plus read everywhere",
		Color:       "#2563eb",
		Permissions: []string{"crm:write", "finance:read", "projects:read"},
		Scope:       scope,
		ActorID:     actor,
	})
	require.NoError(t, err)
	require.Equal(t, "Regional Sales Lead", role.Name)
	require.Equal(t, "#2563eb", role.Color)

	page, err := registry.ListRoles(ctx, types.RoleFilter{
		Scope:      scope,
		Pagination: types.Pagination{Limit: 10},
	})
	require.NoError(t, err)
	require.Len(t, page.Roles, 1)
	require.Equal(t, role.ID, page.Roles[0].ID)

	otherScope := types.ScopeFilter{TenantID: uuid.New()}
	page, err = registry.ListRoles(ctx, types.RoleFilter{Scope: otherScope})
	require.NoError(t, err)
	require.Empty(t, page.Roles, "roles stay invisible outside their scope")

	require.NoError(t, registry.DeleteRole(ctx, role.ID, scope, actor))
	require.Len(t, events, 2, "create + delete should emit events")
	require.Equal(t, "role.deleted", events[1].Action)
}

func TestBunRoleRegistry_UpdateRole(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyTestMigration(t, db, rbacSchemaDDL)

	registry, err := NewRoleRegistry(RoleRegistryConfig{DB: db})
	require.NoError(t, err)

	scope := types.ScopeFilter{TenantID: uuid.New(), OrgID: uuid.New()}
	actor := uuid.New()
	role, err := registry.CreateRole(ctx, types.RoleMutation{
		Name:        "Auditor",
		Permissions: []string{"finance:read"},
		Scope:       scope,
		ActorID:     actor,
	})
	require.NoError(t, err)

	updated, err := registry.UpdateRole(ctx, role.ID, types.RoleMutation{
		Name:        "Senior Auditor",
		Permissions: []string{"finance:read", "crm:read"},
		Scope:       scope,
		ActorID:     actor,
	})
	require.NoError(t, err)
	require.Equal(t, "Senior Auditor", updated.Name)
	require.ElementsMatch(t, []string{"finance:read", "crm:read"}, updated.Permissions)
}

func TestBunRoleRegistry_SystemRolesProtected(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyTestMigration(t, db, rbacSchemaDDL)

	registry, err := NewRoleRegistry(RoleRegistryConfig{DB: db})
	require.NoError(t, err)

	scope := types.ScopeFilter{TenantID: uuid.New()}
	role, err := registry.CreateRole(ctx, types.RoleMutation{
		Name:        "Builtin",
		Permissions: []string{"settings:read"},
		IsSystem:    true,
		Scope:       scope,
		ActorID:     uuid.New(),
	})
	require.NoError(t, err)

	err = registry.DeleteRole(ctx, role.ID, scope, uuid.New())
	require.Error(t, err)
}

func TestBunRoleRegistry_Memberships(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyTestMigration(t, db, rbacSchemaDDL)

	var events []types.MembershipEvent
	registry, err := NewRoleRegistry(RoleRegistryConfig{
		DB: db,
		Hooks: types.Hooks{
			AfterMembershipChange: func(_ context.Context, evt types.MembershipEvent) {
				events = append(events, evt)
			},
		},
	})
	require.NoError(t, err)

	scope := types.ScopeFilter{TenantID: uuid.New()}
	userID := uuid.New()
	actor := uuid.New()

	membership, err := registry.SetMembership(ctx, types.MembershipMutation{
		UserID:  userID,
		Role:    types.RoleEmployee,
		Scope:   scope,
		ActorID: actor,
	})
	require.NoError(t, err)
	require.Equal(t, types.RoleEmployee, membership.Role)
	require.False(t, membership.HasCustomRole())

	// a second set replaces the role instead of adding a row
	membership, err = registry.SetMembership(ctx, types.MembershipMutation{
		UserID:  userID,
		Role:    types.RoleDepartmentManager,
		Scope:   scope,
		ActorID: actor,
	})
	require.NoError(t, err)
	require.Equal(t, types.RoleDepartmentManager, membership.Role)

	memberships, err := registry.ListMemberships(ctx, types.MembershipFilter{Scope: scope})
	require.NoError(t, err)
	require.Len(t, memberships, 1)

	got, err := registry.GetMembership(ctx, userID, scope)
	require.NoError(t, err)
	require.Equal(t, types.RoleDepartmentManager, got.Role)

	require.NoError(t, registry.ClearMembership(ctx, userID, scope, actor))
	_, err = registry.GetMembership(ctx, userID, scope)
	require.ErrorIs(t, err, types.ErrMembershipNotFound)

	require.NoError(t, registry.ClearMembership(ctx, userID, scope, actor), "clearing twice is a no-op")
	require.Len(t, events, 3, "assign + update + clear should emit events")
}

func TestBunRoleRegistry_MembershipValidation(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyTestMigration(t, db, rbacSchemaDDL)

	registry, err := NewRoleRegistry(RoleRegistryConfig{DB: db})
	require.NoError(t, err)

	scope := types.ScopeFilter{TenantID: uuid.New()}

	_, err = registry.SetMembership(ctx, types.MembershipMutation{
		UserID: uuid.New(),
		Scope:  scope,
	})
	require.ErrorIs(t, err, types.ErrAmbiguousAuthority, "no authority source")

	role, err := registry.CreateRole(ctx, types.RoleMutation{
		Name:        "Scoped",
		Permissions: []string{"crm:read"},
		Scope:       scope,
		ActorID:     uuid.New(),
	})
	require.NoError(t, err)

	_, err = registry.SetMembership(ctx, types.MembershipMutation{
		UserID:       uuid.New(),
		Role:         types.RoleViewer,
		CustomRoleID: role.ID,
		Scope:        scope,
	})
	require.ErrorIs(t, err, types.ErrAmbiguousAuthority, "two authority sources")

	_, err = registry.SetMembership(ctx, types.MembershipMutation{
		UserID:       uuid.New(),
		CustomRoleID: uuid.New(),
		Scope:        scope,
	})
	require.Error(t, err, "custom role must exist in the scope")
}

func TestBunRoleRegistry_DeleteRoleClearsMemberships(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyTestMigration(t, db, rbacSchemaDDL)

	registry, err := NewRoleRegistry(RoleRegistryConfig{DB: db})
	require.NoError(t, err)

	scope := types.ScopeFilter{TenantID: uuid.New()}
	actor := uuid.New()
	role, err := registry.CreateRole(ctx, types.RoleMutation{
		Name:        "Temp",
		Permissions: []string{"projects:read"},
		Scope:       scope,
		ActorID:     actor,
	})
	require.NoError(t, err)

	userID := uuid.New()
	_, err = registry.SetMembership(ctx, types.MembershipMutation{
		UserID:       userID,
		CustomRoleID: role.ID,
		Scope:        scope,
		ActorID:      actor,
	})
	require.NoError(t, err)

	require.NoError(t, registry.DeleteRole(ctx, role.ID, scope, actor))

	_, err = registry.GetMembership(ctx, userID, scope)
	require.ErrorIs(t, err, types.ErrMembershipNotFound)
}

func TestAuthorityResolver_ResolvesMemberships(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyTestMigration(t, db, rbacSchemaDDL)

	registry, err := NewRoleRegistry(RoleRegistryConfig{DB: db})
	require.NoError(t, err)
	resolver := NewAuthorityResolver(registry)

	scope := types.ScopeFilter{TenantID: uuid.New()}
	actorID := uuid.New()

	authority, err := resolver.ResolveAuthority(ctx, types.ActorRef{ID: actorID}, scope)
	require.NoError(t, err)
	require.True(t, authority.IsZero(), "no membership means no authority")

	_, err = registry.SetMembership(ctx, types.MembershipMutation{
		UserID:  actorID,
		Role:    types.RoleFinanceManager,
		Scope:   scope,
		ActorID: uuid.New(),
	})
	require.NoError(t, err)

	authority, err = resolver.ResolveAuthority(ctx, types.ActorRef{ID: actorID}, scope)
	require.NoError(t, err)
	require.True(t, authority.IsPredefined())
	require.Equal(t, types.RoleFinanceManager, authority.Role)

	role, err := registry.CreateRole(ctx, types.RoleMutation{
		Name:        "Support",
		Permissions: []string{"crm:read", "collaboration:write"},
		Scope:       scope,
		ActorID:     uuid.New(),
	})
	require.NoError(t, err)

	_, err = registry.SetMembership(ctx, types.MembershipMutation{
		UserID:       actorID,
		CustomRoleID: role.ID,
		Scope:        scope,
		ActorID:      uuid.New(),
	})
	require.NoError(t, err)

	authority, err = resolver.ResolveAuthority(ctx, types.ActorRef{ID: actorID}, scope)
	require.NoError(t, err)
	require.True(t, authority.IsCustom())
	require.ElementsMatch(t, []string{"crm:read", "collaboration:write"}, authority.Permissions)
}

func newTestDB(t *testing.T) *bun.DB {
	sqldb, err := sql.Open("sqlite3", ":memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
		_ = sqldb.Close()
	})
	return db
}

func applyTestMigration(t *testing.T, db *bun.DB, ddl string) {
	statements := splitSQLStatements(ddl)
	for _, stmt := range statements {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		_, err := db.Exec(stmt)
		require.NoError(t, err, "executing statement %q", stmt)
	}
}

func splitSQLStatements(sql string) []string {
	lines := strings.Split(sql, "\n")
	var builder strings.Builder
	var statements []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		builder.WriteString(line)
		if strings.HasSuffix(line, ";") {
			stmt := strings.TrimSpace(builder.String())
			stmt = strings.TrimSuffix(stmt, ";")
			statements = append(statements, stmt)
			builder.Reset()
		} else {
			builder.WriteString(" ")
		}
	}
	if builder.Len() > 0 {
		statements = append(statements, strings.TrimSpace(builder.String()))
	}
	return statements
}

type fixedClock struct {
	t time.Time
}

func (f fixedClock) Now() time.Time {
	return f.t
}

const rbacSchemaDDL = `
CREATE TABLE custom_roles (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    color TEXT,
    permissions JSONB NOT NULL DEFAULT '[]',
    is_system BOOLEAN NOT NULL DEFAULT FALSE,
    tenant_id UUID NOT NULL DEFAULT '00000000-0000-0000-0000-000000000000',
    org_id UUID NOT NULL DEFAULT '00000000-0000-0000-0000-000000000000',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    created_by UUID NOT NULL,
    updated_by UUID NOT NULL
);
CREATE UNIQUE INDEX custom_roles_scope_name_idx ON custom_roles (tenant_id, org_id, lower(name));
CREATE TABLE org_memberships (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL,
    tenant_id UUID NOT NULL DEFAULT '00000000-0000-0000-0000-000000000000',
    org_id UUID NOT NULL DEFAULT '00000000-0000-0000-0000-000000000000',
    role TEXT,
    custom_role_id UUID NOT NULL DEFAULT '00000000-0000-0000-0000-000000000000',
    assigned_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    assigned_by UUID NOT NULL,
    UNIQUE (user_id, tenant_id, org_id)
);
`
