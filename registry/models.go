package registry

import (
	"time"

	"github.com/goliatone/go-rbac/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CustomRole represents the schema stored in custom_roles.
type CustomRole struct {
	bun.BaseModel `bun:"table:custom_roles"`

	ID          uuid.UUID `bun:",pk,type:uuid"`
	Name        string    `bun:"name,notnull"`
	Description string    `bun:"description"`
	Color       string    `bun:"color"`
	Permissions []string  `bun:"permissions,type:jsonb"`
	IsSystem    bool      `bun:"is_system,notnull"`
	TenantID    uuid.UUID `bun:"tenant_id,type:uuid,notnull,default:'00000000-0000-0000-0000-000000000000'"`
	OrgID       uuid.UUID `bun:"org_id,type:uuid,notnull,default:'00000000-0000-0000-0000-000000000000'"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
	CreatedBy   uuid.UUID `bun:"created_by,type:uuid,notnull"`
	UpdatedBy   uuid.UUID `bun:"updated_by,type:uuid,notnull"`
}

// Membership represents rows from org_memberships. A unique index on
// (user_id, tenant_id, org_id) keeps each user at one membership per scope.
// Role holds the predefined role name; CustomRoleID points at custom_roles
// when the membership is governed by a custom role instead.
type Membership struct {
	bun.BaseModel `bun:"table:org_memberships"`

	ID           uuid.UUID `bun:",pk,type:uuid"`
	UserID       uuid.UUID `bun:"user_id,type:uuid,notnull"`
	TenantID     uuid.UUID `bun:"tenant_id,type:uuid,notnull,default:'00000000-0000-0000-0000-000000000000'"`
	OrgID        uuid.UUID `bun:"org_id,type:uuid,notnull,default:'00000000-0000-0000-0000-000000000000'"`
	Role         string    `bun:"role"`
	CustomRoleID uuid.UUID `bun:"custom_role_id,type:uuid,default:'00000000-0000-0000-0000-000000000000'"`
	AssignedAt   time.Time `bun:"assigned_at,notnull"`
	AssignedBy   uuid.UUID `bun:"assigned_by,type:uuid,notnull"`
}

// DefinitionToCustomRole converts the domain view back into the storage model.
// CRUD transports use it to round-trip records through the command layer.
func DefinitionToCustomRole(def *types.RoleDefinition) *CustomRole {
	if def == nil {
		return nil
	}
	return &CustomRole{
		ID:          def.ID,
		Name:        def.Name,
		Description: def.Description,
		Color:       def.Color,
		Permissions: append([]string{}, def.Permissions...),
		IsSystem:    def.IsSystem,
		TenantID:    def.Scope.TenantID,
		OrgID:       def.Scope.OrgID,
		CreatedAt:   def.CreatedAt,
		UpdatedAt:   def.UpdatedAt,
		CreatedBy:   def.CreatedBy,
		UpdatedBy:   def.UpdatedBy,
	}
}

// MembershipToModel converts the domain membership into the storage model
// shape used by CRUD transports. The surrogate row ID is not recoverable from
// the domain view and is left zero.
func MembershipToModel(m *types.Membership) *Membership {
	if m == nil {
		return nil
	}
	return &Membership{
		UserID:       m.UserID,
		TenantID:     m.Scope.TenantID,
		OrgID:        m.Scope.OrgID,
		Role:         string(m.Role),
		CustomRoleID: m.CustomRoleID,
		AssignedAt:   m.AssignedAt,
		AssignedBy:   m.AssignedBy,
	}
}
