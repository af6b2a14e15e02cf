package command

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-rbac/pkg/types"
	"github.com/goliatone/go-rbac/scope"
	"github.com/google/uuid"
)

// CreateRoleInput carries data for creating custom roles.
type CreateRoleInput struct {
	Name        string
	Description string
	Color       string
	Permissions []string
	IsSystem    bool
	Scope       types.ScopeFilter
	Actor       types.ActorRef
	Result      *types.RoleDefinition
}

// Type implements gocommand.Message.
func (CreateRoleInput) Type() string {
	return "command.role.create"
}

// Validate implements gocommand.Message.
func (input CreateRoleInput) Validate() error {
	return validateRoleMutation(input.Actor, input.Name)
}

// CreateRoleCommand validates delegation authority and forwards creation
// payloads to the role registry.
type CreateRoleCommand struct {
	registry    types.RoleRegistry
	guard       scope.Guard
	featureGate featuregate.FeatureGate
	sink        types.AuditSink
	hooks       types.Hooks
	clock       types.Clock
}

// RoleCommandConfig holds dependencies shared by the role command handlers.
type RoleCommandConfig struct {
	Registry    types.RoleRegistry
	ScopeGuard  scope.Guard
	FeatureGate featuregate.FeatureGate
	Audit       types.AuditSink
	Hooks       types.Hooks
	Clock       types.Clock
}

// NewCreateRoleCommand wires a role creation handler.
func NewCreateRoleCommand(cfg RoleCommandConfig) *CreateRoleCommand {
	return &CreateRoleCommand{
		registry:    cfg.Registry,
		guard:       safeScopeGuard(cfg.ScopeGuard),
		featureGate: cfg.FeatureGate,
		sink:        safeAuditSink(cfg.Audit),
		hooks:       safeHooks(cfg.Hooks),
		clock:       safeClock(cfg.Clock),
	}
}

var _ gocommand.Commander[CreateRoleInput] = (*CreateRoleCommand)(nil)

// Execute validates the grant authority and forwards the creation payload to
// the registry.
func (c *CreateRoleCommand) Execute(ctx context.Context, input CreateRoleInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	enabled, err := featureEnabled(ctx, c.featureGate, featureCustomRoles, input.Scope, input.Actor.ID)
	if err != nil {
		return err
	}
	if !enabled {
		return ErrCustomRolesDisabled
	}
	enforced, err := c.guard.Enforce(ctx, input.Actor, input.Scope, types.PolicyActionRolesWrite, uuid.Nil)
	if err != nil {
		return err
	}
	if err := checkGrantAuthority(enforced.Authority, input.Permissions); err != nil {
		c.audit(ctx, input, enforced.Scope, uuid.Nil, "deny")
		return err
	}
	role, err := c.registry.CreateRole(ctx, types.RoleMutation{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Color:       strings.TrimSpace(input.Color),
		Permissions: input.Permissions,
		IsSystem:    input.IsSystem,
		Scope:       enforced.Scope,
		ActorID:     input.Actor.ID,
	})
	if err != nil {
		return err
	}
	c.audit(ctx, input, enforced.Scope, role.ID, "allow")
	if input.Result != nil && role != nil {
		*input.Result = *role
	}
	return nil
}

func (c *CreateRoleCommand) audit(ctx context.Context, input CreateRoleInput, enforced types.ScopeFilter, roleID uuid.UUID, decision string) {
	record := types.AuditRecord{
		ActorID:    input.Actor.ID,
		SubjectID:  roleID,
		Verb:       "role.created",
		Decision:   decision,
		TenantID:   enforced.TenantID,
		OrgID:      enforced.OrgID,
		Data:       map[string]any{"name": input.Name, "permissions": input.Permissions},
		OccurredAt: now(c.clock),
	}
	logAudit(ctx, c.sink, record)
	emitAuditHook(ctx, c.hooks, record)
}
