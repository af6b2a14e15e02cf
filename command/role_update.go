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

// UpdateRoleInput captures mutable role fields.
type UpdateRoleInput struct {
	RoleID      uuid.UUID
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
func (UpdateRoleInput) Type() string {
	return "command.role.update"
}

// Validate implements gocommand.Message.
func (input UpdateRoleInput) Validate() error {
	if err := validateRoleTarget(input.RoleID, input.Actor); err != nil {
		return err
	}
	if strings.TrimSpace(input.Name) == "" {
		return ErrRoleNameRequired
	}
	return nil
}

// UpdateRoleCommand updates custom roles. Permission changes re-run the full
// delegation validation; renames alone do not.
type UpdateRoleCommand struct {
	registry    types.RoleRegistry
	guard       scope.Guard
	featureGate featuregate.FeatureGate
	sink        types.AuditSink
	hooks       types.Hooks
	clock       types.Clock
}

// NewUpdateRoleCommand constructs the command handler.
func NewUpdateRoleCommand(cfg RoleCommandConfig) *UpdateRoleCommand {
	return &UpdateRoleCommand{
		registry:    cfg.Registry,
		guard:       safeScopeGuard(cfg.ScopeGuard),
		featureGate: cfg.FeatureGate,
		sink:        safeAuditSink(cfg.Audit),
		hooks:       safeHooks(cfg.Hooks),
		clock:       safeClock(cfg.Clock),
	}
}

var _ gocommand.Commander[UpdateRoleInput] = (*UpdateRoleCommand)(nil)

// Execute forwards the update payload to the registry.
func (c *UpdateRoleCommand) Execute(ctx context.Context, input UpdateRoleInput) error {
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
	enforced, err := c.guard.Enforce(ctx, input.Actor, input.Scope, types.PolicyActionRolesWrite, input.RoleID)
	if err != nil {
		return err
	}
	if input.Permissions != nil {
		if err := checkGrantAuthority(enforced.Authority, input.Permissions); err != nil {
			return err
		}
	}
	role, err := c.registry.UpdateRole(ctx, input.RoleID, types.RoleMutation{
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
	record := types.AuditRecord{
		ActorID:    input.Actor.ID,
		SubjectID:  role.ID,
		Verb:       "role.updated",
		Decision:   "allow",
		TenantID:   enforced.Scope.TenantID,
		OrgID:      enforced.Scope.OrgID,
		Data:       map[string]any{"name": role.Name},
		OccurredAt: now(c.clock),
	}
	logAudit(ctx, c.sink, record)
	emitAuditHook(ctx, c.hooks, record)
	if input.Result != nil && role != nil {
		*input.Result = *role
	}
	return nil
}
