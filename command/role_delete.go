package command

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-rbac/pkg/types"
	"github.com/goliatone/go-rbac/scope"
	"github.com/google/uuid"
)

// DeleteRoleInput removes a custom role.
type DeleteRoleInput struct {
	RoleID uuid.UUID
	Scope  types.ScopeFilter
	Actor  types.ActorRef
}

// Type implements gocommand.Message.
func (DeleteRoleInput) Type() string {
	return "command.role.delete"
}

// Validate implements gocommand.Message.
func (input DeleteRoleInput) Validate() error {
	return validateRoleTarget(input.RoleID, input.Actor)
}

// DeleteRoleCommand deletes roles through the registry.
type DeleteRoleCommand struct {
	registry types.RoleRegistry
	guard    scope.Guard
	sink     types.AuditSink
	hooks    types.Hooks
	clock    types.Clock
}

// NewDeleteRoleCommand constructs the handler.
func NewDeleteRoleCommand(cfg RoleCommandConfig) *DeleteRoleCommand {
	return &DeleteRoleCommand{
		registry: cfg.Registry,
		guard:    safeScopeGuard(cfg.ScopeGuard),
		sink:     safeAuditSink(cfg.Audit),
		hooks:    safeHooks(cfg.Hooks),
		clock:    safeClock(cfg.Clock),
	}
}

var _ gocommand.Commander[DeleteRoleInput] = (*DeleteRoleCommand)(nil)

// Execute deletes the requested role after validation.
func (c *DeleteRoleCommand) Execute(ctx context.Context, input DeleteRoleInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	enforced, err := c.guard.Enforce(ctx, input.Actor, input.Scope, types.PolicyActionRolesWrite, input.RoleID)
	if err != nil {
		return err
	}
	if err := c.registry.DeleteRole(ctx, input.RoleID, enforced.Scope, input.Actor.ID); err != nil {
		return err
	}
	record := types.AuditRecord{
		ActorID:    input.Actor.ID,
		SubjectID:  input.RoleID,
		Verb:       "role.deleted",
		Decision:   "allow",
		TenantID:   enforced.Scope.TenantID,
		OrgID:      enforced.Scope.OrgID,
		OccurredAt: now(c.clock),
	}
	logAudit(ctx, c.sink, record)
	emitAuditHook(ctx, c.hooks, record)
	return nil
}
