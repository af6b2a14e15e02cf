package validation

import (
	"github.com/goliatone/go-auth/middleware/jwtware"
	"github.com/goliatone/go-rbac/pkg/authctx"
	"github.com/goliatone/go-rbac/pkg/types"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// ListenerOptions customize the validation listener behaviour.
type ListenerOptions struct {
	AuditSink types.AuditSink
	Logger    types.Logger
}

// NewListener returns a jwtware.ValidationListener that records an audit entry
// whenever a token is validated, giving the audit trail a login-adjacent
// signal next to the permission decisions.
func NewListener(opts ListenerOptions) jwtware.ValidationListener {
	logger := opts.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	return func(ctx router.Context, claims jwtware.AuthClaims) error {
		actorCtx, err := authctx.ResolveActorContextFromRouter(ctx)
		if err != nil {
			logger.Error("validation listener failed to resolve actor", err)
			return nil
		}
		if opts.AuditSink != nil {
			record := types.AuditRecord{
				ActorID:  parseUUID(actorCtx.ActorID),
				Verb:     "auth.validated",
				Decision: "allow",
				TenantID: parseUUID(actorCtx.TenantID),
				OrgID:    parseUUID(actorCtx.OrganizationID),
				Data: map[string]any{
					"role":    actorCtx.Role,
					"subject": claims.Subject(),
				},
			}
			if err := opts.AuditSink.Log(ctx.Context(), record); err != nil {
				logger.Error("validation audit sink failed", err)
			}
		}
		return nil
	}
}

func parseUUID(value string) uuid.UUID {
	if value == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil
	}
	return id
}
