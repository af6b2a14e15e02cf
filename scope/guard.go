package scope

import (
	"context"

	"github.com/goliatone/go-rbac/pkg/types"
	"github.com/google/uuid"
)

// Enforcement is the outcome of a successful guard check: the canonical
// scope the operation should run under and the actor's resolved authority,
// so command handlers do not resolve it a second time.
type Enforcement struct {
	Scope     types.ScopeFilter
	Authority types.Authority
}

// Guard enforces resolved scopes, actor authority, and authorization
// policies for commands and queries. It is intentionally small so callers
// can swap custom guards in tests if needed.
type Guard interface {
	Enforce(ctx context.Context, actor types.ActorRef, requested types.ScopeFilter, action types.PolicyAction, target uuid.UUID) (Enforcement, error)
}

type guard struct {
	scopes    types.ScopeResolver
	authority types.AuthorityResolver
	policy    types.AuthorizationPolicy
}

// GuardConfig wires the optional guard dependencies. Nil fields are treated
// as no-ops: a nil scope resolver passes the requested scope through, a nil
// authority resolver yields the zero authority, a nil policy never blocks.
type GuardConfig struct {
	ScopeResolver       types.ScopeResolver
	AuthorityResolver   types.AuthorityResolver
	AuthorizationPolicy types.AuthorizationPolicy
}

// NewGuard builds a Guard from the supplied configuration.
func NewGuard(cfg GuardConfig) Guard {
	return guard{
		scopes:    cfg.ScopeResolver,
		authority: cfg.AuthorityResolver,
		policy:    cfg.AuthorizationPolicy,
	}
}

// Ensure returns a non-nil guard so command/query constructors can accept nil
// guards when tests instantiate them directly.
func Ensure(g Guard) Guard {
	if g == nil {
		return guard{}
	}
	return g
}

// NopGuard returns a guard that leaves scopes unchanged and never blocks.
func NopGuard() Guard {
	return guard{}
}

// Enforce resolves the scope and authority, then authorizes the action.
func (g guard) Enforce(ctx context.Context, actor types.ActorRef, requested types.ScopeFilter, action types.PolicyAction, target uuid.UUID) (Enforcement, error) {
	scope := requested
	if g.scopes != nil {
		resolved, err := g.scopes.ResolveScope(ctx, actor, requested)
		if err != nil {
			return Enforcement{}, err
		}
		scope = resolved
	}

	var authority types.Authority
	if g.authority != nil {
		resolved, err := g.authority.ResolveAuthority(ctx, actor, scope)
		if err != nil {
			return Enforcement{}, err
		}
		authority = resolved
	}

	if g.policy != nil && action != "" {
		check := types.PolicyCheck{
			Actor:     actor,
			Scope:     scope,
			Action:    action,
			TargetID:  target,
			Authority: authority,
		}
		if err := g.policy.Authorize(ctx, check); err != nil {
			return Enforcement{}, err
		}
	}
	return Enforcement{Scope: scope, Authority: authority}, nil
}
