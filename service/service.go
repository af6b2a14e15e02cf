package service

import (
	"context"

	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-rbac/command"
	"github.com/goliatone/go-rbac/pkg/types"
	"github.com/goliatone/go-rbac/query"
	"github.com/goliatone/go-rbac/registry"
	"github.com/goliatone/go-rbac/scope"
)

// Service is the entry point for go-rbac. It wires the role registry,
// authority resolver, audit trail, hooks, and command/query facades supplied
// by the host application.
type Service struct {
	cfg        Config
	commands   Commands
	queries    Queries
	resolver   types.AuthorityResolver
	auditRepo  types.AuditRepository
	scopeGuard scope.Guard
}

// Commands exposes the service command handlers.
type Commands struct {
	CreateRole       *command.CreateRoleCommand
	UpdateRole       *command.UpdateRoleCommand
	DeleteRole       *command.DeleteRoleCommand
	AssignMembership *command.AssignMembershipCommand
	ClearMembership  *command.ClearMembershipCommand
}

// Queries exposes read-model helpers.
type Queries struct {
	RoleList             *query.RoleListQuery
	RoleDetail           *query.RoleDetailQuery
	AssignableRoles      *query.AssignableRolesQuery
	Memberships          *query.MembershipsQuery
	EffectivePermissions *query.EffectivePermissionsQuery
	PermissionCheck      *query.PermissionCheckQuery
	AuditTrail           *query.AuditTrailQuery
}

// Config captures all required dependencies so callers can provide their own
// instances (bun.DB registries, cached repositories, hooks, etc.).
type Config struct {
	RoleRegistry        types.RoleRegistry
	AuthorityResolver   types.AuthorityResolver
	AuditSink           types.AuditSink
	AuditRepository     types.AuditRepository
	Hooks               types.Hooks
	Clock               types.Clock
	IDGenerator         types.IDGenerator
	Logger              types.Logger
	FeatureGate         featuregate.FeatureGate
	ScopeResolver       types.ScopeResolver
	AuthorizationPolicy types.AuthorizationPolicy
}

// New constructs a Service from the supplied configuration.
func New(cfg Config) *Service {
	norm := normalizeConfig(cfg)

	resolver := norm.AuthorityResolver
	if resolver == nil && norm.RoleRegistry != nil {
		resolver = registry.NewAuthorityResolver(norm.RoleRegistry)
	}

	auditRepo := norm.AuditRepository
	if auditRepo == nil {
		if sinkRepo, ok := norm.AuditSink.(types.AuditRepository); ok {
			auditRepo = sinkRepo
		}
	}

	policy := norm.AuthorizationPolicy
	if policy == nil {
		policy = scope.NewPermissionPolicy(resolver)
	}

	scopeGuard := scope.Ensure(scope.NewGuard(scope.GuardConfig{
		ScopeResolver:       norm.ScopeResolver,
		AuthorityResolver:   resolver,
		AuthorizationPolicy: policy,
	}))

	s := &Service{
		cfg:        norm,
		resolver:   resolver,
		auditRepo:  auditRepo,
		scopeGuard: scopeGuard,
	}
	s.commands = s.buildCommands()
	s.queries = s.buildQueries()
	return s
}

func normalizeConfig(cfg Config) Config {
	if cfg.Clock == nil {
		cfg.Clock = types.SystemClock{}
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = types.UUIDGenerator{}
	}
	if cfg.Logger == nil {
		cfg.Logger = types.NopLogger{}
	}
	return cfg
}

// Commands returns the command facade.
func (s *Service) Commands() Commands {
	return s.commands
}

// Queries returns the query facade.
func (s *Service) Queries() Queries {
	return s.queries
}

// Ready reports whether the service has the required dependencies wired in.
func (s *Service) Ready() bool {
	return s != nil &&
		s.cfg.RoleRegistry != nil &&
		s.resolver != nil &&
		s.cfg.AuditSink != nil &&
		s.auditRepo != nil
}

// HealthCheck exercises the registered dependencies to ensure the service can
// be used by upstream transports (REST/gRPC/jobs). Future implementations will
// ping the repositories/hooks; for now we just surface missing config.
func (s *Service) HealthCheck(ctx context.Context) error {
	if !s.Ready() {
		return types.ErrServiceNotReady
	}
	if s.cfg.RoleRegistry == nil {
		return types.ErrMissingRoleRegistry
	}
	if s.resolver == nil {
		return types.ErrMissingAuthorityResolver
	}
	if s.cfg.AuditSink == nil {
		return types.ErrMissingAuditSink
	}
	if s.auditRepo == nil {
		return types.ErrMissingAuditRepository
	}
	return nil
}

// ScopeGuard exposes the guard instance used internally so transports can
// reuse the same resolver/policy combination for HTTP adapters.
func (s *Service) ScopeGuard() scope.Guard {
	if s == nil {
		return scope.NopGuard()
	}
	return scope.Ensure(s.scopeGuard)
}

// AuthorityResolver returns the effective resolver so transports can make
// inline permission decisions without going through the query facade.
func (s *Service) AuthorityResolver() types.AuthorityResolver {
	if s == nil {
		return nil
	}
	return s.resolver
}

// AuditSink returns the configured sink so transports can emit audit records
// for auxiliary workflows.
func (s *Service) AuditSink() types.AuditSink {
	if s == nil {
		return nil
	}
	return s.cfg.AuditSink
}

func (s *Service) buildCommands() Commands {
	roleCfg := command.RoleCommandConfig{
		Registry:    s.cfg.RoleRegistry,
		ScopeGuard:  s.scopeGuard,
		FeatureGate: s.cfg.FeatureGate,
		Audit:       s.cfg.AuditSink,
		Hooks:       s.cfg.Hooks,
		Clock:       s.cfg.Clock,
	}
	membershipCfg := command.MembershipCommandConfig{
		Registry:   s.cfg.RoleRegistry,
		ScopeGuard: s.scopeGuard,
		Audit:      s.cfg.AuditSink,
		Hooks:      s.cfg.Hooks,
		Clock:      s.cfg.Clock,
	}
	return Commands{
		CreateRole:       command.NewCreateRoleCommand(roleCfg),
		UpdateRole:       command.NewUpdateRoleCommand(roleCfg),
		DeleteRole:       command.NewDeleteRoleCommand(roleCfg),
		AssignMembership: command.NewAssignMembershipCommand(membershipCfg),
		ClearMembership:  command.NewClearMembershipCommand(membershipCfg),
	}
}

func (s *Service) buildQueries() Queries {
	return Queries{
		RoleList:             query.NewRoleListQuery(s.cfg.RoleRegistry, s.scopeGuard),
		RoleDetail:           query.NewRoleDetailQuery(s.cfg.RoleRegistry, s.scopeGuard),
		AssignableRoles:      query.NewAssignableRolesQuery(s.resolver, s.scopeGuard),
		Memberships:          query.NewMembershipsQuery(s.cfg.RoleRegistry, s.scopeGuard),
		EffectivePermissions: query.NewEffectivePermissionsQuery(s.resolver, s.scopeGuard),
		PermissionCheck:      query.NewPermissionCheckQuery(s.resolver, s.scopeGuard),
		AuditTrail:           query.NewAuditTrailQuery(s.auditRepo, s.scopeGuard),
	}
}
