package types

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ScopeFilter carries tenant/org scoping fields used by commands/queries.
type ScopeFilter struct {
	TenantID uuid.UUID
	OrgID    uuid.UUID
	Labels   map[string]uuid.UUID
}

// Clone returns a copy of the scope filter with labels detached from the
// original map reference so callers can mutate safely.
func (s ScopeFilter) Clone() ScopeFilter {
	clone := ScopeFilter{
		TenantID: s.TenantID,
		OrgID:    s.OrgID,
	}
	if len(s.Labels) > 0 {
		clone.Labels = make(map[string]uuid.UUID, len(s.Labels))
		for k, v := range s.Labels {
			clone.Labels[k] = v
		}
	}
	return clone
}

// WithLabel returns a cloned scope filter with the provided label set. Keys are
// normalized to lower-case so lookups stay consistent across transports.
func (s ScopeFilter) WithLabel(key string, id uuid.UUID) ScopeFilter {
	if strings.TrimSpace(key) == "" || id == uuid.Nil {
		return s
	}
	clone := s.Clone()
	if clone.Labels == nil {
		clone.Labels = make(map[string]uuid.UUID)
	}
	clone.Labels[strings.ToLower(key)] = id
	return clone
}

// Label returns the identifier previously stored under the key (case
// insensitive). When the label has not been set, uuid.Nil is returned.
func (s ScopeFilter) Label(key string) uuid.UUID {
	if len(s.Labels) == 0 {
		return uuid.Nil
	}
	return s.Labels[strings.ToLower(strings.TrimSpace(key))]
}

// ActorRef identifies who or what is initiating a command or query. Type
// carries the predefined role name when the actor holds one.
type ActorRef struct {
	ID   uuid.UUID
	Type string
}

// Pagination supports query pagination across admin panels.
type Pagination struct {
	Limit  int
	Offset int
}

// RoleEvent is emitted when a custom role definition changes.
type RoleEvent struct {
	RoleID     uuid.UUID
	Action     string
	ActorID    uuid.UUID
	Scope      ScopeFilter
	OccurredAt time.Time
	Role       RoleDefinition
}

// MembershipEvent is emitted when a user-organization assignment changes.
type MembershipEvent struct {
	UserID     uuid.UUID
	Role       Role
	RoleID     uuid.UUID
	Action     string
	ActorID    uuid.UUID
	Scope      ScopeFilter
	OccurredAt time.Time
}

// Hooks groups optional callbacks invoked after key workflows complete.
type Hooks struct {
	AfterRoleChange       func(context.Context, RoleEvent)
	AfterMembershipChange func(context.Context, MembershipEvent)
	AfterAudit            func(context.Context, AuditRecord)
}

// AuditRecord describes one entry in the authorization audit trail. Verb uses
// dotted notation (role.created, membership.assigned, permission.denied).
type AuditRecord struct {
	ID         uuid.UUID
	ActorID    uuid.UUID
	SubjectID  uuid.UUID
	Verb       string
	Decision   string
	Permission string
	TenantID   uuid.UUID
	OrgID      uuid.UUID
	Data       map[string]any
	OccurredAt time.Time
}

// AuditSink is the minimal DI contract for emitting audit entries. Keep it
// stable and limited to Log so hosts can swap sinks without breaking changes.
type AuditSink interface {
	Log(context.Context, AuditRecord) error
}

// AuditRepository exposes read-side access to the audit trail.
type AuditRepository interface {
	ListAudit(ctx context.Context, filter AuditFilter) (AuditPage, error)
}

// AuditFilter narrows audit trail queries.
type AuditFilter struct {
	Actor      ActorRef
	Scope      ScopeFilter
	SubjectID  uuid.UUID
	ActorID    uuid.UUID
	Verbs      []string
	Decision   string
	Since      *time.Time
	Until      *time.Time
	Pagination Pagination
}

// Type implements gocommand.Message for query inputs.
func (AuditFilter) Type() string {
	return "query.audit.trail"
}

// Validate implements gocommand.Message.
func (filter AuditFilter) Validate() error {
	if filter.Actor.ID == uuid.Nil {
		return ErrActorRequired
	}
	return nil
}

// AuditPage represents a paginated audit feed response.
type AuditPage struct {
	Records    []AuditRecord
	Total      int
	NextOffset int
	HasMore    bool
}

// RoleRegistry describes custom role CRUD plus membership management.
type RoleRegistry interface {
	CreateRole(ctx context.Context, input RoleMutation) (*RoleDefinition, error)
	UpdateRole(ctx context.Context, id uuid.UUID, input RoleMutation) (*RoleDefinition, error)
	DeleteRole(ctx context.Context, id uuid.UUID, scope ScopeFilter, actor uuid.UUID) error
	ListRoles(ctx context.Context, filter RoleFilter) (RolePage, error)
	GetRole(ctx context.Context, id uuid.UUID, scope ScopeFilter) (*RoleDefinition, error)
	MembershipRepository
}

// MembershipRepository persists user-organization assignments. Each user holds
// at most one membership per tenant/org pair.
type MembershipRepository interface {
	SetMembership(ctx context.Context, input MembershipMutation) (*Membership, error)
	ClearMembership(ctx context.Context, userID uuid.UUID, scope ScopeFilter, actor uuid.UUID) error
	GetMembership(ctx context.Context, userID uuid.UUID, scope ScopeFilter) (*Membership, error)
	ListMemberships(ctx context.Context, filter MembershipFilter) ([]Membership, error)
}

// AuthorityResolver resolves the effective authority an actor carries inside
// a scope. Implementations must be safe for concurrent use.
type AuthorityResolver interface {
	ResolveAuthority(ctx context.Context, actor ActorRef, scope ScopeFilter) (Authority, error)
}

// AuthorityResolverFunc adapts bare functions to AuthorityResolver.
type AuthorityResolverFunc func(ctx context.Context, actor ActorRef, scope ScopeFilter) (Authority, error)

// ResolveAuthority implements AuthorityResolver.
func (f AuthorityResolverFunc) ResolveAuthority(ctx context.Context, actor ActorRef, scope ScopeFilter) (Authority, error) {
	return f(ctx, actor, scope)
}

// Clock abstracts time retrieval for deterministic testing.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID creation.
type IDGenerator interface {
	UUID() uuid.UUID
}

// Logger captures basic logging hooks used by the service.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Error(msg string, err error, fields ...any)
}

// RoleMutation describes create/update payloads for custom roles.
type RoleMutation struct {
	Name        string
	Description string
	Color       string
	Permissions []string
	IsSystem    bool
	Scope       ScopeFilter
	ActorID     uuid.UUID
}

// RoleDefinition mirrors the persisted custom role data returned by the
// registry.
type RoleDefinition struct {
	ID          uuid.UUID
	Name        string
	Description string
	Color       string
	Permissions []string
	IsSystem    bool
	Scope       ScopeFilter
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CreatedBy   uuid.UUID
	UpdatedBy   uuid.UUID
}

// RoleFilter narrows custom role listings.
type RoleFilter struct {
	Actor         ActorRef
	Scope         ScopeFilter
	Keyword       string
	IncludeSystem bool
	RoleIDs       []uuid.UUID
	Pagination    Pagination
}

// Type implements gocommand.Message for query inputs.
func (RoleFilter) Type() string {
	return "query.role.list"
}

// Validate implements gocommand.Message.
func (filter RoleFilter) Validate() error {
	if filter.Actor.ID == uuid.Nil {
		return ErrActorRequired
	}
	return nil
}

// RolePage represents a paginated set of custom roles.
type RolePage struct {
	Roles      []RoleDefinition
	Total      int
	NextOffset int
	HasMore    bool
}

// Membership binds a user, within one tenant/org, to exactly one authority
// source: a predefined role or a custom role. CustomRoleID wins when set.
type Membership struct {
	UserID       uuid.UUID
	Scope        ScopeFilter
	Role         Role
	CustomRoleID uuid.UUID
	AssignedAt   time.Time
	AssignedBy   uuid.UUID
}

// HasCustomRole reports whether the membership is governed by a custom role.
func (m Membership) HasCustomRole() bool {
	return m.CustomRoleID != uuid.Nil
}

// MembershipMutation describes assign payloads for memberships.
type MembershipMutation struct {
	UserID       uuid.UUID
	Role         Role
	CustomRoleID uuid.UUID
	Scope        ScopeFilter
	ActorID      uuid.UUID
}

// MembershipFilter filters membership queries.
type MembershipFilter struct {
	Actor   ActorRef
	Scope   ScopeFilter
	UserID  uuid.UUID
	Role    Role
	RoleID  uuid.UUID
	UserIDs []uuid.UUID
}

// Type implements gocommand.Message for query inputs.
func (MembershipFilter) Type() string {
	return "query.membership.list"
}

// Validate implements gocommand.Message.
func (filter MembershipFilter) Validate() error {
	if filter.Actor.ID == uuid.Nil {
		return ErrActorRequired
	}
	return nil
}

// SystemClock defers to time.Now for production usage.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator produces UUIDv4 identifiers.
type UUIDGenerator struct{}

// UUID returns a randomly generated UUID.
func (UUIDGenerator) UUID() uuid.UUID { return uuid.New() }

// NopLogger discards all log lines.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NopLogger) Info(string, ...any) {}

// Error implements Logger.
func (NopLogger) Error(string, error, ...any) {}

var (
	// ErrActorRequired indicates an actor reference was not supplied.
	ErrActorRequired = errors.New("go-rbac: actor reference required")
	// ErrUserIDRequired indicates a user identifier was omitted.
	ErrUserIDRequired = errors.New("go-rbac: user id required")
	// ErrServiceNotReady indicates the service has not been properly configured.
	ErrServiceNotReady = errors.New("go-rbac: service not ready")
	// ErrMissingRoleRegistry occurs when no role registry was supplied.
	ErrMissingRoleRegistry = errors.New("go-rbac: missing role registry")
	// ErrMissingMembershipRepository occurs when membership flows lack storage.
	ErrMissingMembershipRepository = errors.New("go-rbac: missing membership repository")
	// ErrMissingAuthorityResolver occurs when no authority resolver was supplied.
	ErrMissingAuthorityResolver = errors.New("go-rbac: missing authority resolver")
	// ErrMissingAuditSink occurs when no audit sink was supplied.
	ErrMissingAuditSink = errors.New("go-rbac: missing audit sink")
	// ErrMissingAuditRepository occurs when no audit repository was supplied.
	ErrMissingAuditRepository = errors.New("go-rbac: missing audit repository")
	// ErrMembershipNotFound indicates the user holds no membership in the scope.
	ErrMembershipNotFound = errors.New("go-rbac: membership not found")
	// ErrAmbiguousAuthority indicates a membership mutation supplied both a
	// predefined role and a custom role, or neither.
	ErrAmbiguousAuthority = errors.New("go-rbac: membership requires exactly one of role or custom role")
)
