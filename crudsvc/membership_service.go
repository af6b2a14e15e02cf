package crudsvc

import (
	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-crud"
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-rbac/command"
	"github.com/goliatone/go-rbac/crudguard"
	"github.com/goliatone/go-rbac/pkg/types"
	"github.com/goliatone/go-rbac/registry"
	"github.com/google/uuid"
)

// MembershipServiceConfig wires dependencies for the membership controller
// adapter.
type MembershipServiceConfig struct {
	Guard    GuardAdapter
	Assign   gocommand.Commander[command.AssignMembershipInput]
	Clear    gocommand.Commander[command.ClearMembershipInput]
	List     gocommand.Querier[types.MembershipFilter, []types.Membership]
	Registry types.MembershipRepository
}

// MembershipService adapts role assignment flows to the go-crud service
// interface. Creates and updates both resolve to the assign command since a
// user holds at most one membership per scope.
type MembershipService struct {
	guard    GuardAdapter
	assign   gocommand.Commander[command.AssignMembershipInput]
	clear    gocommand.Commander[command.ClearMembershipInput]
	list     gocommand.Querier[types.MembershipFilter, []types.Membership]
	registry types.MembershipRepository
	logger   types.Logger
}

// NewMembershipService constructs the adapter.
func NewMembershipService(cfg MembershipServiceConfig, opts ...ServiceOption) *MembershipService {
	options := applyOptions(opts)
	return &MembershipService{
		guard:    cfg.Guard,
		assign:   cfg.Assign,
		clear:    cfg.Clear,
		list:     cfg.List,
		registry: cfg.Registry,
		logger:   options.logger,
	}
}

func (s *MembershipService) Create(ctx crud.Context, record *registry.Membership) (*registry.Membership, error) {
	return s.upsert(ctx, crud.OpCreate, record)
}

func (s *MembershipService) CreateBatch(crud.Context, []*registry.Membership) ([]*registry.Membership, error) {
	return nil, notSupported(crud.OpCreateBatch)
}

func (s *MembershipService) Update(ctx crud.Context, record *registry.Membership) (*registry.Membership, error) {
	return s.upsert(ctx, crud.OpUpdate, record)
}

func (s *MembershipService) UpdateBatch(crud.Context, []*registry.Membership) ([]*registry.Membership, error) {
	return nil, notSupported(crud.OpUpdateBatch)
}

func (s *MembershipService) upsert(ctx crud.Context, op crud.CrudOperation, record *registry.Membership) (*registry.Membership, error) {
	if s.assign == nil {
		return nil, goerrors.New("membership assign command missing", goerrors.CategoryInternal).WithCode(goerrors.CodeInternal)
	}
	res, err := s.guard.Enforce(crudguard.GuardInput{
		Context:   ctx,
		Operation: op,
		Scope: types.ScopeFilter{
			TenantID: record.TenantID,
			OrgID:    record.OrgID,
		},
		TargetID: record.UserID,
	})
	if err != nil {
		return nil, err
	}
	result := types.Membership{}
	input := command.AssignMembershipInput{
		UserID:       record.UserID,
		Role:         types.Role(record.Role),
		CustomRoleID: record.CustomRoleID,
		Scope:        res.Scope,
		Actor:        res.Actor,
		Result:       &result,
	}
	if err := s.assign.Execute(ctx.UserContext(), input); err != nil {
		return nil, err
	}
	return registry.MembershipToModel(&result), nil
}

func (s *MembershipService) Delete(ctx crud.Context, record *registry.Membership) error {
	if s.clear == nil {
		return goerrors.New("membership clear command missing", goerrors.CategoryInternal).WithCode(goerrors.CodeInternal)
	}
	res, err := s.guard.Enforce(crudguard.GuardInput{
		Context:   ctx,
		Operation: crud.OpDelete,
		Scope: types.ScopeFilter{
			TenantID: record.TenantID,
			OrgID:    record.OrgID,
		},
		TargetID: record.UserID,
	})
	if err != nil {
		return err
	}
	return s.clear.Execute(ctx.UserContext(), command.ClearMembershipInput{
		UserID: record.UserID,
		Scope:  res.Scope,
		Actor:  res.Actor,
	})
}

func (s *MembershipService) DeleteBatch(crud.Context, []*registry.Membership) error {
	return notSupported(crud.OpDeleteBatch)
}

func (s *MembershipService) Index(ctx crud.Context, _ []repository.SelectCriteria) ([]*registry.Membership, int, error) {
	if s.list == nil {
		return nil, 0, goerrors.New("membership list query missing", goerrors.CategoryInternal).WithCode(goerrors.CodeInternal)
	}
	res, err := s.guard.Enforce(crudguard.GuardInput{
		Context:   ctx,
		Operation: crud.OpList,
	})
	if err != nil {
		return nil, 0, err
	}
	filter := types.MembershipFilter{
		Actor:   res.Actor,
		Scope:   res.Scope,
		UserID:  queryUUID(ctx, "user_id"),
		UserIDs: queryUUIDSlice(ctx, "user_ids"),
		Role:    types.Role(ctx.Query("role")),
		RoleID:  queryUUID(ctx, "role_id"),
	}
	memberships, err := s.list.Query(ctx.UserContext(), filter)
	if err != nil {
		return nil, 0, err
	}
	records := make([]*registry.Membership, 0, len(memberships))
	for _, membership := range memberships {
		records = append(records, registry.MembershipToModel(&membership))
	}
	return records, len(records), nil
}

// Show looks up the membership for one user. The id path parameter carries the
// user id, not the surrogate row id.
func (s *MembershipService) Show(ctx crud.Context, id string, _ []repository.SelectCriteria) (*registry.Membership, error) {
	if s.registry == nil {
		return nil, goerrors.New("membership repository missing", goerrors.CategoryInternal).WithCode(goerrors.CodeInternal)
	}
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, goerrors.New("invalid user id", goerrors.CategoryValidation).WithCode(goerrors.CodeBadRequest)
	}
	res, err := s.guard.Enforce(crudguard.GuardInput{
		Context:   ctx,
		Operation: crud.OpRead,
		TargetID:  userID,
	})
	if err != nil {
		return nil, err
	}
	membership, err := s.registry.GetMembership(ctx.UserContext(), userID, res.Scope)
	if err != nil {
		return nil, err
	}
	return registry.MembershipToModel(membership), nil
}
