package command

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-rbac/permission"
	"github.com/goliatone/go-rbac/pkg/types"
	"github.com/google/uuid"
)

func validateRoleMutation(actor types.ActorRef, name string) error {
	if actor.ID == uuid.Nil {
		return ErrActorRequired
	}
	if strings.TrimSpace(name) == "" {
		return ErrRoleNameRequired
	}
	return nil
}

func validateRoleTarget(roleID uuid.UUID, actor types.ActorRef) error {
	if roleID == uuid.Nil {
		return ErrRoleIDRequired
	}
	if actor.ID == uuid.Nil {
		return ErrActorRequired
	}
	return nil
}

// checkGrantAuthority runs the delegation rules against the requested
// permission set and converts failures into a categorized validation error
// carrying the per-permission reasons.
func checkGrantAuthority(authority types.Authority, requested []string) error {
	if !permission.AuthorityCanCreateCustomRoles(authority) {
		return goerrors.New(
			"go-rbac: actor cannot create custom roles",
			goerrors.CategoryAuthz,
		).
			WithCode(goerrors.CodeForbidden).
			WithTextCode("CUSTOM_ROLE_FORBIDDEN")
	}
	result := permission.ValidateCustomRolePermissions(authority.Role, requested)
	if result.Valid {
		return nil
	}
	issues := make([]map[string]any, 0, len(result.Ungrantable))
	for _, issue := range result.Ungrantable {
		issues = append(issues, map[string]any{
			"permission": issue.Permission,
			"reason":     issue.Reason,
		})
	}
	return goerrors.New(
		"go-rbac: requested permissions exceed granting authority",
		goerrors.CategoryValidation,
	).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode("UNGRANTABLE_PERMISSIONS").
		WithMetadata(map[string]any{
			"errors":      result.Errors,
			"ungrantable": issues,
		})
}
