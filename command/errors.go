package command

import (
	"errors"

	"github.com/goliatone/go-rbac/pkg/types"
)

var (
	// ErrActorRequired indicates an actor reference was not supplied.
	ErrActorRequired = types.ErrActorRequired
	// ErrUserIDRequired occurs when membership commands omit the user.
	ErrUserIDRequired = types.ErrUserIDRequired
	// ErrRoleNameRequired occurs when a role command omits the role name.
	ErrRoleNameRequired = errors.New("go-rbac: role name required")
	// ErrRoleIDRequired signals the role ID was missing.
	ErrRoleIDRequired = errors.New("go-rbac: role id required")
	// ErrRoleTargetRequired occurs when a membership assignment names neither a
	// predefined role nor a custom role.
	ErrRoleTargetRequired = errors.New("go-rbac: membership requires a role target")
	// ErrInvalidRole indicates the supplied role name is not a predefined role.
	ErrInvalidRole = errors.New("go-rbac: unknown predefined role")
	// ErrCustomRolesDisabled indicates custom roles are disabled via feature gate.
	ErrCustomRolesDisabled = errors.New("go-rbac: custom roles disabled")
)
