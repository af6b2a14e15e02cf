package types

// AuthorityKind tags the source a principal's permissions derive from.
type AuthorityKind string

const (
	// AuthorityNone is the zero authority: no membership, no permissions.
	AuthorityNone AuthorityKind = ""
	// AuthorityPredefined derives permissions from a static role table.
	AuthorityPredefined AuthorityKind = "predefined"
	// AuthorityCustom derives permissions from an explicit custom role set.
	AuthorityCustom AuthorityKind = "custom"
)

// Authority is the tagged union of the two permission sources a membership
// can bind to. The zero value carries no permissions; resolution over it is
// total and never fails. Custom authorities have no hierarchy level: their
// holder's reach is derived purely from the permission set.
type Authority struct {
	Kind        AuthorityKind
	Role        Role
	Permissions []string
}

// PredefinedAuthority wraps a predefined role.
func PredefinedAuthority(role Role) Authority {
	return Authority{
		Kind: AuthorityPredefined,
		Role: role,
	}
}

// CustomAuthority wraps the flattened permission list of a custom role. The
// slice is copied so later caller mutations cannot leak in.
func CustomAuthority(permissions []string) Authority {
	perms := make([]string, len(permissions))
	copy(perms, permissions)
	return Authority{
		Kind:        AuthorityCustom,
		Permissions: perms,
	}
}

// IsZero reports whether the authority carries no permission source.
func (a Authority) IsZero() bool {
	return a.Kind == AuthorityNone
}

// IsPredefined reports whether the authority derives from a predefined role.
func (a Authority) IsPredefined() bool {
	return a.Kind == AuthorityPredefined
}

// IsCustom reports whether the authority derives from a custom role.
func (a Authority) IsCustom() bool {
	return a.Kind == AuthorityCustom
}
