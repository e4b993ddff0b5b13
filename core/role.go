package core

import (
	"fmt"
	"strings"
)

// Role is one of a closed set of user roles.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleCustomer Role = "CUSTOMER"
)

// Capability names an action a role may perform.
type Capability string

const (
	CapCatalogRead  Capability = "catalog:read"
	CapCatalogWrite Capability = "catalog:write"
	CapUsersManage  Capability = "users:manage"
)

var roleCapabilities = map[Role][]Capability{
	RoleAdmin:    {CapCatalogRead, CapCatalogWrite, CapUsersManage},
	RoleManager:  {CapCatalogRead, CapCatalogWrite},
	RoleCustomer: {CapCatalogRead},
}

// ParseRole maps a role name to its Role. Matching is case-insensitive.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := roleCapabilities[r]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// Valid reports whether r is a member of the role set.
func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Capabilities returns a copy of the capabilities granted to r.
func (r Role) Capabilities() []Capability {
	caps := roleCapabilities[r]
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}

// Can reports whether r grants c.
func (r Role) Can(c Capability) bool {
	for _, have := range roleCapabilities[r] {
		if have == c {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }
