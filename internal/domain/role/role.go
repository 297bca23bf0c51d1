package role

import "fmt"

// Role names a responsibility a user can hold. The same values are used
// for system-wide roles on the user record and for project-scoped roles
// granted through memberships.
type Role string

const (
	ProductOwner Role = "PRODUCT_OWNER"
	ScrumMaster  Role = "SCRUM_MASTER"
	Developer    Role = "DEVELOPER"
	SystemAdmin  Role = "SYSTEM_ADMIN"
)

var all = []Role{ProductOwner, ScrumMaster, Developer, SystemAdmin}

func (r Role) Valid() bool {
	for _, known := range all {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

func Parse(value string) (Role, error) {
	r := Role(value)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", value)
	}
	return r, nil
}

// Contains reports whether r appears in roles.
func Contains(roles []Role, r Role) bool {
	for _, candidate := range roles {
		if candidate == r {
			return true
		}
	}
	return false
}
