// Package guard holds the stateless cross-entity checks evaluated before
// a mutation is committed. Every function either accepts the proposed
// state or rejects it with a validation error; nothing here touches
// storage.
package guard

import (
	"time"

	"agile-board-go/internal/domain/fault"
	"agile-board-go/internal/domain/role"
)

// DateOrder rejects a release plan whose target date precedes its start
// date. Callers updating an existing plan must pass the merged values,
// not just the fields that changed.
func DateOrder(start, target time.Time) error {
	if target.Before(start) {
		return fault.Validationf("target date must not be before start date")
	}
	return nil
}

// SameProject rejects a story-to-release-plan link that crosses project
// boundaries.
func SameProject(storyProjectID, planProjectID uint) error {
	if storyProjectID != planProjectID {
		return fault.Validationf("user story must belong to the same project as the release plan")
	}
	return nil
}

// ReplacementRoles rejects a role replacement that would leave a member
// with no roles, or that names an unknown role. Full revocation goes
// through the explicit remove-all path instead.
func ReplacementRoles(roles []role.Role) error {
	if len(roles) == 0 {
		return fault.Validationf("role replacement requires at least one role")
	}
	for _, r := range roles {
		if !r.Valid() {
			return fault.Validationf("unknown role %q", r)
		}
	}
	return nil
}
