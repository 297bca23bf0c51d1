// Package authz decides whether a caller may act on a project. Decisions
// are computed fresh on every call: membership can be revoked between two
// requests and a cached "allowed" would outlive the revocation.
package authz

import (
	"context"

	"agile-board-go/internal/domain/role"
)

// Account is the engine's view of an authenticated caller.
type Account struct {
	ID          uint
	Active      bool
	SystemRoles []role.Role
}

func (a Account) IsSystemAdmin() bool {
	return role.Contains(a.SystemRoles, role.SystemAdmin)
}

// UserDirectory resolves a caller identity to an account. A nil account
// with a nil error means the caller is unknown.
type UserDirectory interface {
	FindAccount(ctx context.Context, username string) (*Account, error)
}

// MembershipReader exposes the project-scoped role lookups the engine
// delegates to.
type MembershipReader interface {
	RolesOf(ctx context.Context, projectID, userID uint) ([]role.Role, error)
	IsMember(ctx context.Context, projectID, userID uint) (bool, error)
}

type Engine struct {
	users   UserDirectory
	members MembershipReader
}

func NewEngine(users UserDirectory, members MembershipReader) *Engine {
	return &Engine{users: users, members: members}
}

// HasRole reports whether the caller holds the given role in the project.
// System administrators pass every check without a membership lookup.
// Unknown and inactive callers resolve to false, never an error.
func (e *Engine) HasRole(ctx context.Context, caller string, projectID uint, r role.Role) (bool, error) {
	return e.HasAnyRole(ctx, caller, projectID, r)
}

// HasAnyRole reports whether the caller holds at least one of the given
// roles in the project.
func (e *Engine) HasAnyRole(ctx context.Context, caller string, projectID uint, roles ...role.Role) (bool, error) {
	account, err := e.resolve(ctx, caller)
	if err != nil || account == nil {
		return false, err
	}
	if account.IsSystemAdmin() {
		return true, nil
	}

	held, err := e.members.RolesOf(ctx, projectID, account.ID)
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		if role.Contains(held, r) {
			return true, nil
		}
	}
	return false, nil
}

// IsMember reports whether the caller holds any role in the project.
func (e *Engine) IsMember(ctx context.Context, caller string, projectID uint) (bool, error) {
	account, err := e.resolve(ctx, caller)
	if err != nil || account == nil {
		return false, err
	}
	if account.IsSystemAdmin() {
		return true, nil
	}
	return e.members.IsMember(ctx, projectID, account.ID)
}

// IsSystemAdmin reports whether the caller carries the system-wide
// administrator role, independent of any project.
func (e *Engine) IsSystemAdmin(ctx context.Context, caller string) (bool, error) {
	account, err := e.resolve(ctx, caller)
	if err != nil || account == nil {
		return false, err
	}
	return account.IsSystemAdmin(), nil
}

func (e *Engine) resolve(ctx context.Context, caller string) (*Account, error) {
	account, err := e.users.FindAccount(ctx, caller)
	if err != nil {
		return nil, err
	}
	if account == nil || !account.Active {
		return nil, nil
	}
	return account, nil
}
