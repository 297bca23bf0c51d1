// Package membership owns the (project, user, role) relation behind
// every project-scoped authorization decision.
package membership

import (
	"context"
	"errors"

	"agile-board-go/internal/domain/fault"
	"agile-board-go/internal/domain/guard"
	"agile-board-go/internal/domain/role"
)

type Store struct {
	repo Repository
}

func NewStore(repo Repository) *Store {
	return &Store{repo: repo}
}

// AddRole grants a project-scoped role. Granting a role the user already
// holds is not an error; the existing record is returned unchanged.
func (s *Store) AddRole(ctx context.Context, projectID, userID uint, r role.Role) (*Membership, error) {
	if !r.Valid() {
		return nil, fault.Validationf("unknown role %q", r)
	}

	existing, err := s.repo.Find(ctx, projectID, userID, r)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	m := &Membership{ProjectID: projectID, UserID: userID, Role: r}
	if err := s.repo.Insert(ctx, m); err != nil {
		if errors.Is(err, ErrDuplicate) {
			// The unique index fired even though the lookup above found
			// nothing. The backstop caught a bug, not a user mistake.
			return nil, fault.InvariantWrap(err, "membership triple duplicated past idempotency check (project=%d user=%d role=%s)", projectID, userID, r)
		}
		return nil, err
	}
	return m, nil
}

// RemoveRole revokes a single project-scoped role. Removing a role the
// user does not hold is a no-op.
func (s *Store) RemoveRole(ctx context.Context, projectID, userID uint, r role.Role) error {
	if !r.Valid() {
		return fault.Validationf("unknown role %q", r)
	}
	return s.repo.DeleteTriple(ctx, projectID, userID, r)
}

// RemoveAllRoles revokes every role the user holds in the project,
// ending the membership.
func (s *Store) RemoveAllRoles(ctx context.Context, projectID, userID uint) error {
	return s.repo.DeletePair(ctx, projectID, userID)
}

func (s *Store) RolesOf(ctx context.Context, projectID, userID uint) ([]role.Role, error) {
	return s.repo.RolesByPair(ctx, projectID, userID)
}

func (s *Store) IsMember(ctx context.Context, projectID, userID uint) (bool, error) {
	count, err := s.repo.CountByPair(ctx, projectID, userID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ReplaceRoles swaps the user's role set in the project for newRoles in
// one transaction. An empty newRoles is rejected: a replacement must not
// silently end a membership, that is what RemoveAllRoles is for.
func (s *Store) ReplaceRoles(ctx context.Context, projectID, userID uint, newRoles []role.Role) error {
	if err := guard.ReplacementRoles(newRoles); err != nil {
		return err
	}

	return s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.DeletePair(ctx, projectID, userID); err != nil {
			return err
		}
		seen := make(map[role.Role]struct{}, len(newRoles))
		for _, r := range newRoles {
			if _, dup := seen[r]; dup {
				continue
			}
			seen[r] = struct{}{}
			if err := tx.Insert(ctx, &Membership{ProjectID: projectID, UserID: userID, Role: r}); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListByProject returns every membership row of the project.
func (s *Store) ListByProject(ctx context.Context, projectID uint) ([]Membership, error) {
	return s.repo.ListByProject(ctx, projectID)
}
