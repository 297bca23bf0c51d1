package project

import (
	"context"
	"strings"

	"agile-board-go/internal/domain/authz"
	"agile-board-go/internal/domain/fault"
	"agile-board-go/internal/domain/membership"
	"agile-board-go/internal/domain/role"
	"agile-board-go/internal/keys"
)

const maxNameLength = 200

type Service struct {
	repo    Repository
	members *membership.Store
	authz   *authz.Engine
}

func NewService(repo Repository, members *membership.Store, engine *authz.Engine) *Service {
	return &Service{repo: repo, members: members, authz: engine}
}

type MemberInput struct {
	UserID uint
	Role   role.Role
}

type CreateInput struct {
	Name        string
	Description string
	Code        string
	Members     []MemberInput
}

// Create persists a project with the two-phase key protocol and seeds its
// memberships, all in one transaction. The caller never observes the
// placeholder key.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Project, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, fault.Validationf("project name is required")
	}
	if len(in.Name) > maxNameLength {
		return nil, fault.Validationf("project name must not exceed %d characters", maxNameLength)
	}
	if len(in.Members) == 0 {
		return nil, fault.Validationf("at least one project member with a role is required")
	}
	seen := make(map[uint]struct{}, len(in.Members))
	for _, m := range in.Members {
		if m.UserID == 0 {
			return nil, fault.Validationf("user id is required for all members")
		}
		if !m.Role.Valid() {
			return nil, fault.Validationf("unknown role %q", m.Role)
		}
		if _, dup := seen[m.UserID]; dup {
			return nil, fault.Validationf("duplicate user id %d in member list", m.UserID)
		}
		seen[m.UserID] = struct{}{}
	}

	code := strings.TrimSpace(in.Code)
	if code == "" {
		code = keys.CodeFromName(in.Name)
	}

	var created *Project
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		for _, m := range in.Members {
			exists, err := tx.UserExists(ctx, m.UserID)
			if err != nil {
				return err
			}
			if !exists {
				return fault.Validationf("user %d not found", m.UserID)
			}
		}

		p := &Project{
			Name:        in.Name,
			Description: strings.TrimSpace(in.Description),
			Key:         keys.Placeholder(),
			Code:        code,
			Active:      true,
		}
		if err := tx.Create(ctx, p); err != nil {
			return err
		}
		if p.ID == 0 {
			return fault.Invariantf("project id missing after insert")
		}

		p.Key = keys.Format(code, p.ID)
		if err := tx.UpdateKey(ctx, p.ID, p.Key); err != nil {
			return err
		}

		for _, m := range in.Members {
			row := &membership.Membership{ProjectID: p.ID, UserID: m.UserID, Role: m.Role}
			if err := tx.AddMember(ctx, row); err != nil {
				return err
			}
		}

		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) GetByID(ctx context.Context, caller string, id uint) (*Project, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, caller, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetByKey(ctx context.Context, caller string, key string) (*Project, error) {
	p, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, caller, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]Project, error) {
	return s.repo.List(ctx)
}

func (s *Service) Members(ctx context.Context, caller string, projectID uint) ([]Member, error) {
	if _, err := s.repo.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, caller, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, projectID)
}

// JoinByCode adds the user to the project identified by its short code,
// granting the given role. Used at registration time.
func (s *Service) JoinByCode(ctx context.Context, userID uint, code string, r role.Role) (*Project, error) {
	p, err := s.repo.FindByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if _, err := s.members.AddRole(ctx, p.ID, userID, r); err != nil {
		return nil, err
	}
	return p, nil
}

// AddMemberRole grants a project-scoped role. Requires product owner or
// scrum master on the project.
func (s *Service) AddMemberRole(ctx context.Context, caller string, projectID, userID uint, r role.Role) (*membership.Membership, error) {
	if err := s.requireManager(ctx, caller, projectID); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fault.Validationf("user %d not found", userID)
	}
	return s.members.AddRole(ctx, projectID, userID, r)
}

func (s *Service) RemoveMemberRole(ctx context.Context, caller string, projectID, userID uint, r role.Role) error {
	if err := s.requireManager(ctx, caller, projectID); err != nil {
		return err
	}
	return s.members.RemoveRole(ctx, projectID, userID, r)
}

// ReplaceMemberRoles swaps a member's role set atomically. An empty set
// is rejected by the membership store; use RemoveMember for revocation.
func (s *Service) ReplaceMemberRoles(ctx context.Context, caller string, projectID, userID uint, roles []role.Role) error {
	if err := s.requireManager(ctx, caller, projectID); err != nil {
		return err
	}
	if _, err := s.repo.FindByID(ctx, projectID); err != nil {
		return err
	}
	return s.members.ReplaceRoles(ctx, projectID, userID, roles)
}

// RemoveMember revokes every role the user holds in the project.
func (s *Service) RemoveMember(ctx context.Context, caller string, projectID, userID uint) error {
	if err := s.requireManager(ctx, caller, projectID); err != nil {
		return err
	}
	return s.members.RemoveAllRoles(ctx, projectID, userID)
}

// Delete removes the project and everything it owns. Children go first,
// in a defined order, inside one transaction.
func (s *Service) Delete(ctx context.Context, caller string, projectID uint) error {
	ok, err := s.authz.HasRole(ctx, caller, projectID, role.ProductOwner)
	if err != nil {
		return err
	}
	if !ok {
		return fault.ErrAccessDenied
	}
	if _, err := s.repo.FindByID(ctx, projectID); err != nil {
		return err
	}

	return s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.DeleteStoriesByProject(ctx, projectID); err != nil {
			return err
		}
		if err := tx.DeleteReleasePlansByProject(ctx, projectID); err != nil {
			return err
		}
		if err := tx.DeleteMembershipsByProject(ctx, projectID); err != nil {
			return err
		}
		return tx.DeleteProject(ctx, projectID)
	})
}

func (s *Service) requireMember(ctx context.Context, caller string, projectID uint) error {
	ok, err := s.authz.IsMember(ctx, caller, projectID)
	if err != nil {
		return err
	}
	if !ok {
		return fault.ErrAccessDenied
	}
	return nil
}

func (s *Service) requireManager(ctx context.Context, caller string, projectID uint) error {
	ok, err := s.authz.HasAnyRole(ctx, caller, projectID, role.ProductOwner, role.ScrumMaster)
	if err != nil {
		return err
	}
	if !ok {
		return fault.ErrAccessDenied
	}
	return nil
}
