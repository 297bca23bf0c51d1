package user

import (
	"context"
	"errors"
	"strings"

	"agile-board-go/internal/domain/fault"
	"agile-board-go/internal/domain/role"
	"golang.org/x/crypto/bcrypt"
)

// AdminChecker answers whether the caller is a system administrator.
// Satisfied by the authorization engine.
type AdminChecker interface {
	IsSystemAdmin(ctx context.Context, caller string) (bool, error)
}

type Service struct {
	repo  Repository
	admin AdminChecker
}

func NewService(repo Repository, admin AdminChecker) *Service {
	return &Service{repo: repo, admin: admin}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Role     role.Role
}

// Register creates an account with exactly one self-assigned system role.
// SYSTEM_ADMIN cannot be self-registered; administrators grant further
// roles later through ReplaceSystemRoles, which deliberately accepts any
// non-empty set.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if in.Username == "" {
		return nil, fault.Validationf("username is required")
	}
	if in.Email == "" {
		return nil, fault.Validationf("email is required")
	}
	if in.Password == "" {
		return nil, fault.Validationf("password is required")
	}
	if !in.Role.Valid() {
		return nil, fault.Validationf("exactly one valid role must be selected")
	}
	if in.Role == role.SystemAdmin {
		return nil, fault.Validationf("system admin accounts cannot be self-registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var created *User
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		taken, err := tx.ExistsByUsername(ctx, in.Username)
		if err != nil {
			return err
		}
		if taken {
			return ErrUsernameTaken
		}
		taken, err = tx.ExistsByEmail(ctx, in.Email)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}

		u := &User{
			Username:     in.Username,
			Email:        in.Email,
			PasswordHash: string(hash),
			FullName:     strings.TrimSpace(in.FullName),
			Active:       true,
			Roles:        []SystemRole{{Role: in.Role}},
		}
		if err := tx.Create(ctx, u); err != nil {
			return err
		}
		created = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Authenticate verifies the password and the active flag, returning the
// account on success.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.Active {
		return nil, ErrInactive
	}
	return u, nil
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.repo.FindByUsername(ctx, username)
}

func (s *Service) GetByID(ctx context.Context, id uint) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

type ProfileUpdate struct {
	FullName *string
	Email    *string
}

func (s *Service) UpdateProfile(ctx context.Context, username string, in ProfileUpdate) (*User, error) {
	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if in.FullName != nil {
		u.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email == "" {
			return nil, fault.Validationf("email must not be empty")
		}
		if email != u.Email {
			existing, err := s.repo.FindByEmail(ctx, email)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return nil, err
			}
			if existing != nil && existing.ID != u.ID {
				return nil, ErrEmailTaken
			}
			u.Email = email
		}
	}

	if err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) ChangePassword(ctx context.Context, username, current, next string) error {
	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return fault.Validationf("current password is incorrect")
	}
	if next == "" {
		return fault.Validationf("new password is required")
	}
	if current == next {
		return fault.Validationf("new password must differ from the current password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return s.repo.Save(ctx, u)
}

// List returns every account. Administrator only.
func (s *Service) List(ctx context.Context, caller string) ([]User, error) {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

// ReplaceSystemRoles swaps a user's system-wide role set. Administrator
// only; an empty set is rejected.
func (s *Service) ReplaceSystemRoles(ctx context.Context, caller string, userID uint, roles []role.Role) (*User, error) {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return nil, fault.Validationf("at least one role must be provided")
	}
	for _, r := range roles {
		if !r.Valid() {
			return nil, fault.Validationf("unknown role %q", r)
		}
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows := make([]SystemRole, 0, len(roles))
	seen := make(map[role.Role]struct{}, len(roles))
	for _, r := range roles {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		rows = append(rows, SystemRole{UserID: u.ID, Role: r})
	}
	if err := s.repo.ReplaceSystemRoles(ctx, u.ID, rows); err != nil {
		return nil, err
	}
	u.Roles = rows
	return u, nil
}

// Deactivate flips the active flag off; the account keeps its data but
// fails every authorization decision from the next request on.
func (s *Service) Deactivate(ctx context.Context, caller string, userID uint) (*User, error) {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return nil, err
	}
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.Active = false
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes the account and detaches everything that referenced it.
func (s *Service) Delete(ctx context.Context, caller string, userID uint) error {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}
	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, userID)
}

func (s *Service) requireAdmin(ctx context.Context, caller string) error {
	ok, err := s.admin.IsSystemAdmin(ctx, caller)
	if err != nil {
		return err
	}
	if !ok {
		return fault.ErrAccessDenied
	}
	return nil
}
