package user

import (
	"context"
	"errors"
	"strings"
	"testing"

	"agile-board-go/internal/domain/fault"
	"agile-board-go/internal/domain/role"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	rows   map[uint]*User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{rows: make(map[uint]*User), nextID: 1}
}

func (r *fakeUserRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeUserRepo) Create(ctx context.Context, u *User) error {
	u.ID = r.nextID
	r.nextID++
	for i := range u.Roles {
		u.Roles[i].UserID = u.ID
	}
	copied := *u
	r.rows[u.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Save(ctx context.Context, u *User) error {
	copied := *u
	r.rows[u.ID] = &copied
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uint) (*User, error) {
	u, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*User, error) {
	for _, u := range r.rows {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range r.rows {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeUserRepo) List(ctx context.Context) ([]User, error) {
	var out []User
	for _, u := range r.rows {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *fakeUserRepo) ReplaceSystemRoles(ctx context.Context, userID uint, roles []SystemRole) error {
	u, ok := r.rows[userID]
	if !ok {
		return ErrNotFound
	}
	u.Roles = roles
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, userID uint) error {
	delete(r.rows, userID)
	return nil
}

// fakeAdmin grants administrator status to a fixed set of usernames.
type fakeAdmin map[string]bool

func (f fakeAdmin) IsSystemAdmin(ctx context.Context, caller string) (bool, error) {
	return f[caller], nil
}

func registered(t *testing.T, s *Service, username string, r role.Role) *User {
	t.Helper()
	u, err := s.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret-password",
		Role:     r,
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return u
}

func TestRegisterRequiresExactlyOneValidRole(t *testing.T) {
	s := NewService(newFakeUserRepo(), fakeAdmin{})

	_, err := s.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "a@example.com", Password: "pw", Role: "WIZARD",
	})
	if !fault.IsValidation(err) {
		t.Fatalf("unknown role: got %v, want validation error", err)
	}

	_, err = s.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "a@example.com", Password: "pw", Role: role.SystemAdmin,
	})
	if !fault.IsValidation(err) {
		t.Fatalf("self-registered admin: got %v, want validation error", err)
	}
}

func TestRegisterStoresHashedPassword(t *testing.T) {
	repo := newFakeUserRepo()
	s := NewService(repo, fakeAdmin{})

	u := registered(t, s, "alice", role.Developer)
	if u.PasswordHash == "secret-password" {
		t.Fatal("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret-password")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
	if got := u.RoleList(); len(got) != 1 || got[0] != role.Developer {
		t.Fatalf("got roles %v, want exactly [DEVELOPER]", got)
	}
}

func TestRegisterDuplicates(t *testing.T) {
	s := NewService(newFakeUserRepo(), fakeAdmin{})
	registered(t, s, "alice", role.Developer)

	_, err := s.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "other@example.com", Password: "pw", Role: role.Developer,
	})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("got %v, want ErrUsernameTaken", err)
	}

	_, err = s.Register(context.Background(), RegisterInput{
		Username: "bob", Email: "alice@example.com", Password: "pw", Role: role.Developer,
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("got %v, want ErrEmailTaken", err)
	}
}

func TestAuthenticate(t *testing.T) {
	repo := newFakeUserRepo()
	s := NewService(repo, fakeAdmin{})
	registered(t, s, "alice", role.Developer)

	if _, err := s.Authenticate(context.Background(), "alice", "secret-password"); err != nil {
		t.Fatalf("valid login: %v", err)
	}

	if _, err := s.Authenticate(context.Background(), "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v, want ErrInvalidCredentials", err)
	}

	// Unknown usernames get the same answer as wrong passwords.
	if _, err := s.Authenticate(context.Background(), "nobody", "secret-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: got %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	repo := newFakeUserRepo()
	s := NewService(repo, fakeAdmin{"root": true})
	u := registered(t, s, "alice", role.Developer)

	if _, err := s.Deactivate(context.Background(), "root", u.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if _, err := s.Authenticate(context.Background(), "alice", "secret-password"); !errors.Is(err, ErrInactive) {
		t.Fatalf("got %v, want ErrInactive", err)
	}
}

func TestAdminOnlyOperations(t *testing.T) {
	repo := newFakeUserRepo()
	s := NewService(repo, fakeAdmin{"root": true})
	u := registered(t, s, "alice", role.Developer)

	if _, err := s.List(context.Background(), "alice"); !errors.Is(err, fault.ErrAccessDenied) {
		t.Fatalf("list as non-admin: got %v, want ErrAccessDenied", err)
	}
	if _, err := s.List(context.Background(), "root"); err != nil {
		t.Fatalf("list as admin: %v", err)
	}

	if _, err := s.ReplaceSystemRoles(context.Background(), "alice", u.ID, []role.Role{role.ScrumMaster}); !errors.Is(err, fault.ErrAccessDenied) {
		t.Fatalf("replace roles as non-admin: got %v, want ErrAccessDenied", err)
	}
	if err := s.Delete(context.Background(), "alice", u.ID); !errors.Is(err, fault.ErrAccessDenied) {
		t.Fatalf("delete as non-admin: got %v, want ErrAccessDenied", err)
	}
}

func TestReplaceSystemRoles(t *testing.T) {
	repo := newFakeUserRepo()
	s := NewService(repo, fakeAdmin{"root": true})
	u := registered(t, s, "alice", role.Developer)

	if _, err := s.ReplaceSystemRoles(context.Background(), "root", u.ID, nil); !fault.IsValidation(err) {
		t.Fatalf("empty set: got %v, want validation error", err)
	}

	// Duplicates collapse; administrators may grant any role set.
	updated, err := s.ReplaceSystemRoles(context.Background(), "root", u.ID, []role.Role{
		role.ScrumMaster, role.ScrumMaster, role.SystemAdmin,
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got := updated.RoleList(); len(got) != 2 {
		t.Fatalf("got roles %v, want two distinct roles", got)
	}
	if !updated.IsSystemAdmin() {
		t.Error("expected granted SYSTEM_ADMIN to be visible")
	}
}

func TestChangePassword(t *testing.T) {
	repo := newFakeUserRepo()
	s := NewService(repo, fakeAdmin{})
	registered(t, s, "alice", role.Developer)

	if err := s.ChangePassword(context.Background(), "alice", "wrong", "next-password"); !fault.IsValidation(err) {
		t.Fatalf("wrong current password: got %v, want validation error", err)
	}
	err := s.ChangePassword(context.Background(), "alice", "secret-password", "")
	if !fault.IsValidation(err) {
		t.Fatalf("empty new password: got %v, want validation error", err)
	}
	if !strings.Contains(err.Error(), "required") {
		t.Errorf("empty new password reported as %q, want the missing-value message", err)
	}
	if err := s.ChangePassword(context.Background(), "alice", "secret-password", "secret-password"); !fault.IsValidation(err) {
		t.Fatalf("unchanged password: got %v, want validation error", err)
	}
	if err := s.ChangePassword(context.Background(), "alice", "secret-password", "next-password"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := s.Authenticate(context.Background(), "alice", "next-password"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}
