package membership

import (
	"context"
	"testing"

	"agile-board-go/internal/domain/fault"
	"agile-board-go/internal/domain/role"
)

type fakeMembershipRepo struct {
	rows   []Membership
	nextID uint
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{nextID: 1}
}

func (r *fakeMembershipRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeMembershipRepo) Insert(ctx context.Context, m *Membership) error {
	for _, row := range r.rows {
		if row.ProjectID == m.ProjectID && row.UserID == m.UserID && row.Role == m.Role {
			return ErrDuplicate
		}
	}
	m.ID = r.nextID
	r.nextID++
	r.rows = append(r.rows, *m)
	return nil
}

func (r *fakeMembershipRepo) Find(ctx context.Context, projectID, userID uint, rl role.Role) (*Membership, error) {
	for _, row := range r.rows {
		if row.ProjectID == projectID && row.UserID == userID && row.Role == rl {
			found := row
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeMembershipRepo) DeleteTriple(ctx context.Context, projectID, userID uint, rl role.Role) error {
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.ProjectID == projectID && row.UserID == userID && row.Role == rl {
			continue
		}
		kept = append(kept, row)
	}
	r.rows = kept
	return nil
}

func (r *fakeMembershipRepo) DeletePair(ctx context.Context, projectID, userID uint) error {
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.ProjectID == projectID && row.UserID == userID {
			continue
		}
		kept = append(kept, row)
	}
	r.rows = kept
	return nil
}

func (r *fakeMembershipRepo) RolesByPair(ctx context.Context, projectID, userID uint) ([]role.Role, error) {
	var roles []role.Role
	for _, row := range r.rows {
		if row.ProjectID == projectID && row.UserID == userID {
			roles = append(roles, row.Role)
		}
	}
	return roles, nil
}

func (r *fakeMembershipRepo) CountByPair(ctx context.Context, projectID, userID uint) (int64, error) {
	var count int64
	for _, row := range r.rows {
		if row.ProjectID == projectID && row.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *fakeMembershipRepo) ListByProject(ctx context.Context, projectID uint) ([]Membership, error) {
	var rows []Membership
	for _, row := range r.rows {
		if row.ProjectID == projectID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func TestAddRoleIdempotent(t *testing.T) {
	repo := newFakeMembershipRepo()
	store := NewStore(repo)
	ctx := context.Background()

	first, err := store.AddRole(ctx, 7, 1, role.Developer)
	if err != nil {
		t.Fatalf("first add: %v", err)
	}
	second, err := store.AddRole(ctx, 7, 1, role.Developer)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected same record back, got ids %d and %d", first.ID, second.ID)
	}
	if len(repo.rows) != 1 {
		t.Errorf("expected exactly one row, got %d", len(repo.rows))
	}
}

func TestAddRoleRejectsUnknownRole(t *testing.T) {
	store := NewStore(newFakeMembershipRepo())

	_, err := store.AddRole(context.Background(), 7, 1, "WIZARD")
	if !fault.IsValidation(err) {
		t.Fatalf("got %v, want validation error", err)
	}
}

func TestAddRoleDuplicateFromStorageIsInvariant(t *testing.T) {
	repo := newFakeMembershipRepo()
	store := NewStore(repo)
	ctx := context.Background()

	// A row the store's lookup cannot see but the unique index can,
	// mimicking a concurrent writer landing between Find and Insert.
	repo.rows = append(repo.rows, Membership{ID: 99, ProjectID: 7, UserID: 1, Role: role.Developer})
	store = NewStore(&raceyRepo{fakeMembershipRepo: repo})

	_, err := store.AddRole(ctx, 7, 1, role.Developer)
	if !fault.IsInvariant(err) {
		t.Fatalf("got %v, want invariant error", err)
	}
}

// raceyRepo hides existing rows from Find so Insert hits the unique
// constraint, mimicking a concurrent writer.
type raceyRepo struct {
	*fakeMembershipRepo
}

func (r *raceyRepo) Find(ctx context.Context, projectID, userID uint, rl role.Role) (*Membership, error) {
	return nil, ErrNotFound
}

func TestRemoveRoleAbsentIsNoop(t *testing.T) {
	repo := newFakeMembershipRepo()
	store := NewStore(repo)
	ctx := context.Background()

	if err := store.RemoveRole(ctx, 7, 1, role.Developer); err != nil {
		t.Fatalf("remove absent role: %v", err)
	}
}

func TestReplaceRoles(t *testing.T) {
	repo := newFakeMembershipRepo()
	store := NewStore(repo)
	ctx := context.Background()

	if _, err := store.AddRole(ctx, 7, 1, role.Developer); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := store.AddRole(ctx, 7, 1, role.ScrumMaster); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := store.ReplaceRoles(ctx, 7, 1, nil); !fault.IsValidation(err) {
		t.Fatalf("empty replacement: got %v, want validation error", err)
	}

	if err := store.ReplaceRoles(ctx, 7, 1, []role.Role{role.ProductOwner}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	roles, err := store.RolesOf(ctx, 7, 1)
	if err != nil {
		t.Fatalf("roles of: %v", err)
	}
	if len(roles) != 1 || roles[0] != role.ProductOwner {
		t.Errorf("got roles %v, want exactly [PRODUCT_OWNER]", roles)
	}
}

func TestRemoveAllRolesEndsMembership(t *testing.T) {
	repo := newFakeMembershipRepo()
	store := NewStore(repo)
	ctx := context.Background()

	if _, err := store.AddRole(ctx, 7, 1, role.Developer); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.RemoveAllRoles(ctx, 7, 1); err != nil {
		t.Fatalf("remove all: %v", err)
	}

	member, err := store.IsMember(ctx, 7, 1)
	if err != nil {
		t.Fatalf("is member: %v", err)
	}
	if member {
		t.Error("user still a member after RemoveAllRoles")
	}
}
