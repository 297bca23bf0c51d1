package authz

import (
	"context"
	"testing"

	"agile-board-go/internal/domain/role"
)

type fakeDirectory struct {
	accounts map[string]*Account
}

func (d *fakeDirectory) FindAccount(ctx context.Context, username string) (*Account, error) {
	return d.accounts[username], nil
}

type fakeMembers struct {
	// roles[projectID][userID]
	roles map[uint]map[uint][]role.Role
	calls int
}

func (m *fakeMembers) RolesOf(ctx context.Context, projectID, userID uint) ([]role.Role, error) {
	m.calls++
	return m.roles[projectID][userID], nil
}

func (m *fakeMembers) IsMember(ctx context.Context, projectID, userID uint) (bool, error) {
	m.calls++
	return len(m.roles[projectID][userID]) > 0, nil
}

func newEngineFixture() (*Engine, *fakeDirectory, *fakeMembers) {
	dir := &fakeDirectory{accounts: map[string]*Account{
		"alice": {ID: 1, Active: true},
		"admin": {ID: 2, Active: true, SystemRoles: []role.Role{role.SystemAdmin}},
		"gone":  {ID: 3, Active: false, SystemRoles: []role.Role{role.SystemAdmin}},
	}}
	members := &fakeMembers{roles: map[uint]map[uint][]role.Role{}}
	return NewEngine(dir, members), dir, members
}

func grant(m *fakeMembers, projectID, userID uint, roles ...role.Role) {
	if m.roles[projectID] == nil {
		m.roles[projectID] = map[uint][]role.Role{}
	}
	m.roles[projectID][userID] = roles
}

func TestNonMemberDenied(t *testing.T) {
	engine, _, _ := newEngineFixture()
	ctx := context.Background()

	for _, r := range []role.Role{role.Developer, role.ProductOwner, role.ScrumMaster} {
		ok, err := engine.HasRole(ctx, "alice", 7, r)
		if err != nil {
			t.Fatalf("has role: %v", err)
		}
		if ok {
			t.Errorf("non-member granted %s", r)
		}
	}

	member, err := engine.IsMember(ctx, "alice", 7)
	if err != nil {
		t.Fatalf("is member: %v", err)
	}
	if member {
		t.Error("non-member reported as member")
	}
}

func TestSystemAdminOverride(t *testing.T) {
	engine, _, members := newEngineFixture()
	ctx := context.Background()

	ok, err := engine.HasRole(ctx, "admin", 99, role.Developer)
	if err != nil || !ok {
		t.Fatalf("admin denied: ok=%v err=%v", ok, err)
	}
	member, err := engine.IsMember(ctx, "admin", 99)
	if err != nil || !member {
		t.Fatalf("admin not member: ok=%v err=%v", member, err)
	}
	if members.calls != 0 {
		t.Errorf("admin override performed %d membership lookups, want 0", members.calls)
	}
}

func TestUnknownCallerResolvesFalse(t *testing.T) {
	engine, _, _ := newEngineFixture()

	ok, err := engine.HasRole(context.Background(), "nobody", 7, role.Developer)
	if err != nil {
		t.Fatalf("unknown caller must not error: %v", err)
	}
	if ok {
		t.Error("unknown caller granted access")
	}
}

func TestInactiveCallerDenied(t *testing.T) {
	engine, _, _ := newEngineFixture()

	ok, err := engine.HasRole(context.Background(), "gone", 7, role.Developer)
	if err != nil {
		t.Fatalf("inactive caller must not error: %v", err)
	}
	if ok {
		t.Error("inactive admin still authorized")
	}
}

func TestProjectScopedRoles(t *testing.T) {
	engine, _, members := newEngineFixture()
	ctx := context.Background()
	grant(members, 7, 1, role.Developer)
	grant(members, 8, 1, role.ProductOwner)

	ok, _ := engine.HasRole(ctx, "alice", 7, role.Developer)
	if !ok {
		t.Error("developer role on project 7 not seen")
	}
	ok, _ = engine.HasRole(ctx, "alice", 7, role.ProductOwner)
	if ok {
		t.Error("product owner role from project 8 leaked into project 7")
	}
	ok, _ = engine.HasAnyRole(ctx, "alice", 8, role.ProductOwner, role.ScrumMaster)
	if !ok {
		t.Error("any-role check missed product owner on project 8")
	}
}

func TestDecisionsEvaluatedFresh(t *testing.T) {
	engine, _, members := newEngineFixture()
	ctx := context.Background()
	grant(members, 7, 1, role.Developer)

	ok, _ := engine.HasRole(ctx, "alice", 7, role.Developer)
	if !ok {
		t.Fatal("expected grant before revocation")
	}

	grant(members, 7, 1) // revoke
	ok, _ = engine.HasRole(ctx, "alice", 7, role.Developer)
	if ok {
		t.Error("stale decision survived revocation")
	}
}
