package guard

import (
	"testing"
	"time"

	"agile-board-go/internal/domain/fault"
	"agile-board-go/internal/domain/role"
)

func date(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func TestDateOrder(t *testing.T) {
	if err := DateOrder(date("2026-01-01"), date("2026-03-01")); err != nil {
		t.Fatalf("valid range rejected: %v", err)
	}
	if err := DateOrder(date("2026-01-01"), date("2026-01-01")); err != nil {
		t.Fatalf("equal dates rejected: %v", err)
	}
	err := DateOrder(date("2026-03-01"), date("2026-01-01"))
	if !fault.IsValidation(err) {
		t.Fatalf("inverted range: got %v, want validation error", err)
	}
}

func TestSameProject(t *testing.T) {
	if err := SameProject(7, 7); err != nil {
		t.Fatalf("same project rejected: %v", err)
	}
	if err := SameProject(7, 8); !fault.IsValidation(err) {
		t.Fatalf("cross-project link: got %v, want validation error", err)
	}
}

func TestReplacementRoles(t *testing.T) {
	if err := ReplacementRoles(nil); !fault.IsValidation(err) {
		t.Fatalf("empty set: got %v, want validation error", err)
	}
	if err := ReplacementRoles([]role.Role{"WIZARD"}); !fault.IsValidation(err) {
		t.Fatalf("unknown role: got %v, want validation error", err)
	}
	if err := ReplacementRoles([]role.Role{role.Developer, role.ScrumMaster}); err != nil {
		t.Fatalf("valid set rejected: %v", err)
	}
}
