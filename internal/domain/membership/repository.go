package membership

import (
	"context"

	"agile-board-go/internal/domain/role"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	Insert(ctx context.Context, m *Membership) error
	Find(ctx context.Context, projectID, userID uint, r role.Role) (*Membership, error)
	DeleteTriple(ctx context.Context, projectID, userID uint, r role.Role) error
	DeletePair(ctx context.Context, projectID, userID uint) error
	RolesByPair(ctx context.Context, projectID, userID uint) ([]role.Role, error)
	CountByPair(ctx context.Context, projectID, userID uint) (int64, error)
	ListByProject(ctx context.Context, projectID uint) ([]Membership, error)
}
