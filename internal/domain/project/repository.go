package project

import (
	"context"

	"agile-board-go/internal/domain/membership"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	Create(ctx context.Context, p *Project) error
	UpdateKey(ctx context.Context, projectID uint, key string) error
	FindByID(ctx context.Context, id uint) (*Project, error)
	FindByKey(ctx context.Context, key string) (*Project, error)
	FindByCode(ctx context.Context, code string) (*Project, error)
	List(ctx context.Context) ([]Project, error)
	UserExists(ctx context.Context, userID uint) (bool, error)
	AddMember(ctx context.Context, m *membership.Membership) error
	ListMembers(ctx context.Context, projectID uint) ([]Member, error)

	// Deletion walks the owned children in a defined order before the
	// project row itself: stories, release plans, memberships.
	DeleteStoriesByProject(ctx context.Context, projectID uint) error
	DeleteReleasePlansByProject(ctx context.Context, projectID uint) error
	DeleteMembershipsByProject(ctx context.Context, projectID uint) error
	DeleteProject(ctx context.Context, projectID uint) error
}
