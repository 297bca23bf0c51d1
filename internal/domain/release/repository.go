package release

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	Create(ctx context.Context, p *ReleasePlan) error
	Save(ctx context.Context, p *ReleasePlan) error
	UpdateKey(ctx context.Context, planID uint, key string) error
	FindByID(ctx context.Context, id uint) (*ReleasePlan, error)
	FindByKey(ctx context.Context, key string) (*ReleasePlan, error)
	ListByProject(ctx context.Context, projectID uint) ([]ReleasePlan, error)
	ListByStatus(ctx context.Context, status Status) ([]ReleasePlan, error)
	CountStories(ctx context.Context, planID uint) (int64, error)
	Delete(ctx context.Context, id uint) error
}
