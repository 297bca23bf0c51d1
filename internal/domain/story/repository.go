package story

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	Create(ctx context.Context, s *UserStory) error
	Save(ctx context.Context, s *UserStory) error
	UpdateKey(ctx context.Context, storyID uint, key string) error
	FindByID(ctx context.Context, id uint) (*UserStory, error)
	FindByKey(ctx context.Context, key string) (*UserStory, error)
	ListByProject(ctx context.Context, projectID uint) ([]UserStory, error)
	SetReleasePlan(ctx context.Context, storyID uint, planID *uint) error
	Delete(ctx context.Context, id uint) error
}
