package story

import (
	"context"
	"errors"

	storydomain "agile-board-go/internal/domain/story"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(storydomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) Create(ctx context.Context, s *storydomain.UserStory) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *PostgresRepository) Save(ctx context.Context, s *storydomain.UserStory) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *PostgresRepository) UpdateKey(ctx context.Context, storyID uint, key string) error {
	return r.db.WithContext(ctx).
		Model(&storydomain.UserStory{}).
		Where("id = ?", storyID).
		Update("key", key).Error
}

func (r *PostgresRepository) FindByID(ctx context.Context, id uint) (*storydomain.UserStory, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *PostgresRepository) FindByKey(ctx context.Context, key string) (*storydomain.UserStory, error) {
	return r.findOne(ctx, "key = ?", key)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (*storydomain.UserStory, error) {
	var s storydomain.UserStory
	err := r.db.WithContext(ctx).Where(query, arg).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storydomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PostgresRepository) ListByProject(ctx context.Context, projectID uint) ([]storydomain.UserStory, error) {
	var stories []storydomain.UserStory
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("id asc").
		Find(&stories).Error
	if err != nil {
		return nil, err
	}
	return stories, nil
}

func (r *PostgresRepository) SetReleasePlan(ctx context.Context, storyID uint, planID *uint) error {
	return r.db.WithContext(ctx).
		Model(&storydomain.UserStory{}).
		Where("id = ?", storyID).
		Update("release_plan_id", planID).Error
}

func (r *PostgresRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&storydomain.UserStory{}, "id = ?", id).Error
}
