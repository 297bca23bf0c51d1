package release

import (
	"context"
	"errors"

	releasedomain "agile-board-go/internal/domain/release"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(releasedomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) Create(ctx context.Context, p *releasedomain.ReleasePlan) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PostgresRepository) Save(ctx context.Context, p *releasedomain.ReleasePlan) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *PostgresRepository) UpdateKey(ctx context.Context, planID uint, key string) error {
	return r.db.WithContext(ctx).
		Model(&releasedomain.ReleasePlan{}).
		Where("id = ?", planID).
		Update("key", key).Error
}

func (r *PostgresRepository) FindByID(ctx context.Context, id uint) (*releasedomain.ReleasePlan, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *PostgresRepository) FindByKey(ctx context.Context, key string) (*releasedomain.ReleasePlan, error) {
	return r.findOne(ctx, "key = ?", key)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (*releasedomain.ReleasePlan, error) {
	var plan releasedomain.ReleasePlan
	err := r.db.WithContext(ctx).Where(query, arg).First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, releasedomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *PostgresRepository) ListByProject(ctx context.Context, projectID uint) ([]releasedomain.ReleasePlan, error) {
	var plans []releasedomain.ReleasePlan
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("id asc").
		Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *PostgresRepository) ListByStatus(ctx context.Context, status releasedomain.Status) ([]releasedomain.ReleasePlan, error) {
	var plans []releasedomain.ReleasePlan
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("id asc").
		Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *PostgresRepository) CountStories(ctx context.Context, planID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("user_stories").
		Where("release_plan_id = ?", planID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("UPDATE user_stories SET release_plan_id = NULL WHERE release_plan_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&releasedomain.ReleasePlan{}, "id = ?", id).Error
	})
}
