package project

import (
	"context"
	"errors"

	membershipdomain "agile-board-go/internal/domain/membership"
	projectdomain "agile-board-go/internal/domain/project"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(projectdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) Create(ctx context.Context, p *projectdomain.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PostgresRepository) UpdateKey(ctx context.Context, projectID uint, key string) error {
	return r.db.WithContext(ctx).
		Model(&projectdomain.Project{}).
		Where("id = ?", projectID).
		Update("key", key).Error
}

func (r *PostgresRepository) FindByID(ctx context.Context, id uint) (*projectdomain.Project, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *PostgresRepository) FindByKey(ctx context.Context, key string) (*projectdomain.Project, error) {
	return r.findOne(ctx, "key = ?", key)
}

func (r *PostgresRepository) FindByCode(ctx context.Context, code string) (*projectdomain.Project, error) {
	var p projectdomain.Project
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, projectdomain.ErrCodeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (*projectdomain.Project, error) {
	var p projectdomain.Project
	err := r.db.WithContext(ctx).Where(query, arg).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, projectdomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]projectdomain.Project, error) {
	var projects []projectdomain.Project
	err := r.db.WithContext(ctx).Order("id asc").Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *PostgresRepository) UserExists(ctx context.Context, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("users").Where("id = ?", userID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) AddMember(ctx context.Context, m *membershipdomain.Membership) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *PostgresRepository) ListMembers(ctx context.Context, projectID uint) ([]projectdomain.Member, error) {
	var rows []projectdomain.Member
	err := r.db.WithContext(ctx).
		Table("project_member_roles").
		Select("project_member_roles.user_id, users.username, users.full_name, project_member_roles.role").
		Joins("join users on users.id = project_member_roles.user_id").
		Where("project_member_roles.project_id = ?", projectID).
		Order("project_member_roles.user_id asc, project_member_roles.role asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) DeleteStoriesByProject(ctx context.Context, projectID uint) error {
	return r.db.WithContext(ctx).Exec("DELETE FROM user_stories WHERE project_id = ?", projectID).Error
}

func (r *PostgresRepository) DeleteReleasePlansByProject(ctx context.Context, projectID uint) error {
	return r.db.WithContext(ctx).Exec("DELETE FROM release_plans WHERE project_id = ?", projectID).Error
}

func (r *PostgresRepository) DeleteMembershipsByProject(ctx context.Context, projectID uint) error {
	return r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Delete(&membershipdomain.Membership{}).Error
}

func (r *PostgresRepository) DeleteProject(ctx context.Context, projectID uint) error {
	return r.db.WithContext(ctx).Delete(&projectdomain.Project{}, "id = ?", projectID).Error
}
