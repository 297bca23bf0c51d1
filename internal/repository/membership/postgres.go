package membership

import (
	"context"
	"errors"

	membershipdomain "agile-board-go/internal/domain/membership"
	roledomain "agile-board-go/internal/domain/role"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(membershipdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) Insert(ctx context.Context, m *membershipdomain.Membership) error {
	err := r.db.WithContext(ctx).Create(m).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return membershipdomain.ErrDuplicate
	}
	return err
}

func (r *PostgresRepository) Find(ctx context.Context, projectID, userID uint, rl roledomain.Role) (*membershipdomain.Membership, error) {
	var m membershipdomain.Membership
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ? AND role = ?", projectID, userID, rl).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, membershipdomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PostgresRepository) DeleteTriple(ctx context.Context, projectID, userID uint, rl roledomain.Role) error {
	return r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ? AND role = ?", projectID, userID, rl).
		Delete(&membershipdomain.Membership{}).Error
}

func (r *PostgresRepository) DeletePair(ctx context.Context, projectID, userID uint) error {
	return r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&membershipdomain.Membership{}).Error
}

func (r *PostgresRepository) RolesByPair(ctx context.Context, projectID, userID uint) ([]roledomain.Role, error) {
	var roles []roledomain.Role
	err := r.db.WithContext(ctx).
		Model(&membershipdomain.Membership{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Order("role asc").
		Pluck("role", &roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *PostgresRepository) CountByPair(ctx context.Context, projectID, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&membershipdomain.Membership{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) ListByProject(ctx context.Context, projectID uint) ([]membershipdomain.Membership, error) {
	var rows []membershipdomain.Membership
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("user_id asc, role asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
