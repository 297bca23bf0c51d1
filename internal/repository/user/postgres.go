package user

import (
	"context"
	"errors"

	membershipdomain "agile-board-go/internal/domain/membership"
	userdomain "agile-board-go/internal/domain/user"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(userdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) Create(ctx context.Context, u *userdomain.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *PostgresRepository) Save(ctx context.Context, u *userdomain.User) error {
	return r.db.WithContext(ctx).Omit("Roles").Save(u).Error
}

func (r *PostgresRepository) FindByID(ctx context.Context, id uint) (*userdomain.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*userdomain.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (*userdomain.User, error) {
	var u userdomain.User
	err := r.db.WithContext(ctx).Preload("Roles").Where(query, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, userdomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]userdomain.User, error) {
	var users []userdomain.User
	err := r.db.WithContext(ctx).Preload("Roles").Order("id asc").Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *PostgresRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", username)
}

func (r *PostgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

func (r *PostgresRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userdomain.User{}).Where(query, arg).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) ReplaceSystemRoles(ctx context.Context, userID uint, roles []userdomain.SystemRole) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&userdomain.SystemRole{}).Error; err != nil {
			return err
		}
		if len(roles) == 0 {
			return nil
		}
		return tx.Create(&roles).Error
	})
}

func (r *PostgresRepository) Delete(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&membershipdomain.Membership{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("UPDATE user_stories SET created_by_id = NULL WHERE created_by_id = ?", userID).Error; err != nil {
			return err
		}
		if err := tx.Exec("UPDATE user_stories SET assigned_to_id = NULL WHERE assigned_to_id = ?", userID).Error; err != nil {
			return err
		}
		if err := tx.Exec("UPDATE release_plans SET created_by_id = NULL WHERE created_by_id = ?", userID).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&userdomain.SystemRole{}).Error; err != nil {
			return err
		}
		return tx.Delete(&userdomain.User{}, "id = ?", userID).Error
	})
}

// ResolveUserID maps a username to its id; unknown usernames resolve to
// nil so optional creator references stay optional.
func (r *PostgresRepository) ResolveUserID(ctx context.Context, username string) (*uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&userdomain.User{}).
		Where("username = ?", username).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return &ids[0], nil
}
