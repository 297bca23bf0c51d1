package user

import (
	"time"

	"agile-board-go/internal/domain/role"
)

type User struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"size:50;not null;uniqueIndex"`
	Email        string    `gorm:"size:100;not null;uniqueIndex"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FullName     string    `gorm:"size:100"`
	Active       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`

	Roles []SystemRole `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// SystemRole is a system-wide role row. Unlike memberships these apply
// across all projects; only SYSTEM_ADMIN carries override semantics.
type SystemRole struct {
	UserID uint      `gorm:"primaryKey"`
	Role   role.Role `gorm:"type:varchar(50);primaryKey"`
}

func (SystemRole) TableName() string {
	return "user_system_roles"
}

// RoleList flattens the role rows.
func (u *User) RoleList() []role.Role {
	roles := make([]role.Role, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, r.Role)
	}
	return roles
}

func (u *User) IsSystemAdmin() bool {
	return role.Contains(u.RoleList(), role.SystemAdmin)
}
