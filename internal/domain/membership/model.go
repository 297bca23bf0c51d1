package membership

import (
	"time"

	"agile-board-go/internal/domain/role"
)

// Membership grants one project-scoped role to one user. A user holding
// several roles in the same project owns one row per role; the triple
// (project, user, role) is unique.
type Membership struct {
	ID        uint      `gorm:"primaryKey"`
	ProjectID uint      `gorm:"not null;uniqueIndex:idx_membership_triple"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_membership_triple"`
	Role      role.Role `gorm:"type:varchar(50);not null;uniqueIndex:idx_membership_triple"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Membership) TableName() string {
	return "project_member_roles"
}
