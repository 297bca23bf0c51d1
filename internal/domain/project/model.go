package project

import (
	"time"

	"agile-board-go/internal/domain/role"
)

type Project struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:200;not null"`
	Description string `gorm:"type:text"`
	// Key is the human-readable identifier (e.g. PROJ-007). It is written
	// twice during creation: a placeholder on the first insert, then the
	// final value derived from the assigned id, inside one transaction.
	Key       string    `gorm:"size:50;not null;uniqueIndex"`
	Code      string    `gorm:"size:50;not null"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Member is a project member joined with account data, one row per role.
type Member struct {
	UserID   uint      `gorm:"column:user_id"`
	Username string    `gorm:"column:username"`
	FullName string    `gorm:"column:full_name"`
	Role     role.Role `gorm:"column:role"`
}
