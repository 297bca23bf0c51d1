package release

import "time"

type Status string

const (
	StatusPlanned    Status = "PLANNED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusReleased   Status = "RELEASED"
	StatusCancelled  Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPlanned, StatusInProgress, StatusReleased, StatusCancelled:
		return true
	}
	return false
}

type ReleasePlan struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:200;not null"`
	Key         string `gorm:"size:50;not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	Goals       string `gorm:"type:text"`
	// Dates are date-valued; TargetDate is never before StartDate,
	// checked on creation and against the merged values on update.
	StartDate  time.Time `gorm:"type:date;not null"`
	TargetDate time.Time `gorm:"type:date;not null"`
	Status     Status    `gorm:"type:varchar(20);not null"`

	ProjectID uint `gorm:"not null;index"`
	// CreatedByID survives deletion of the creating user (nulled out).
	CreatedByID *uint

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ReleasePlan) TableName() string {
	return "release_plans"
}
