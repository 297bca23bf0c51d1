package story

import "time"

type Status string

const (
	StatusNew        Status = "NEW"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusDone:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type UserStory struct {
	ID                 uint   `gorm:"primaryKey"`
	Title              string `gorm:"size:500;not null"`
	Key                string `gorm:"size:50;not null;uniqueIndex"`
	Description        string `gorm:"type:text"`
	AcceptanceCriteria string `gorm:"type:text"`
	StoryPoints        *int
	BusinessValue      *int
	Status             Status   `gorm:"type:varchar(20);not null"`
	Priority           Priority `gorm:"type:varchar(20);not null"`
	SprintReady        bool     `gorm:"not null;default:false"`
	Starred            bool     `gorm:"not null;default:false"`
	MVP                bool     `gorm:"column:is_mvp;not null;default:false"`

	ProjectID     uint  `gorm:"not null;index"`
	ReleasePlanID *uint `gorm:"index"`
	CreatedByID   *uint
	AssignedToID  *uint

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (UserStory) TableName() string {
	return "user_stories"
}

// ExportResult reports the issue created in the external tracker.
type ExportResult struct {
	IssueID   string
	IssueKey  string
	SelfURL   string
	BrowseURL string
}
