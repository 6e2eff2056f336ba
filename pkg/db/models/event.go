package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pmcollective/pmc-backend/pkg/db/types"
)

// Event is an admin-authored webinar. Deleting an event removes its
// registrations in the same transaction.
type Event struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Title       string           `gorm:"type:text;not null"`
	Description string           `gorm:"type:text;not null"`
	DateTime    time.Time        `gorm:"column:date_time;not null"`
	Host        string           `gorm:"type:text;not null"`
	Tags        types.StringList `gorm:"type:text;not null"`
	Published   bool             `gorm:"not null;default:false"`
	MeetingLink string           `gorm:"column:meeting_link;type:text;not null"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
