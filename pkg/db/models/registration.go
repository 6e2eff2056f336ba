package models

import (
	"time"

	"github.com/google/uuid"
)

// Registration records one attendee for one event. The (event, email) pair
// is unique.
type Registration struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventID      uuid.UUID `gorm:"column:event_id;type:uuid;not null;index:idx_registrations_event;uniqueIndex:uq_registrations_event_email,priority:1"`
	Name         string    `gorm:"type:text;not null"`
	Email        string    `gorm:"type:text;not null;uniqueIndex:uq_registrations_event_email,priority:2"`
	RegisteredAt time.Time `gorm:"column:registered_at;not null"`
}
