package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pmcollective/pmc-backend/pkg/enums"
)

// BuddyRequest pairs a sender with a receiver. The ordered (sender,
// receiver) pair is unique regardless of status, so an insert doubles as the
// duplicate check. An accepted request is the permanent record of a pairing
// and keys its message thread.
type BuddyRequest struct {
	ID         uuid.UUID           `gorm:"type:uuid;primaryKey"`
	SenderID   uuid.UUID           `gorm:"column:sender_id;type:uuid;not null;index:idx_buddy_requests_sender;uniqueIndex:uq_buddy_requests_sender_receiver,priority:1"`
	ReceiverID uuid.UUID           `gorm:"column:receiver_id;type:uuid;not null;index:idx_buddy_requests_receiver;uniqueIndex:uq_buddy_requests_sender_receiver,priority:2"`
	Status     enums.RequestStatus `gorm:"type:text;not null;index:idx_buddy_requests_status"`
	Message    *string             `gorm:"type:text"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
