package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is one entry of the append-only thread owned by an accepted buddy
// request. ReceiverID is always the request counterpart of the sender and is
// computed, never supplied by callers.
type Message struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequestID  uuid.UUID `gorm:"column:request_id;type:uuid;not null;index:idx_messages_request"`
	SenderID   uuid.UUID `gorm:"column:sender_id;type:uuid;not null;index:idx_messages_sender"`
	ReceiverID uuid.UUID `gorm:"column:receiver_id;type:uuid;not null;index:idx_messages_receiver"`
	Content    string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
