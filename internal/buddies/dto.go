package buddies

import (
	"time"

	"github.com/google/uuid"

	"github.com/pmcollective/pmc-backend/pkg/db/models"
)

// SendParams carries a new buddy request from the resolved sender.
type SendParams struct {
	SenderExternalID string    `validate:"required"`
	ReceiverID       uuid.UUID `validate:"required"`
	Message          *string
}

// RespondParams carries the receiver's decision on a pending request.
type RespondParams struct {
	ReceiverExternalID string    `validate:"required"`
	RequestID          uuid.UUID `validate:"required"`
	Decision           string    `validate:"required"`
}

// WithdrawParams identifies the pending request the sender wants to remove.
type WithdrawParams struct {
	SenderExternalID string    `validate:"required"`
	RequestID        uuid.UUID `validate:"required"`
}

// PublicProfile is the counterpart snapshot embedded in request listings.
// Phone never appears here; it is reserved for accepted buddies.
type PublicProfile struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	ExperienceLevel   string    `json:"experienceLevel"`
	PreparednessLevel string    `json:"preparednessLevel"`
	LinkedinURL       string    `json:"linkedinUrl,omitempty"`
}

// BuddyProfile is the full counterpart snapshot for accepted pairings.
// Acceptance is the phone-visibility gate.
type BuddyProfile struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Phone             *string   `json:"phone,omitempty"`
	ExperienceLevel   string    `json:"experienceLevel"`
	PreparednessLevel string    `json:"preparednessLevel"`
	LinkedinURL       string    `json:"linkedinUrl,omitempty"`
}

// IncomingRequest is a pending request addressed to the caller.
type IncomingRequest struct {
	ID        uuid.UUID     `json:"id"`
	Message   *string       `json:"message,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	Sender    PublicProfile `json:"sender"`
}

// SentRequest is a request the caller sent, in any status.
type SentRequest struct {
	ID        uuid.UUID     `json:"id"`
	Status    string        `json:"status"`
	Message   *string       `json:"message,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	Receiver  PublicProfile `json:"receiver"`
}

// AcceptedBuddy pairs the counterpart profile with the request id that keys
// the shared message thread.
type AcceptedBuddy struct {
	RequestID uuid.UUID    `json:"requestId"`
	Buddy     BuddyProfile `json:"buddy"`
}

func toPublicProfile(user models.User) PublicProfile {
	return PublicProfile{
		ID:                user.ID,
		Name:              user.Name,
		Email:             user.Email,
		ExperienceLevel:   string(user.ExperienceLevel),
		PreparednessLevel: string(user.PreparednessLevel),
		LinkedinURL:       user.LinkedinURL,
	}
}

func toBuddyProfile(user models.User) BuddyProfile {
	return BuddyProfile{
		ID:                user.ID,
		Name:              user.Name,
		Email:             user.Email,
		Phone:             user.Phone,
		ExperienceLevel:   string(user.ExperienceLevel),
		PreparednessLevel: string(user.PreparednessLevel),
		LinkedinURL:       user.LinkedinURL,
	}
}
