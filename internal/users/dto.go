package users

import (
	"github.com/google/uuid"

	"github.com/pmcollective/pmc-backend/pkg/db/models"
)

// ProfileParams carries the attributes a learner submits when creating or
// updating their profile. ExternalID comes from the identity layer, never
// from the request body.
type ProfileParams struct {
	ExternalID        string  `validate:"required"`
	Name              string  `validate:"required"`
	Email             string  `validate:"required,email"`
	LinkedinURL       string  `validate:"omitempty,url"`
	ExperienceLevel   string  `validate:"required"`
	PreparednessLevel string  `validate:"required"`
	Phone             *string `validate:"omitempty"`
}

// SearchParams narrows the buddy search; empty filters match everything.
type SearchParams struct {
	RequesterExternalID string
	ExperienceLevel     string
	PreparednessLevel   string
}

// Candidate is the search projection shown to other learners. Contact
// fields stay out of it until a buddy request is accepted.
type Candidate struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	ExperienceLevel   string    `json:"experienceLevel"`
	PreparednessLevel string    `json:"preparednessLevel"`
	LinkedinURL       string    `json:"linkedinUrl,omitempty"`
}

func toCandidate(user models.User) Candidate {
	return Candidate{
		ID:                user.ID,
		Name:              user.Name,
		ExperienceLevel:   string(user.ExperienceLevel),
		PreparednessLevel: string(user.PreparednessLevel),
		LinkedinURL:       user.LinkedinURL,
	}
}
