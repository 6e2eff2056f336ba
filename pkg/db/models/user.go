package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pmcollective/pmc-backend/pkg/enums"
)

// User is a product-management learner profile. ExternalID is the stable
// identifier minted by the upstream identity provider; it is the only key
// callers ever present.
type User struct {
	ID                uuid.UUID               `gorm:"type:uuid;primaryKey"`
	ExternalID        string                  `gorm:"column:external_id;type:text;not null;uniqueIndex:uq_users_external_id"`
	Name              string                  `gorm:"type:text;not null"`
	Email             string                  `gorm:"type:text;not null"`
	LinkedinURL       string                  `gorm:"column:linkedin_url;type:text;not null"`
	ExperienceLevel   enums.ExperienceLevel   `gorm:"column:experience_level;type:text;not null;index:idx_users_experience;index:idx_users_experience_preparedness,priority:1"`
	PreparednessLevel enums.PreparednessLevel `gorm:"column:preparedness_level;type:text;not null;index:idx_users_preparedness;index:idx_users_experience_preparedness,priority:2"`
	Phone             *string                 `gorm:"type:text"`
	IsActive          bool                    `gorm:"column:is_active;not null;default:true"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
