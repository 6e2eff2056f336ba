package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pmcollective/pmc-backend/pkg/db/models"
	"github.com/pmcollective/pmc-backend/pkg/enums"
)

// Repository exposes persistence helpers for user profiles.
type Repository interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	FindByExternalID(ctx context.Context, externalID string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
	Search(ctx context.Context, params SearchQuery) ([]models.User, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a users repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// SearchQuery selects via the most specific index available: both
// filters hit the compound (experience, preparedness) index, one filter its
// single-column index, none scans all users.
type SearchQuery struct {
	ExperienceLevel   *enums.ExperienceLevel
	PreparednessLevel *enums.PreparednessLevel
	ExcludeID         uuid.UUID
	ActiveOnly        bool
}

func (r *repositoryImpl) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repositoryImpl) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *repositoryImpl) FindByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *repositoryImpl) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	return found, nil
}

func (r *repositoryImpl) Search(ctx context.Context, params SearchQuery) ([]models.User, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})

	switch {
	case params.ExperienceLevel != nil && params.PreparednessLevel != nil:
		query = query.Where("experience_level = ? AND preparedness_level = ?", *params.ExperienceLevel, *params.PreparednessLevel)
	case params.ExperienceLevel != nil:
		query = query.Where("experience_level = ?", *params.ExperienceLevel)
	case params.PreparednessLevel != nil:
		query = query.Where("preparedness_level = ?", *params.PreparednessLevel)
	}

	if params.ExcludeID != uuid.Nil {
		query = query.Where("id <> ?", params.ExcludeID)
	}
	if params.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var found []models.User
	if err := query.Order("created_at ASC, id ASC").Find(&found).Error; err != nil {
		return nil, err
	}
	return found, nil
}
