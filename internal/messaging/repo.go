package messaging

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pmcollective/pmc-backend/pkg/db/models"
)

// Repository exposes persistence helpers for message threads.
type Repository interface {
	Create(ctx context.Context, message *models.Message) error
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]models.Message, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a messaging repository bound to the database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, message *models.Message) error {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *repositoryImpl) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
