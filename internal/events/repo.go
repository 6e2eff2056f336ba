package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pmcollective/pmc-backend/pkg/db/models"
)

// Repository exposes persistence helpers for events and registrations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateEvent(ctx context.Context, event *models.Event) error
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	FindEventByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	ListPublishedEvents(ctx context.Context) ([]models.Event, error)
	CreateRegistration(ctx context.Context, registration *models.Registration) error
	DeleteRegistrationsByEvent(ctx context.Context, eventID uuid.UUID) error
	ListRegistrationsByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Registration, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an events repository bound to the database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repositoryImpl) UpdateEvent(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

func (r *repositoryImpl) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Event{}).Error
}

func (r *repositoryImpl) FindEventByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

func (r *repositoryImpl) ListEvents(ctx context.Context) ([]models.Event, error) {
	var found []models.Event
	if err := r.db.WithContext(ctx).Order("date_time ASC").Find(&found).Error; err != nil {
		return nil, err
	}
	return found, nil
}

func (r *repositoryImpl) ListPublishedEvents(ctx context.Context) ([]models.Event, error) {
	var found []models.Event
	err := r.db.WithContext(ctx).
		Where("published = ?", true).
		Order("date_time ASC").
		Find(&found).Error
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (r *repositoryImpl) CreateRegistration(ctx context.Context, registration *models.Registration) error {
	if registration.ID == uuid.Nil {
		registration.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(registration).Error
}

func (r *repositoryImpl) DeleteRegistrationsByEvent(ctx context.Context, eventID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("event_id = ?", eventID).Delete(&models.Registration{}).Error
}

func (r *repositoryImpl) ListRegistrationsByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Registration, error) {
	var found []models.Registration
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Find(&found).Error; err != nil {
		return nil, err
	}
	return found, nil
}
