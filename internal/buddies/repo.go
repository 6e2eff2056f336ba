package buddies

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pmcollective/pmc-backend/pkg/db/models"
	"github.com/pmcollective/pmc-backend/pkg/enums"
)

// Repository exposes persistence helpers for buddy requests.
type Repository interface {
	Create(ctx context.Context, request *models.BuddyRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.BuddyRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.RequestStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByReceiver(ctx context.Context, receiverID uuid.UUID, status enums.RequestStatus) ([]models.BuddyRequest, error)
	ListBySender(ctx context.Context, senderID uuid.UUID) ([]models.BuddyRequest, error)
	ListAcceptedByParticipant(ctx context.Context, userID uuid.UUID) ([]models.BuddyRequest, error)
	ListAllPending(ctx context.Context) ([]models.BuddyRequest, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a buddy request repository bound to the database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, request *models.BuddyRequest) error {
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.BuddyRequest, error) {
	var request models.BuddyRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

func (r *repositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.RequestStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.BuddyRequest{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.BuddyRequest{}).Error
}

func (r *repositoryImpl) ListByReceiver(ctx context.Context, receiverID uuid.UUID, status enums.RequestStatus) ([]models.BuddyRequest, error) {
	var requests []models.BuddyRequest
	err := r.db.WithContext(ctx).
		Where("receiver_id = ? AND status = ?", receiverID, status).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *repositoryImpl) ListBySender(ctx context.Context, senderID uuid.UUID) ([]models.BuddyRequest, error) {
	var requests []models.BuddyRequest
	err := r.db.WithContext(ctx).
		Where("sender_id = ?", senderID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// ListAcceptedByParticipant returns accepted requests where the user is on
// either side of the pair.
func (r *repositoryImpl) ListAcceptedByParticipant(ctx context.Context, userID uuid.UUID) ([]models.BuddyRequest, error) {
	var requests []models.BuddyRequest
	err := r.db.WithContext(ctx).
		Where("status = ? AND (sender_id = ? OR receiver_id = ?)", enums.RequestStatusAccepted, userID, userID).
		Order("updated_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *repositoryImpl) ListAllPending(ctx context.Context) ([]models.BuddyRequest, error) {
	var requests []models.BuddyRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.RequestStatusPending).
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}
