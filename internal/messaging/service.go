package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pmcollective/pmc-backend/internal/buddies"
	"github.com/pmcollective/pmc-backend/internal/users"
	"github.com/pmcollective/pmc-backend/pkg/db/models"
	"github.com/pmcollective/pmc-backend/pkg/enums"
	pkgerrors "github.com/pmcollective/pmc-backend/pkg/errors"
)

// SendParams carries a new message into an accepted request thread.
type SendParams struct {
	SenderExternalID string    `validate:"required"`
	RequestID        uuid.UUID `validate:"required"`
	Content          string    `validate:"required"`
}

// MessageView is one thread entry annotated for the requesting viewer.
type MessageView struct {
	ID            uuid.UUID `json:"id"`
	Content       string    `json:"content"`
	SenderName    string    `json:"senderName"`
	IsCurrentUser bool      `json:"isCurrentUser"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ServiceParams groups dependencies for the messaging service.
type ServiceParams struct {
	Repo        Repository
	BuddiesRepo buddies.Repository
	UsersRepo   users.Repository
}

// Service exposes business rules for buddy message threads.
type Service interface {
	Send(ctx context.Context, params SendParams) (uuid.UUID, error)
	List(ctx context.Context, externalID string, requestID uuid.UUID) ([]MessageView, error)
}

type service struct {
	repo        Repository
	buddiesRepo buddies.Repository
	usersRepo   users.Repository
}

// NewService builds a messaging service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "messaging repo is required")
	}
	if params.BuddiesRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buddies repo is required")
	}
	if params.UsersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "users repo is required")
	}
	return &service{
		repo:        params.Repo,
		buddiesRepo: params.BuddiesRepo,
		usersRepo:   params.UsersRepo,
	}, nil
}

// Send appends a message to an accepted request thread. The receiver is
// always the counterpart of the sender within the request; a sender who is
// party to neither side is rejected outright.
func (s *service) Send(ctx context.Context, params SendParams) (uuid.UUID, error) {
	sender, err := s.usersRepo.FindByExternalID(ctx, params.SenderExternalID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to resolve sender")
	}
	if sender == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "sender profile not found")
	}

	request, err := s.buddiesRepo.FindByID(ctx, params.RequestID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load request")
	}
	if request == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
	}
	if request.Status != enums.RequestStatusAccepted {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeStateConflict, "request is not accepted")
	}

	var receiverID uuid.UUID
	switch sender.ID {
	case request.SenderID:
		receiverID = request.ReceiverID
	case request.ReceiverID:
		receiverID = request.SenderID
	default:
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "sender is not a party to this request")
	}

	message := &models.Message{
		RequestID:  request.ID,
		SenderID:   sender.ID,
		ReceiverID: receiverID,
		Content:    params.Content,
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to store message")
	}
	return message.ID, nil
}

// List returns the thread in ascending creation order. Callers who cannot
// be resolved, or who are not a party to the request, get an empty list
// rather than an error.
func (s *service) List(ctx context.Context, externalID string, requestID uuid.UUID) ([]MessageView, error) {
	if externalID == "" {
		return []MessageView{}, nil
	}
	viewer, err := s.usersRepo.FindByExternalID(ctx, externalID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to resolve viewer")
	}
	if viewer == nil {
		return []MessageView{}, nil
	}

	request, err := s.buddiesRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load request")
	}
	if request == nil {
		return []MessageView{}, nil
	}
	if viewer.ID != request.SenderID && viewer.ID != request.ReceiverID {
		return []MessageView{}, nil
	}

	messages, err := s.repo.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list messages")
	}

	names, err := s.senderNames(ctx, messages)
	if err != nil {
		return nil, err
	}

	views := make([]MessageView, 0, len(messages))
	for _, message := range messages {
		name, ok := names[message.SenderID]
		if !ok {
			name = "Unknown"
		}
		views = append(views, MessageView{
			ID:            message.ID,
			Content:       message.Content,
			SenderName:    name,
			IsCurrentUser: message.SenderID == viewer.ID,
			CreatedAt:     message.CreatedAt,
		})
	}
	return views, nil
}

func (s *service) senderNames(ctx context.Context, messages []models.Message) (map[uuid.UUID]string, error) {
	if len(messages) == 0 {
		return map[uuid.UUID]string{}, nil
	}

	seen := make(map[uuid.UUID]struct{}, len(messages))
	ids := make([]uuid.UUID, 0, len(messages))
	for _, message := range messages {
		if _, ok := seen[message.SenderID]; ok {
			continue
		}
		seen[message.SenderID] = struct{}{}
		ids = append(ids, message.SenderID)
	}

	found, err := s.usersRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load sender profiles")
	}
	names := make(map[uuid.UUID]string, len(found))
	for _, user := range found {
		names[user.ID] = user.Name
	}
	return names, nil
}
