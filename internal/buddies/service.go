package buddies

import (
	"context"

	"github.com/google/uuid"

	"github.com/pmcollective/pmc-backend/internal/users"
	"github.com/pmcollective/pmc-backend/pkg/db"
	"github.com/pmcollective/pmc-backend/pkg/db/models"
	"github.com/pmcollective/pmc-backend/pkg/enums"
	pkgerrors "github.com/pmcollective/pmc-backend/pkg/errors"
)

// ServiceParams groups dependencies for the buddies service.
type ServiceParams struct {
	Repo      Repository
	UsersRepo users.Repository
}

// Service exposes business rules for the buddy request lifecycle.
type Service interface {
	Send(ctx context.Context, params SendParams) (uuid.UUID, error)
	Respond(ctx context.Context, params RespondParams) error
	Withdraw(ctx context.Context, params WithdrawParams) error
	ListIncoming(ctx context.Context, externalID string) ([]IncomingRequest, error)
	ListSent(ctx context.Context, externalID string) ([]SentRequest, error)
	ListAcceptedBuddies(ctx context.Context, externalID string) ([]AcceptedBuddy, error)
}

type service struct {
	repo      Repository
	usersRepo users.Repository
}

// NewService builds a buddies service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buddies repo is required")
	}
	if params.UsersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "users repo is required")
	}
	return &service{repo: params.Repo, usersRepo: params.UsersRepo}, nil
}

// Send creates a pending request toward the receiver. The ordered
// (sender, receiver) unique index is the duplicate check, so two concurrent
// sends for the same pair cannot both succeed.
func (s *service) Send(ctx context.Context, params SendParams) (uuid.UUID, error) {
	sender, err := s.resolve(ctx, params.SenderExternalID)
	if err != nil {
		return uuid.Nil, err
	}
	if sender == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "sender profile not found")
	}

	receiver, err := s.usersRepo.FindByID(ctx, params.ReceiverID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to resolve receiver")
	}
	if receiver == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "receiver not found")
	}

	request := &models.BuddyRequest{
		SenderID:   sender.ID,
		ReceiverID: params.ReceiverID,
		Status:     enums.RequestStatusPending,
		Message:    params.Message,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		if db.IsUniqueViolation(err, "uq_buddy_requests_sender_receiver") {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeConflict, "request already sent")
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create request")
	}
	return request.ID, nil
}

// Respond moves a pending request to its terminal status. Only the receiver
// may respond, and only once.
func (s *service) Respond(ctx context.Context, params RespondParams) error {
	decision, err := enums.ParseRequestDecision(params.Decision)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "decision must be accepted or rejected")
	}

	receiver, err := s.resolve(ctx, params.ReceiverExternalID)
	if err != nil {
		return err
	}
	if receiver == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "receiver profile not found")
	}

	request, err := s.repo.FindByID(ctx, params.RequestID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load request")
	}
	if request == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
	}
	if request.ReceiverID != receiver.ID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the receiver can respond")
	}
	if request.Status != enums.RequestStatusPending {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "request already handled")
	}

	if err := s.repo.UpdateStatus(ctx, request.ID, decision.Status()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to update request")
	}
	return nil
}

// Withdraw deletes a pending request. Accepted requests are the permanent
// record of a pairing and key its message thread, so they stay.
func (s *service) Withdraw(ctx context.Context, params WithdrawParams) error {
	sender, err := s.resolve(ctx, params.SenderExternalID)
	if err != nil {
		return err
	}
	if sender == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "sender profile not found")
	}

	request, err := s.repo.FindByID(ctx, params.RequestID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load request")
	}
	if request == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
	}
	if request.SenderID != sender.ID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the sender can withdraw")
	}
	if request.Status != enums.RequestStatusPending {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending requests can be withdrawn")
	}

	if err := s.repo.Delete(ctx, request.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to withdraw request")
	}
	return nil
}

// ListIncoming returns pending requests addressed to the caller with the
// sender snapshot attached. An unresolved caller gets an empty list.
func (s *service) ListIncoming(ctx context.Context, externalID string) ([]IncomingRequest, error) {
	user, err := s.resolve(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return []IncomingRequest{}, nil
	}

	requests, err := s.repo.ListByReceiver(ctx, user.ID, enums.RequestStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list incoming requests")
	}

	senders, err := s.counterparts(ctx, requests, func(r models.BuddyRequest) uuid.UUID { return r.SenderID })
	if err != nil {
		return nil, err
	}

	incoming := make([]IncomingRequest, 0, len(requests))
	for _, request := range requests {
		sender, ok := senders[request.SenderID]
		if !ok {
			continue
		}
		incoming = append(incoming, IncomingRequest{
			ID:        request.ID,
			Message:   request.Message,
			CreatedAt: request.CreatedAt,
			Sender:    toPublicProfile(sender),
		})
	}
	return incoming, nil
}

// ListSent returns every request the caller sent, any status, with the
// receiver snapshot attached.
func (s *service) ListSent(ctx context.Context, externalID string) ([]SentRequest, error) {
	user, err := s.resolve(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return []SentRequest{}, nil
	}

	requests, err := s.repo.ListBySender(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list sent requests")
	}

	receivers, err := s.counterparts(ctx, requests, func(r models.BuddyRequest) uuid.UUID { return r.ReceiverID })
	if err != nil {
		return nil, err
	}

	sent := make([]SentRequest, 0, len(requests))
	for _, request := range requests {
		receiver, ok := receivers[request.ReceiverID]
		if !ok {
			continue
		}
		sent = append(sent, SentRequest{
			ID:        request.ID,
			Status:    string(request.Status),
			Message:   request.Message,
			CreatedAt: request.CreatedAt,
			Receiver:  toPublicProfile(receiver),
		})
	}
	return sent, nil
}

// ListAcceptedBuddies returns the counterpart of every accepted request the
// caller is party to, phone included, keyed by the originating request id.
func (s *service) ListAcceptedBuddies(ctx context.Context, externalID string) ([]AcceptedBuddy, error) {
	user, err := s.resolve(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return []AcceptedBuddy{}, nil
	}

	requests, err := s.repo.ListAcceptedByParticipant(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list accepted requests")
	}

	counterpartID := func(r models.BuddyRequest) uuid.UUID {
		if r.SenderID == user.ID {
			return r.ReceiverID
		}
		return r.SenderID
	}
	profiles, err := s.counterparts(ctx, requests, counterpartID)
	if err != nil {
		return nil, err
	}

	buddies := make([]AcceptedBuddy, 0, len(requests))
	for _, request := range requests {
		counterpart, ok := profiles[counterpartID(request)]
		if !ok {
			continue
		}
		buddies = append(buddies, AcceptedBuddy{
			RequestID: request.ID,
			Buddy:     toBuddyProfile(counterpart),
		})
	}
	return buddies, nil
}

func (s *service) resolve(ctx context.Context, externalID string) (*models.User, error) {
	if externalID == "" {
		return nil, nil
	}
	user, err := s.usersRepo.FindByExternalID(ctx, externalID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to resolve caller")
	}
	return user, nil
}

// counterparts batch-loads the users on the far side of each request so
// listing N requests costs one lookup instead of N.
func (s *service) counterparts(ctx context.Context, requests []models.BuddyRequest, pick func(models.BuddyRequest) uuid.UUID) (map[uuid.UUID]models.User, error) {
	if len(requests) == 0 {
		return map[uuid.UUID]models.User{}, nil
	}

	seen := make(map[uuid.UUID]struct{}, len(requests))
	ids := make([]uuid.UUID, 0, len(requests))
	for _, request := range requests {
		id := pick(request)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	found, err := s.usersRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load counterpart profiles")
	}
	byID := make(map[uuid.UUID]models.User, len(found))
	for _, user := range found {
		byID[user.ID] = user
	}
	return byID, nil
}
