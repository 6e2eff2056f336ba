package digest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pmcollective/pmc-backend/internal/users"
	"github.com/pmcollective/pmc-backend/pkg/db/models"
	"github.com/pmcollective/pmc-backend/pkg/email"
	"github.com/pmcollective/pmc-backend/pkg/enums"
	pkgerrors "github.com/pmcollective/pmc-backend/pkg/errors"
	"github.com/pmcollective/pmc-backend/pkg/logger"
)

type stubPendingRepo struct {
	pending []models.BuddyRequest
}

func (s *stubPendingRepo) Create(ctx context.Context, request *models.BuddyRequest) error {
	return nil
}

func (s *stubPendingRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.BuddyRequest, error) {
	return nil, nil
}

func (s *stubPendingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.RequestStatus) error {
	return nil
}

func (s *stubPendingRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (s *stubPendingRepo) ListByReceiver(ctx context.Context, receiverID uuid.UUID, status enums.RequestStatus) ([]models.BuddyRequest, error) {
	return nil, nil
}

func (s *stubPendingRepo) ListBySender(ctx context.Context, senderID uuid.UUID) ([]models.BuddyRequest, error) {
	return nil, nil
}

func (s *stubPendingRepo) ListAcceptedByParticipant(ctx context.Context, userID uuid.UUID) ([]models.BuddyRequest, error) {
	return nil, nil
}

func (s *stubPendingRepo) ListAllPending(ctx context.Context) ([]models.BuddyRequest, error) {
	return s.pending, nil
}

type stubReceivers struct {
	byID map[uuid.UUID]*models.User
}

func (s *stubReceivers) Create(ctx context.Context, user *models.User) error { return nil }
func (s *stubReceivers) Update(ctx context.Context, user *models.User) error { return nil }

func (s *stubReceivers) FindByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return nil, nil
}

func (s *stubReceivers) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.byID[id], nil
}

func (s *stubReceivers) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	var found []models.User
	for _, id := range ids {
		if user, ok := s.byID[id]; ok {
			found = append(found, *user)
		}
	}
	return found, nil
}

func (s *stubReceivers) Search(ctx context.Context, params users.SearchQuery) ([]models.User, error) {
	return nil, nil
}

type stubBatchMailer struct {
	batches [][]email.Message
	result  email.Result
	err     error
}

func (s *stubBatchMailer) SendBatch(ctx context.Context, msgs []email.Message) (email.Result, error) {
	s.batches = append(s.batches, msgs)
	if s.err != nil {
		return email.Result{}, s.err
	}
	return s.result, nil
}

func (s *stubBatchMailer) From() string { return "PMC <no-reply@pmcollective.tech>" }

func digestReceiver(name string, active bool) *models.User {
	return &models.User{
		ID:       uuid.New(),
		Name:     name,
		Email:    strings.ToLower(name) + "@example.com",
		IsActive: active,
	}
}

func pendingTo(receiverID uuid.UUID, n int) []models.BuddyRequest {
	requests := make([]models.BuddyRequest, 0, n)
	for i := 0; i < n; i++ {
		requests = append(requests, models.BuddyRequest{
			ID:         uuid.New(),
			SenderID:   uuid.New(),
			ReceiverID: receiverID,
			Status:     enums.RequestStatusPending,
		})
	}
	return requests
}

func newDigestService(t *testing.T, repo *stubPendingRepo, receivers *stubReceivers, mailer *stubBatchMailer) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		BuddiesRepo: repo,
		UsersRepo:   receivers,
		Mailer:      mailer,
		Logger:      logger.New(logger.Options{ServiceName: "digest-test", Level: zerolog.ErrorLevel}),
	})
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return svc
}

func TestSendWeeklyDigestGroupsPerReceiver(t *testing.T) {
	carol := digestReceiver("Carol", true)
	dave := digestReceiver("Dave", true)
	pending := append(pendingTo(carol.ID, 3), pendingTo(dave.ID, 1)...)
	mailer := &stubBatchMailer{result: email.Result{Success: true}}
	svc := newDigestService(t,
		&stubPendingRepo{pending: pending},
		&stubReceivers{byID: map[uuid.UUID]*models.User{carol.ID: carol, dave.ID: dave}},
		mailer)

	dispatched, err := svc.SendWeeklyDigest(context.Background())
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if dispatched != 2 {
		t.Fatalf("expected 2 emails dispatched got %d", dispatched)
	}
	if len(mailer.batches) != 1 {
		t.Fatalf("expected a single batch call got %d", len(mailer.batches))
	}

	byRecipient := make(map[string]string)
	for _, msg := range mailer.batches[0] {
		byRecipient[msg.To] = msg.Text
	}
	if !strings.Contains(byRecipient["carol@example.com"], "3 pending buddy requests") {
		t.Fatalf("unexpected carol body %q", byRecipient["carol@example.com"])
	}
	if !strings.Contains(byRecipient["dave@example.com"], "1 pending buddy request") {
		t.Fatalf("unexpected dave body %q", byRecipient["dave@example.com"])
	}
}

func TestSendWeeklyDigestSkipsInactive(t *testing.T) {
	active := digestReceiver("Erin", true)
	inactive := digestReceiver("Frank", false)
	pending := append(pendingTo(active.ID, 1), pendingTo(inactive.ID, 2)...)
	mailer := &stubBatchMailer{result: email.Result{Success: true}}
	svc := newDigestService(t,
		&stubPendingRepo{pending: pending},
		&stubReceivers{byID: map[uuid.UUID]*models.User{active.ID: active, inactive.ID: inactive}},
		mailer)

	dispatched, err := svc.SendWeeklyDigest(context.Background())
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if dispatched != 1 {
		t.Fatalf("expected 1 email dispatched got %d", dispatched)
	}
	if len(mailer.batches[0]) != 1 || mailer.batches[0][0].To != "erin@example.com" {
		t.Fatal("expected only the active receiver in the batch")
	}
}

func TestSendWeeklyDigestNoPending(t *testing.T) {
	mailer := &stubBatchMailer{result: email.Result{Success: true}}
	svc := newDigestService(t, &stubPendingRepo{}, &stubReceivers{byID: map[uuid.UUID]*models.User{}}, mailer)

	dispatched, err := svc.SendWeeklyDigest(context.Background())
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if dispatched != 0 {
		t.Fatalf("expected 0 dispatched got %d", dispatched)
	}
	if len(mailer.batches) != 0 {
		t.Fatal("expected no batch call without pending requests")
	}
}

func TestSendWeeklyDigestTransportFailure(t *testing.T) {
	receiver := digestReceiver("Heidi", true)
	sendErr := errors.New("dial tcp: connection refused")
	mailer := &stubBatchMailer{err: sendErr}
	svc := newDigestService(t,
		&stubPendingRepo{pending: pendingTo(receiver.ID, 1)},
		&stubReceivers{byID: map[uuid.UUID]*models.User{receiver.ID: receiver}},
		mailer)

	dispatched, err := svc.SendWeeklyDigest(context.Background())
	if dispatched != 0 {
		t.Fatalf("expected 0 dispatched got %d", dispatched)
	}
	if !errors.Is(err, sendErr) {
		t.Fatalf("expected transport error preserved got %v", err)
	}
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error got %v", err)
	}
}

func TestSendWeeklyDigestProviderRejection(t *testing.T) {
	receiver := digestReceiver("Grace", true)
	mailer := &stubBatchMailer{result: email.Result{Success: false, Error: "rate limited"}}
	svc := newDigestService(t,
		&stubPendingRepo{pending: pendingTo(receiver.ID, 1)},
		&stubReceivers{byID: map[uuid.UUID]*models.User{receiver.ID: receiver}},
		mailer)

	dispatched, err := svc.SendWeeklyDigest(context.Background())
	if err == nil {
		t.Fatal("expected error on provider rejection")
	}
	if dispatched != 0 {
		t.Fatalf("expected 0 dispatched got %d", dispatched)
	}
}
