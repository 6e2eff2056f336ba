package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pmcollective/pmc-backend/pkg/db/models"
	"github.com/pmcollective/pmc-backend/pkg/email"
	pkgerrors "github.com/pmcollective/pmc-backend/pkg/errors"
	"github.com/pmcollective/pmc-backend/pkg/logger"
)

type stubEventsRepo struct {
	events              map[uuid.UUID]*models.Event
	registrations       map[uuid.UUID]*models.Registration
	registrationErr     error
	deletedEvents       []uuid.UUID
	deletedRegistration []uuid.UUID
}

func newStubEventsRepo() *stubEventsRepo {
	return &stubEventsRepo{
		events:        make(map[uuid.UUID]*models.Event),
		registrations: make(map[uuid.UUID]*models.Registration),
	}
}

func (s *stubEventsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubEventsRepo) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	s.events[event.ID] = event
	return nil
}

func (s *stubEventsRepo) UpdateEvent(ctx context.Context, event *models.Event) error {
	s.events[event.ID] = event
	return nil
}

func (s *stubEventsRepo) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	delete(s.events, id)
	s.deletedEvents = append(s.deletedEvents, id)
	return nil
}

func (s *stubEventsRepo) FindEventByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return s.events[id], nil
}

func (s *stubEventsRepo) ListEvents(ctx context.Context) ([]models.Event, error) {
	var found []models.Event
	for _, event := range s.events {
		found = append(found, *event)
	}
	return found, nil
}

func (s *stubEventsRepo) ListPublishedEvents(ctx context.Context) ([]models.Event, error) {
	var found []models.Event
	for _, event := range s.events {
		if event.Published {
			found = append(found, *event)
		}
	}
	return found, nil
}

func (s *stubEventsRepo) CreateRegistration(ctx context.Context, registration *models.Registration) error {
	if s.registrationErr != nil {
		return s.registrationErr
	}
	if registration.ID == uuid.Nil {
		registration.ID = uuid.New()
	}
	s.registrations[registration.ID] = registration
	return nil
}

func (s *stubEventsRepo) DeleteRegistrationsByEvent(ctx context.Context, eventID uuid.UUID) error {
	for id, registration := range s.registrations {
		if registration.EventID == eventID {
			delete(s.registrations, id)
			s.deletedRegistration = append(s.deletedRegistration, id)
		}
	}
	return nil
}

func (s *stubEventsRepo) ListRegistrationsByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Registration, error) {
	var found []models.Registration
	for _, registration := range s.registrations {
		if registration.EventID == eventID {
			found = append(found, *registration)
		}
	}
	return found, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubMailer struct {
	sent   []email.Message
	result email.Result
}

func (s *stubMailer) Send(ctx context.Context, msg email.Message) (email.Result, error) {
	s.sent = append(s.sent, msg)
	return s.result, nil
}

func (s *stubMailer) From() string { return "PMC <no-reply@pmcollective.tech>" }

func newEventsService(t *testing.T, repo Repository, mailer emailSender) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:   repo,
		Tx:     stubTxRunner{},
		Mailer: mailer,
		Logger: logger.New(logger.Options{ServiceName: "events-test", Level: zerolog.ErrorLevel}),
	})
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return svc
}

func validEventParams() EventParams {
	return EventParams{
		Title:       "Case Interview Basics",
		Description: "A 60 minute walkthrough.",
		DateTime:    time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339),
		Host:        "PM Collective",
		Tags:        []string{"interviews", "cases"},
		Published:   true,
		MeetingLink: "https://meet.example.com/pmc",
	}
}

func TestCreateEventParsesDateTime(t *testing.T) {
	repo := newStubEventsRepo()
	svc := newEventsService(t, repo, &stubMailer{result: email.Result{Success: true}})

	id, err := svc.CreateEvent(context.Background(), validEventParams())
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if repo.events[id] == nil {
		t.Fatal("expected event stored")
	}
}

func TestCreateEventInvalidDateTime(t *testing.T) {
	svc := newEventsService(t, newStubEventsRepo(), &stubMailer{})

	params := validEventParams()
	params.DateTime = "next tuesday"
	_, err := svc.CreateEvent(context.Background(), params)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestDeleteEventCascades(t *testing.T) {
	repo := newStubEventsRepo()
	svc := newEventsService(t, repo, &stubMailer{result: email.Result{Success: true}})

	id, err := svc.CreateEvent(context.Background(), validEventParams())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), RegisterParams{EventID: id, Name: "Ada", Email: "ada@example.com"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.DeleteEvent(context.Background(), id); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(repo.events) != 0 {
		t.Fatal("expected event removed")
	}
	if len(repo.registrations) != 0 {
		t.Fatal("expected registrations removed with the event")
	}
}

func TestDeleteEventNotFound(t *testing.T) {
	svc := newEventsService(t, newStubEventsRepo(), &stubMailer{})

	err := svc.DeleteEvent(context.Background(), uuid.New())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found got %v", err)
	}
}

func TestRegisterSendsConfirmation(t *testing.T) {
	repo := newStubEventsRepo()
	mailer := &stubMailer{result: email.Result{Success: true}}
	svc := newEventsService(t, repo, mailer)

	id, err := svc.CreateEvent(context.Background(), validEventParams())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), RegisterParams{EventID: id, Name: "Ada", Email: "ada@example.com"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected one confirmation email got %d", len(mailer.sent))
	}
	if mailer.sent[0].To != "ada@example.com" {
		t.Fatalf("unexpected recipient %s", mailer.sent[0].To)
	}
}

func TestRegisterEmailFailureIsNonFatal(t *testing.T) {
	repo := newStubEventsRepo()
	mailer := &stubMailer{result: email.Result{Success: false, Error: "provider down"}}
	svc := newEventsService(t, repo, mailer)

	id, err := svc.CreateEvent(context.Background(), validEventParams())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	regID, err := svc.Register(context.Background(), RegisterParams{EventID: id, Name: "Ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("registration must survive email failure, got %v", err)
	}
	if repo.registrations[regID] == nil {
		t.Fatal("expected registration stored")
	}
}

func TestRegisterUnknownEvent(t *testing.T) {
	svc := newEventsService(t, newStubEventsRepo(), &stubMailer{})

	_, err := svc.Register(context.Background(), RegisterParams{EventID: uuid.New(), Name: "Ada", Email: "ada@example.com"})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found got %v", err)
	}
}

func TestListPublishedOnly(t *testing.T) {
	repo := newStubEventsRepo()
	svc := newEventsService(t, repo, &stubMailer{})

	published := validEventParams()
	if _, err := svc.CreateEvent(context.Background(), published); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	draft := validEventParams()
	draft.Published = false
	if _, err := svc.CreateEvent(context.Background(), draft); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	found, err := svc.ListPublished(context.Background())
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(found) != 1 || !found[0].Published {
		t.Fatalf("expected only the published event, got %d entries", len(found))
	}
}
