package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pmcollective/pmc-backend/pkg/db"
	"github.com/pmcollective/pmc-backend/pkg/db/models"
	"github.com/pmcollective/pmc-backend/pkg/email"
	pkgerrors "github.com/pmcollective/pmc-backend/pkg/errors"
	"github.com/pmcollective/pmc-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type emailSender interface {
	Send(ctx context.Context, msg email.Message) (email.Result, error)
	From() string
}

// EventParams carries the admin-supplied event attributes.
type EventParams struct {
	Title       string   `validate:"required"`
	Description string   `validate:"required"`
	DateTime    string   `validate:"required"`
	Host        string   `validate:"required"`
	Tags        []string `validate:"required"`
	Published   bool
	MeetingLink string `validate:"omitempty,url"`
}

// RegisterParams carries one attendee registration.
type RegisterParams struct {
	EventID uuid.UUID `validate:"required"`
	Name    string    `validate:"required"`
	Email   string    `validate:"required,email"`
}

// ServiceParams groups dependencies for the events service.
type ServiceParams struct {
	Repo   Repository
	Tx     txRunner
	Mailer emailSender
	Logger *logger.Logger
}

// Service exposes business rules for webinars and registrations.
type Service interface {
	CreateEvent(ctx context.Context, params EventParams) (uuid.UUID, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, params EventParams) error
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	ListPublished(ctx context.Context) ([]models.Event, error)
	Register(ctx context.Context, params RegisterParams) (uuid.UUID, error)
	ListRegistrations(ctx context.Context, eventID uuid.UUID) ([]models.Registration, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	mailer emailSender
	logg   *logger.Logger
}

// NewService builds an events service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "events repo is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		repo:   params.Repo,
		tx:     params.Tx,
		mailer: params.Mailer,
		logg:   params.Logger,
	}, nil
}

func (s *service) CreateEvent(ctx context.Context, params EventParams) (uuid.UUID, error) {
	event, err := eventFromParams(params)
	if err != nil {
		return uuid.Nil, err
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create event")
	}
	return event.ID, nil
}

func (s *service) UpdateEvent(ctx context.Context, id uuid.UUID, params EventParams) error {
	existing, err := s.repo.FindEventByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load event")
	}
	if existing == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
	}

	updated, err := eventFromParams(params)
	if err != nil {
		return err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	if err := s.repo.UpdateEvent(ctx, updated); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to update event")
	}
	return nil
}

// DeleteEvent removes the event and its registrations in one transaction so
// no dangling registration is ever visible.
func (s *service) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	existing, err := s.repo.FindEventByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load event")
	}
	if existing == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteRegistrationsByEvent(ctx, id); err != nil {
			return err
		}
		return repo.DeleteEvent(ctx, id)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to delete event")
	}
	return nil
}

func (s *service) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	event, err := s.repo.FindEventByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load event")
	}
	if event == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
	}
	return event, nil
}

func (s *service) ListEvents(ctx context.Context) ([]models.Event, error) {
	found, err := s.repo.ListEvents(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list events")
	}
	return found, nil
}

func (s *service) ListPublished(ctx context.Context) ([]models.Event, error) {
	found, err := s.repo.ListPublishedEvents(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list published events")
	}
	return found, nil
}

// Register stores one attendee for an event. The (event, email) unique
// index is the duplicate check. The confirmation email is best effort and
// never fails the registration.
func (s *service) Register(ctx context.Context, params RegisterParams) (uuid.UUID, error) {
	event, err := s.repo.FindEventByID(ctx, params.EventID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load event")
	}
	if event == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
	}

	registration := &models.Registration{
		EventID:      params.EventID,
		Name:         params.Name,
		Email:        params.Email,
		RegisteredAt: time.Now().UTC(),
	}
	if err := s.repo.CreateRegistration(ctx, registration); err != nil {
		if db.IsUniqueViolation(err, "uq_registrations_event_email") {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeConflict, "already registered for this event")
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create registration")
	}

	s.sendConfirmation(ctx, event, registration)
	return registration.ID, nil
}

func (s *service) ListRegistrations(ctx context.Context, eventID uuid.UUID) ([]models.Registration, error) {
	found, err := s.repo.ListRegistrationsByEvent(ctx, eventID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list registrations")
	}
	return found, nil
}

func (s *service) sendConfirmation(ctx context.Context, event *models.Event, registration *models.Registration) {
	if s.mailer == nil {
		return
	}
	body := fmt.Sprintf(
		"Hi %s,\n\nYou're registered for %q on %s, hosted by %s.",
		registration.Name, event.Title, event.DateTime.Format("Monday, 2 January 2006 15:04 MST"), event.Host,
	)
	if event.MeetingLink != "" {
		body += fmt.Sprintf("\n\nJoin here: %s", event.MeetingLink)
	}
	body += "\n\nSee you there!"
	msg := email.Message{
		From:    s.mailer.From(),
		To:      registration.Email,
		Subject: fmt.Sprintf("You're registered: %s", event.Title),
		Text:    body,
	}
	result, err := s.mailer.Send(ctx, msg)
	if err != nil || !result.Success {
		ctx = s.logg.WithField(ctx, "event_id", event.ID.String())
		s.logg.Warn(ctx, "registration confirmation email failed")
	}
}

func eventFromParams(params EventParams) (*models.Event, error) {
	dateTime, err := time.Parse(time.RFC3339, params.DateTime)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dateTime must be RFC 3339")
	}
	return &models.Event{
		Title:       params.Title,
		Description: params.Description,
		DateTime:    dateTime.UTC(),
		Host:        params.Host,
		Tags:        params.Tags,
		Published:   params.Published,
		MeetingLink: params.MeetingLink,
	}, nil
}
