package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pmcollective/pmc-backend/api/responses"
	"github.com/pmcollective/pmc-backend/api/validators"
	"github.com/pmcollective/pmc-backend/internal/events"
	"github.com/pmcollective/pmc-backend/pkg/db/models"
	pkgerrors "github.com/pmcollective/pmc-backend/pkg/errors"
	"github.com/pmcollective/pmc-backend/pkg/logger"
)

type eventPayload struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	DateTime    string   `json:"dateTime" validate:"required"`
	Host        string   `json:"host" validate:"required"`
	Tags        []string `json:"tags" validate:"required"`
	Published   bool     `json:"published"`
	MeetingLink string   `json:"meetingLink" validate:"omitempty,url"`
}

type registerPayload struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type eventResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DateTime    time.Time `json:"dateTime"`
	Host        string    `json:"host"`
	Tags        []string  `json:"tags"`
	Published   bool      `json:"published"`
	MeetingLink string    `json:"meetingLink,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type registrationResponse struct {
	ID           uuid.UUID `json:"id"`
	EventID      uuid.UUID `json:"eventId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registeredAt"`
}

func toEventResponse(event models.Event) eventResponse {
	return eventResponse{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		DateTime:    event.DateTime,
		Host:        event.Host,
		Tags:        event.Tags,
		Published:   event.Published,
		MeetingLink: event.MeetingLink,
		CreatedAt:   event.CreatedAt,
	}
}

func toEventResponses(found []models.Event) []eventResponse {
	out := make([]eventResponse, 0, len(found))
	for _, event := range found {
		out = append(out, toEventResponse(event))
	}
	return out
}

func (p eventPayload) toParams() events.EventParams {
	return events.EventParams{
		Title:       p.Title,
		Description: p.Description,
		DateTime:    p.DateTime,
		Host:        p.Host,
		Tags:        p.Tags,
		Published:   p.Published,
		MeetingLink: p.MeetingLink,
	}
}

// EventCreate stores a new webinar. Admin only.
func EventCreate(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "events service unavailable"))
			return
		}

		var payload eventPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		id, err := svc.CreateEvent(ctx, payload.toParams())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"id": id.String()})
	}
}

// EventUpdate replaces a webinar's attributes. Admin only.
func EventUpdate(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "events service unavailable"))
			return
		}

		eventID, err := uuid.Parse(chi.URLParam(r, "eventId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid event id"))
			return
		}

		var payload eventPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.UpdateEvent(ctx, eventID, payload.toParams()); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"id": eventID.String()})
	}
}

// EventDelete removes a webinar and its registrations. Admin only.
func EventDelete(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "events service unavailable"))
			return
		}

		eventID, err := uuid.Parse(chi.URLParam(r, "eventId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid event id"))
			return
		}

		if err := svc.DeleteEvent(ctx, eventID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// EventGet returns one webinar by id. Admin only.
func EventGet(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "events service unavailable"))
			return
		}

		eventID, err := uuid.Parse(chi.URLParam(r, "eventId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid event id"))
			return
		}

		event, err := svc.GetEvent(ctx, eventID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, toEventResponse(*event))
	}
}

// EventsList returns every webinar, published or not. Admin only.
func EventsList(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "events service unavailable"))
			return
		}

		found, err := svc.ListEvents(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, toEventResponses(found))
	}
}

// EventsPublished returns the public upcoming-webinar listing.
func EventsPublished(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "events service unavailable"))
			return
		}

		found, err := svc.ListPublished(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, toEventResponses(found))
	}
}

// EventRegister records one attendee for a webinar.
func EventRegister(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "events service unavailable"))
			return
		}

		eventID, err := uuid.Parse(chi.URLParam(r, "eventId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid event id"))
			return
		}

		var payload registerPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		id, err := svc.Register(ctx, events.RegisterParams{
			EventID: eventID,
			Name:    payload.Name,
			Email:   payload.Email,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"id": id.String()})
	}
}

// RegistrationsList returns every registration for a webinar. Admin only.
func RegistrationsList(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "events service unavailable"))
			return
		}

		eventID, err := uuid.Parse(chi.URLParam(r, "eventId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid event id"))
			return
		}

		found, err := svc.ListRegistrations(ctx, eventID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out := make([]registrationResponse, 0, len(found))
		for _, registration := range found {
			out = append(out, registrationResponse{
				ID:           registration.ID,
				EventID:      registration.EventID,
				Name:         registration.Name,
				Email:        registration.Email,
				RegisteredAt: registration.RegisteredAt,
			})
		}

		responses.WriteSuccess(w, out)
	}
}
