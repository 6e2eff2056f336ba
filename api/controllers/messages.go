package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pmcollective/pmc-backend/api/responses"
	"github.com/pmcollective/pmc-backend/api/validators"
	"github.com/pmcollective/pmc-backend/internal/messaging"
	pkgerrors "github.com/pmcollective/pmc-backend/pkg/errors"
	"github.com/pmcollective/pmc-backend/pkg/logger"
)

type messagePayload struct {
	Content string `json:"content" validate:"required"`
}

// MessageSend appends a message to an accepted request thread.
func MessageSend(svc messaging.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "messaging service unavailable"))
			return
		}

		identityID, err := requireIdentity(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		requestID, err := uuid.Parse(chi.URLParam(r, "requestId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request id"))
			return
		}

		var payload messagePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		id, err := svc.Send(ctx, messaging.SendParams{
			SenderExternalID: identityID,
			RequestID:        requestID,
			Content:          payload.Content,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"id": id.String()})
	}
}

// MessagesList returns the thread for a request, oldest first, annotated
// for the calling viewer.
func MessagesList(svc messaging.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "messaging service unavailable"))
			return
		}

		identityID, err := requireIdentity(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		requestID, err := uuid.Parse(chi.URLParam(r, "requestId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request id"))
			return
		}

		messages, err := svc.List(ctx, identityID, requestID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, messages)
	}
}
