package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pmcollective/pmc-backend/api/responses"
	"github.com/pmcollective/pmc-backend/api/validators"
	"github.com/pmcollective/pmc-backend/internal/buddies"
	pkgerrors "github.com/pmcollective/pmc-backend/pkg/errors"
	"github.com/pmcollective/pmc-backend/pkg/logger"
)

type sendRequestPayload struct {
	ReceiverID string  `json:"receiverId" validate:"required,uuid4"`
	Message    *string `json:"message"`
}

type respondPayload struct {
	Decision string `json:"decision" validate:"required"`
}

// BuddyRequestSend creates a pending buddy request toward another learner.
func BuddyRequestSend(svc buddies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "buddies service unavailable"))
			return
		}

		identityID, err := requireIdentity(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload sendRequestPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		receiverID, err := uuid.Parse(payload.ReceiverID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid receiver id"))
			return
		}

		id, err := svc.Send(ctx, buddies.SendParams{
			SenderExternalID: identityID,
			ReceiverID:       receiverID,
			Message:          payload.Message,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"id": id.String()})
	}
}

// BuddyRequestRespond records the receiver's accept or reject decision.
func BuddyRequestRespond(svc buddies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "buddies service unavailable"))
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

		var payload respondPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		err = svc.Respond(ctx, buddies.RespondParams{
			ReceiverExternalID: identityID,
			RequestID:          requestID,
			Decision:           payload.Decision,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": payload.Decision})
	}
}

// BuddyRequestWithdraw deletes the caller's own pending request.
func BuddyRequestWithdraw(svc buddies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "buddies service unavailable"))
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

		err = svc.Withdraw(ctx, buddies.WithdrawParams{
			SenderExternalID: identityID,
			RequestID:        requestID,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "withdrawn"})
	}
}

// BuddyRequestsIncoming lists pending requests addressed to the caller.
func BuddyRequestsIncoming(svc buddies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "buddies service unavailable"))
			return
		}

		identityID, err := requireIdentity(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		incoming, err := svc.ListIncoming(ctx, identityID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, incoming)
	}
}

// BuddyRequestsSent lists every request the caller sent, any status.
func BuddyRequestsSent(svc buddies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "buddies service unavailable"))
			return
		}

		identityID, err := requireIdentity(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sent, err := svc.ListSent(ctx, identityID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, sent)
	}
}

// BuddiesList returns accepted pairings, counterpart phone included.
func BuddiesList(svc buddies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "buddies service unavailable"))
			return
		}

		identityID, err := requireIdentity(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		accepted, err := svc.ListAcceptedBuddies(ctx, identityID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, accepted)
	}
}
