package controllers

import (
	"net/http"
	"strings"

	"github.com/pmcollective/pmc-backend/api/responses"
	"github.com/pmcollective/pmc-backend/api/validators"
	"github.com/pmcollective/pmc-backend/internal/users"
	pkgerrors "github.com/pmcollective/pmc-backend/pkg/errors"
	"github.com/pmcollective/pmc-backend/pkg/logger"
)

type profilePayload struct {
	Name              string  `json:"name" validate:"required"`
	Email             string  `json:"email" validate:"required,email"`
	LinkedinURL       string  `json:"linkedinUrl" validate:"omitempty,url"`
	ExperienceLevel   string  `json:"experienceLevel" validate:"required"`
	PreparednessLevel string  `json:"preparednessLevel" validate:"required"`
	Phone             *string `json:"phone"`
}

type profileResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	LinkedinURL       string  `json:"linkedinUrl,omitempty"`
	ExperienceLevel   string  `json:"experienceLevel"`
	PreparednessLevel string  `json:"preparednessLevel"`
	Phone             *string `json:"phone,omitempty"`
	IsActive          bool    `json:"isActive"`
}

func (p profilePayload) toParams(externalID string) users.ProfileParams {
	return users.ProfileParams{
		ExternalID:        externalID,
		Name:              p.Name,
		Email:             p.Email,
		LinkedinURL:       p.LinkedinURL,
		ExperienceLevel:   p.ExperienceLevel,
		PreparednessLevel: p.PreparednessLevel,
		Phone:             p.Phone,
	}
}

// ProfileUpsert creates the caller's profile, or returns the existing one
// untouched when it already exists.
func ProfileUpsert(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		identityID, err := requireIdentity(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload profilePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		id, err := svc.UpsertProfile(ctx, payload.toParams(identityID))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"id": id.String()})
	}
}

// ProfileUpdate overwrites the caller's profile attributes.
func ProfileUpdate(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		identityID, err := requireIdentity(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload profilePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		id, err := svc.UpdateProfile(ctx, payload.toParams(identityID))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"id": id.String()})
	}
}

// ProfileMe returns the caller's own profile, phone included.
func ProfileMe(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		identityID, err := requireIdentity(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		user, err := svc.GetByExternalID(ctx, identityID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if user == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found"))
			return
		}

		responses.WriteSuccess(w, profileResponse{
			ID:                user.ID.String(),
			Name:              user.Name,
			Email:             user.Email,
			LinkedinURL:       user.LinkedinURL,
			ExperienceLevel:   string(user.ExperienceLevel),
			PreparednessLevel: string(user.PreparednessLevel),
			Phone:             user.Phone,
			IsActive:          user.IsActive,
		})
	}
}

// BuddySearch lists active learners matching the optional level filters.
func BuddySearch(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		identityID, err := requireIdentity(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		candidates, err := svc.Search(ctx, users.SearchParams{
			RequesterExternalID: identityID,
			ExperienceLevel:     strings.TrimSpace(r.URL.Query().Get("experienceLevel")),
			PreparednessLevel:   strings.TrimSpace(r.URL.Query().Get("preparednessLevel")),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, candidates)
	}
}
