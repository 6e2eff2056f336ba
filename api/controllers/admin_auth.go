package controllers

import (
	"net/http"
	"time"

	"github.com/pmcollective/pmc-backend/api/responses"
	"github.com/pmcollective/pmc-backend/api/validators"
	"github.com/pmcollective/pmc-backend/pkg/auth"
	"github.com/pmcollective/pmc-backend/pkg/config"
	pkgerrors "github.com/pmcollective/pmc-backend/pkg/errors"
	"github.com/pmcollective/pmc-backend/pkg/logger"
	"github.com/pmcollective/pmc-backend/pkg/security"
)

type adminLoginPayload struct {
	AccessKey string `json:"accessKey" validate:"required"`
}

type adminLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AdminLogin exchanges the operator access key for a short-lived admin JWT.
// The key is checked against the argon2id hash from config; the raw key is
// never persisted.
func AdminLogin(cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if cfg == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "config unavailable"))
			return
		}

		var payload adminLoginPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		ok, err := security.VerifyAccessKey(payload.AccessKey, cfg.Admin.AccessKeyHash)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "access key verification failed"))
			return
		}
		if !ok {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access key"))
			return
		}

		now := time.Now().UTC()
		token, err := auth.MintAdminToken(cfg.JWT, now)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to mint admin token"))
			return
		}

		responses.WriteSuccess(w, adminLoginResponse{
			Token:     token,
			ExpiresAt: now.Add(time.Duration(cfg.JWT.ExpirationMinutes) * time.Minute),
		})
	}
}
