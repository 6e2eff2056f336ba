package middleware

import (
	"net/http"
	"strings"

	"github.com/pmcollective/pmc-backend/api/responses"
	"github.com/pmcollective/pmc-backend/pkg/auth"
	"github.com/pmcollective/pmc-backend/pkg/config"
	pkgerrors "github.com/pmcollective/pmc-backend/pkg/errors"
	"github.com/pmcollective/pmc-backend/pkg/logger"
)

// AdminAuth requires a valid admin bearer token on every request it wraps.
// Admin standing is proven by the token alone; nothing client-side is
// trusted.
func AdminAuth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(token) == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin token required"))
				return
			}

			claims, err := auth.ParseAdminToken(cfg, strings.TrimSpace(token))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid admin token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAdminRole(ctx, claims.Role)))
		})
	}
}
