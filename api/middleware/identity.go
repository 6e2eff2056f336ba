package middleware

import (
	"net/http"
	"strings"

	"github.com/pmcollective/pmc-backend/pkg/logger"
)

const identityHeader = "X-Identity-Id"

// Identity reads the external identity string supplied by the identity
// provider in front of this service. The value is an opaque lookup key; it
// is never validated here. Controllers that need it reject requests that
// carried none.
func Identity(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identityID := strings.TrimSpace(r.Header.Get(identityHeader))
			if identityID == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithIdentityID(r.Context(), identityID)
			if logg != nil {
				ctx = logg.WithIdentityID(ctx, identityID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
