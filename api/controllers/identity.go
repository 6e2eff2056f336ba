package controllers

import (
	"context"

	"github.com/pmcollective/pmc-backend/api/middleware"
	pkgerrors "github.com/pmcollective/pmc-backend/pkg/errors"
)

// requireIdentity returns the caller's external identity or an
// unauthorized error when the request carried none.
func requireIdentity(ctx context.Context) (string, error) {
	identityID := middleware.IdentityIDFromContext(ctx)
	if identityID == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "identity required")
	}
	return identityID, nil
}
