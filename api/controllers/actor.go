package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/rationsetu/rationsetu-backend/api/middleware"
	"github.com/rationsetu/rationsetu-backend/pkg/enums"
	pkgerrors "github.com/rationsetu/rationsetu-backend/pkg/errors"
)

// requestActor is the authenticated caller reconstructed from context.
type requestActor struct {
	ID      uuid.UUID
	Role    enums.UserRole
	Village string
}

// actorFromRequest rebuilds the caller identity seeded by the auth middleware.
func actorFromRequest(r *http.Request) (requestActor, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return requestActor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return requestActor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return requestActor{
		ID:      id,
		Role:    enums.UserRole(middleware.RoleFromContext(r.Context())),
		Village: middleware.VillageFromContext(r.Context()),
	}, nil
}

// pathID parses a UUID path parameter.
func pathID(value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id")
	}
	return id, nil
}
