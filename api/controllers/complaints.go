package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rationsetu/rationsetu-backend/api/responses"
	"github.com/rationsetu/rationsetu-backend/api/validators"
	"github.com/rationsetu/rationsetu-backend/internal/complaints"
	"github.com/rationsetu/rationsetu-backend/pkg/enums"
	pkgerrors "github.com/rationsetu/rationsetu-backend/pkg/errors"
	"github.com/rationsetu/rationsetu-backend/pkg/logger"
)

// CreateComplaint files a grievance on behalf of the caller.
func CreateComplaint(svc complaints.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "complaints service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body complaints.CreateComplaintRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		complaint, err := svc.Create(r.Context(), actor.ID, actor.Village, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, complaint)
	}
}

// MyComplaints lists the caller's own complaints.
func MyComplaints(svc complaints.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "complaints service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListMine(r.Context(), actor.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ListComplaints lists all complaints, optionally filtered by ?status=.
func ListComplaints(svc complaints.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "complaints service unavailable"))
			return
		}

		var status *enums.ComplaintStatus
		if raw := r.URL.Query().Get("status"); raw != "" {
			parsed := enums.ComplaintStatus(raw)
			status = &parsed
		}

		rows, err := svc.ListAll(r.Context(), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ResolveComplaint records an admin response and closes the complaint.
func ResolveComplaint(svc complaints.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "complaints service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		complaintID, err := pathID(chi.URLParam(r, "complaintId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body complaints.ResolveComplaintRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		complaint, err := svc.Resolve(r.Context(), actor.ID, complaintID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, complaint)
	}
}
