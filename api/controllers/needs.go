package controllers

import (
	"net/http"

	"github.com/angelmondragon/directory-backend/api/middleware"
	"github.com/angelmondragon/directory-backend/api/responses"
	"github.com/angelmondragon/directory-backend/api/validators"
	"github.com/angelmondragon/directory-backend/internal/needs"
	"github.com/angelmondragon/directory-backend/internal/taxonomy"
	pkgerrors "github.com/angelmondragon/directory-backend/pkg/errors"
	"github.com/angelmondragon/directory-backend/pkg/logger"
)

// replaceNeedsRequest carries the full desired set. An empty list clears
// every need on the project; a missing list is rejected.
type replaceNeedsRequest struct {
	Needs []needs.NeedInput `json:"needs" validate:"required"`
}

func ProjectNeeds(svc needs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "needs service unavailable"))
			return
		}
		projectID, err := validators.ParseUUIDParam(r, "projectId", "project")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Get(r.Context(), middleware.ViewerFromContext(r.Context()), projectID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ProjectNeedsReplace swaps the project's needs for the submitted set in one
// transaction.
func ProjectNeedsReplace(svc needs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "needs service unavailable"))
			return
		}
		projectID, err := validators.ParseUUIDParam(r, "projectId", "project")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req replaceNeedsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Replace(r.Context(), middleware.ViewerFromContext(r.Context()), projectID, req.Needs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func NeedsTaxonomy(svc taxonomy.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "taxonomy service unavailable"))
			return
		}
		categories, err := svc.ListActive(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"categories": categories})
	}
}
