package controllers

import (
	"net/http"

	"github.com/angelmondragon/directory-backend/api/middleware"
	"github.com/angelmondragon/directory-backend/api/responses"
	"github.com/angelmondragon/directory-backend/api/validators"
	"github.com/angelmondragon/directory-backend/internal/jobs"
	pkgerrors "github.com/angelmondragon/directory-backend/pkg/errors"
	"github.com/angelmondragon/directory-backend/pkg/logger"
)

func jobServiceMissing(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "job service unavailable"))
}

// JobCreate posts a listing for an employer. The body decodes straight into
// jobs.JobInput; field rules live in the service.
func JobCreate(svc jobs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			jobServiceMissing(w, r, logg)
			return
		}
		var input jobs.JobInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		job, err := svc.Create(r.Context(), middleware.UserIDFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, job)
	}
}

func JobList(svc jobs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			jobServiceMissing(w, r, logg)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), middleware.ViewerFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func JobMine(svc jobs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			jobServiceMissing(w, r, logg)
			return
		}
		list, err := svc.Mine(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func JobDetail(svc jobs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			jobServiceMissing(w, r, logg)
			return
		}
		id, err := validators.ParseUUIDParam(r, "jobId", "job")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		job, err := svc.Get(r.Context(), middleware.ViewerFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, job)
	}
}

func JobUpdate(svc jobs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			jobServiceMissing(w, r, logg)
			return
		}
		id, err := validators.ParseUUIDParam(r, "jobId", "job")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var input jobs.JobInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		job, err := svc.Update(r.Context(), middleware.UserIDFromContext(r.Context()), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, job)
	}
}

func JobDelete(svc jobs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			jobServiceMissing(w, r, logg)
			return
		}
		id, err := validators.ParseUUIDParam(r, "jobId", "job")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), middleware.ViewerFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
