package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/directory-backend/api/middleware"
	"github.com/angelmondragon/directory-backend/api/responses"
	"github.com/angelmondragon/directory-backend/api/validators"
	"github.com/angelmondragon/directory-backend/internal/cron"
	"github.com/angelmondragon/directory-backend/internal/jobs"
	"github.com/angelmondragon/directory-backend/internal/profiles"
	"github.com/angelmondragon/directory-backend/internal/projects"
	"github.com/angelmondragon/directory-backend/internal/taxonomy"
	"github.com/angelmondragon/directory-backend/internal/users"
	pkgerrors "github.com/angelmondragon/directory-backend/pkg/errors"
	"github.com/angelmondragon/directory-backend/pkg/logger"
)

const maxRejectionNote = 2000

type rejectRequest struct {
	Note *string `json:"note" validate:"omitempty,max=2000"`
}

// ReminderSweeper runs one stale-needs reminder pass.
type ReminderSweeper interface {
	Sweep(ctx context.Context, now time.Time) (*cron.SweepResult, error)
}

func AdminPendingProfiles(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			profileServiceMissing(w, r, logg)
			return
		}
		queue, err := svc.ListPending(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, queue)
	}
}

func AdminProfileDetail(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			profileServiceMissing(w, r, logg)
			return
		}
		id, err := validators.ParseUUIDParam(r, "profileId", "profile")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		profile, err := svc.GetForAdmin(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

func AdminApproveProfile(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			profileServiceMissing(w, r, logg)
			return
		}
		id, err := validators.ParseUUIDParam(r, "profileId", "profile")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		profile, err := svc.Approve(r.Context(), middleware.UserIDFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// AdminRejectProfile accepts an optional {"note": "..."} body; an empty body
// rejects without a note.
func AdminRejectProfile(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			profileServiceMissing(w, r, logg)
			return
		}
		id, err := validators.ParseUUIDParam(r, "profileId", "profile")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req rejectRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var note *string
		if req.Note != nil {
			if cleaned := validators.SanitizeString(*req.Note, maxRejectionNote); cleaned != "" {
				note = &cleaned
			}
		}
		profile, err := svc.Reject(r.Context(), middleware.UserIDFromContext(r.Context()), id, note)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

func AdminListUsers(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func AdminSuspendUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return adminUserAction(svc, logg, users.Service.Suspend)
}

func AdminReinstateUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return adminUserAction(svc, logg, users.Service.Reinstate)
}

func adminUserAction(svc users.Service, logg *logger.Logger, action func(users.Service, context.Context, uuid.UUID) (*users.UserDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "userId", "user")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := action(svc, r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

// AdminArchiveProject soft-removes a project from the directory.
func AdminArchiveProject(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			projectServiceMissing(w, r, logg)
			return
		}
		id, err := validators.ParseUUIDParam(r, "projectId", "project")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Archive(r.Context(), middleware.UserIDFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func AdminDeactivateJob(svc jobs.Service, logg *logger.Logger) http.HandlerFunc {
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
		if err := svc.Deactivate(r.Context(), middleware.UserIDFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// AdminSendNeedReminders triggers a reminder sweep on demand. Per-project
// send failures are reported in the body, not as an error status.
func AdminSendNeedReminders(sweeper ReminderSweeper, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sweeper == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reminder sweep unavailable"))
			return
		}
		result, err := sweeper.Sweep(context.WithoutCancel(r.Context()), time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func AdminInvalidateTaxonomy(svc taxonomy.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "taxonomy service unavailable"))
			return
		}
		if err := svc.Invalidate(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
