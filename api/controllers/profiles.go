package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/directory-backend/api/middleware"
	"github.com/angelmondragon/directory-backend/api/responses"
	"github.com/angelmondragon/directory-backend/api/validators"
	"github.com/angelmondragon/directory-backend/internal/profiles"
	pkgerrors "github.com/angelmondragon/directory-backend/pkg/errors"
	"github.com/angelmondragon/directory-backend/pkg/logger"
)

// profileRequest mirrors profiles.ProfileInput; length limits here are coarse
// guards, the service owns the field rules.
type profileRequest struct {
	Name          *string `json:"name" validate:"omitempty,max=200"`
	Handle        *string `json:"handle" validate:"omitempty,max=64"`
	Bio           *string `json:"bio" validate:"omitempty,max=4000"`
	Location      *string `json:"location" validate:"omitempty,max=200"`
	PortraitURL   *string `json:"portraitUrl" validate:"omitempty,max=2048"`
	WebsiteURL    *string `json:"websiteUrl" validate:"omitempty,max=2048"`
	TwitterHandle *string `json:"twitterHandle" validate:"omitempty,max=100"`
	GithubHandle  *string `json:"githubHandle" validate:"omitempty,max=100"`
	LinkedinURL   *string `json:"linkedinUrl" validate:"omitempty,max=2048"`
}

func (r profileRequest) toInput() profiles.ProfileInput {
	return profiles.ProfileInput{
		Name:          r.Name,
		Handle:        r.Handle,
		Bio:           r.Bio,
		Location:      r.Location,
		PortraitURL:   r.PortraitURL,
		WebsiteURL:    r.WebsiteURL,
		TwitterHandle: r.TwitterHandle,
		GithubHandle:  r.GithubHandle,
		LinkedinURL:   r.LinkedinURL,
	}
}

func profileServiceMissing(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
}

// ProfileCreate creates the caller's draft profile.
func ProfileCreate(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			profileServiceMissing(w, r, logg)
			return
		}
		var req profileRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		profile, err := svc.Create(r.Context(), middleware.UserIDFromContext(r.Context()), req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, profile)
	}
}

func ProfileMine(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			profileServiceMissing(w, r, logg)
			return
		}
		profile, err := svc.GetMine(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// ProfileUpdate applies an owner edit and reports whether the profile went
// back to review.
func ProfileUpdate(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			profileServiceMissing(w, r, logg)
			return
		}
		var req profileRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Update(r.Context(), middleware.UserIDFromContext(r.Context()), req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ProfileSubmit(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			profileServiceMissing(w, r, logg)
			return
		}
		profile, err := svc.SubmitForReview(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

func ProfileList(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			profileServiceMissing(w, r, logg)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListApproved(r.Context(), middleware.ViewerFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func ProfileByHandle(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			profileServiceMissing(w, r, logg)
			return
		}
		profile, err := svc.GetByHandle(r.Context(), middleware.ViewerFromContext(r.Context()), chi.URLParam(r, "handle"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}
