package controllers

import (
	"net/http"

	"github.com/angelmondragon/directory-backend/api/middleware"
	"github.com/angelmondragon/directory-backend/api/responses"
	"github.com/angelmondragon/directory-backend/api/validators"
	"github.com/angelmondragon/directory-backend/internal/bookmarks"
	pkgerrors "github.com/angelmondragon/directory-backend/pkg/errors"
	"github.com/angelmondragon/directory-backend/pkg/logger"
)

func bookmarkServiceMissing(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookmark service unavailable"))
}

func FavoriteList(svc bookmarks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			bookmarkServiceMissing(w, r, logg)
			return
		}
		items, err := svc.ListFavorites(r.Context(), middleware.ViewerFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// FavoriteAdd answers 201 for a new favorite and 200 when it already existed.
func FavoriteAdd(svc bookmarks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			bookmarkServiceMissing(w, r, logg)
			return
		}
		profileID, err := validators.ParseUUIDParam(r, "profileId", "profile")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.AddFavorite(r.Context(), middleware.ViewerFromContext(r.Context()), profileID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status := http.StatusOK
		if result.Created {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}

func FavoriteRemove(svc bookmarks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			bookmarkServiceMissing(w, r, logg)
			return
		}
		profileID, err := validators.ParseUUIDParam(r, "profileId", "profile")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.RemoveFavorite(r.Context(), middleware.ViewerFromContext(r.Context()), profileID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func FavoriteStatus(svc bookmarks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			bookmarkServiceMissing(w, r, logg)
			return
		}
		profileID, err := validators.ParseUUIDParam(r, "profileId", "profile")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ok, err := svc.IsFavorite(r.Context(), middleware.ViewerFromContext(r.Context()), profileID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"favorited": ok})
	}
}

func FollowList(svc bookmarks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			bookmarkServiceMissing(w, r, logg)
			return
		}
		items, err := svc.ListFollows(r.Context(), middleware.ViewerFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func FollowAdd(svc bookmarks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			bookmarkServiceMissing(w, r, logg)
			return
		}
		projectID, err := validators.ParseUUIDParam(r, "projectId", "project")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Follow(r.Context(), middleware.ViewerFromContext(r.Context()), projectID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status := http.StatusOK
		if result.Created {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}

func FollowRemove(svc bookmarks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			bookmarkServiceMissing(w, r, logg)
			return
		}
		projectID, err := validators.ParseUUIDParam(r, "projectId", "project")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Unfollow(r.Context(), middleware.ViewerFromContext(r.Context()), projectID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func FollowStatus(svc bookmarks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			bookmarkServiceMissing(w, r, logg)
			return
		}
		projectID, err := validators.ParseUUIDParam(r, "projectId", "project")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ok, err := svc.IsFollowing(r.Context(), middleware.ViewerFromContext(r.Context()), projectID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"following": ok})
	}
}
