package middleware

import (
	"net/http"

	"github.com/angelmondragon/directory-backend/api/responses"
	"github.com/angelmondragon/directory-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/directory-backend/pkg/errors"
	"github.com/angelmondragon/directory-backend/pkg/logger"
	"github.com/angelmondragon/directory-backend/pkg/visibility"
)

type principalCheck func(Principal) error

func requirePrincipal(check principalCheck, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}
			if err := check(principal); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin admits only admin accounts.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return requirePrincipal(func(p Principal) error {
		if !p.Viewer.IsAdmin {
			return pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
		}
		return nil
	}, logg)
}

// RequireApprovedMember admits approved accounts and admins.
func RequireApprovedMember(logg *logger.Logger) func(http.Handler) http.Handler {
	return requirePrincipal(approvedMember, logg)
}

// RequireEmployer admits approved accounts holding the employer capability.
func RequireEmployer(logg *logger.Logger) func(http.Handler) http.Handler {
	return requirePrincipal(func(p Principal) error {
		if err := approvedMember(p); err != nil {
			return err
		}
		if !p.IsEmployer {
			return pkgerrors.New(pkgerrors.CodeForbidden, "employer subscription required")
		}
		return nil
	}, logg)
}

func approvedMember(p Principal) error {
	if p.Viewer.Status == enums.UserStatusSuspended && !p.Viewer.IsAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "account suspended")
	}
	return visibility.EnsureCanBrowse(p.Viewer)
}
