package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/directory-backend/api/responses"
	pkgAuth "github.com/angelmondragon/directory-backend/pkg/auth"
	"github.com/angelmondragon/directory-backend/pkg/config"
	"github.com/angelmondragon/directory-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/directory-backend/pkg/errors"
	"github.com/angelmondragon/directory-backend/pkg/logger"
	"github.com/angelmondragon/directory-backend/pkg/visibility"
	"github.com/google/uuid"
)

type userLoader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Auth validates a bearer token, loads the account it names and seeds the
// request context with the resulting Principal.
func Auth(cfg config.JWTConfig, users userLoader, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			user, err := users.Get(r.Context(), claims.UserID)
			if err != nil {
				if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
					err = pkgerrors.New(pkgerrors.CodeUnauthorized, "account no longer exists")
				}
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithPrincipal(r.Context(), Principal{
				Viewer: visibility.Viewer{
					UserID:  user.ID,
					IsAdmin: user.IsAdmin,
					Status:  user.Status,
				},
				IsEmployer: user.IsEmployer,
			})
			if logg != nil {
				ctx = logg.WithUserID(ctx, user.ID.String())
				ctx = logg.WithField(ctx, "account_status", string(user.Status))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
