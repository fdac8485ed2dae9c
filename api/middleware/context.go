package middleware

import (
	"context"

	"github.com/angelmondragon/directory-backend/pkg/visibility"
	"github.com/google/uuid"
)

type contextKey string

const ctxPrincipal contextKey = "principal"

// Principal is the authenticated caller, loaded fresh from the users table
// on every request.
type Principal struct {
	Viewer     visibility.Viewer
	IsEmployer bool
}

// WithPrincipal injects the caller into the context.
func WithPrincipal(ctx context.Context, principal Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxPrincipal, principal)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	principal, ok := ctx.Value(ctxPrincipal).(Principal)
	return principal, ok
}

// ViewerFromContext returns the zero viewer for anonymous requests.
func ViewerFromContext(ctx context.Context) visibility.Viewer {
	principal, _ := PrincipalFromContext(ctx)
	return principal.Viewer
}

func UserIDFromContext(ctx context.Context) uuid.UUID {
	return ViewerFromContext(ctx).UserID
}
