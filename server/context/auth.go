package context

import (
	"context"
	"net/http"

	"github.com/keystrand/usermeta/server/status"
	"github.com/keystrand/usermeta/shared/auth"
)

type key int

const userAuthContextKey key = iota

// GetUserAuthFromRequest returns the UserAuth for the current request.
func GetUserAuthFromRequest(r *http.Request) (auth.UserAuth, error) {
	return GetUserAuthFromContext(r.Context())
}

// SetUserAuthInRequest stores the UserAuth in the given request context.
func SetUserAuthInRequest(r *http.Request, userAuth auth.UserAuth) *http.Request {
	return r.WithContext(SetUserAuthInContext(r.Context(), userAuth))
}

// GetUserAuthFromContext returns the UserAuth stored by the auth middleware.
// Callers must treat an error as an unauthenticated request.
func GetUserAuthFromContext(ctx context.Context) (auth.UserAuth, error) {
	if userAuth, ok := ctx.Value(userAuthContextKey).(auth.UserAuth); ok {
		return userAuth, nil
	}
	return auth.UserAuth{}, status.Errorf(status.Unauthorized, "no caller identity in request context")
}

// SetUserAuthInContext stores the UserAuth in the given context.
func SetUserAuthInContext(ctx context.Context, userAuth auth.UserAuth) context.Context {
	//nolint
	return context.WithValue(ctx, userAuthContextKey, userAuth)
}
