package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	umcontext "github.com/keystrand/usermeta/server/context"
	"github.com/keystrand/usermeta/util"
)

// RequestMiddleware middleware enrich context with requestID and initiatorID
type RequestMiddleware struct {
}

// NewRequestMiddleware instance constructor
func NewRequestMiddleware() *RequestMiddleware {
	return &RequestMiddleware{}
}

// Handler method of the middleware which enriches context with requestID and initiatorID
func (a *RequestMiddleware) Handler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		//nolint
		ctx := context.WithValue(r.Context(), umcontext.LogSourceKey, util.HTTPSource)

		reqID := uuid.New().String()
		//nolint
		ctx = context.WithValue(ctx, umcontext.RequestIDKey, reqID)

		if userAuth, err := umcontext.GetUserAuthFromRequest(r); err == nil {
			//nolint
			ctx = context.WithValue(ctx, umcontext.InitiatorIDKey, userAuth.UserId)
		}

		h.ServeHTTP(w, r.WithContext(ctx))
	})
}
