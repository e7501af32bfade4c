package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/keystrand/usermeta/server/auth"
	"github.com/keystrand/usermeta/server/http/handlers/events"
	metadataHandler "github.com/keystrand/usermeta/server/http/handlers/metadata"
	"github.com/keystrand/usermeta/server/http/middleware"
	"github.com/keystrand/usermeta/server/metadata"
	"github.com/keystrand/usermeta/server/telemetry"
)

// NewAPIHandler creates the metadata service HTTP API handler registering all the available endpoints.
func NewAPIHandler(metadataManager metadata.Manager, authManager auth.Manager, appMetrics telemetry.AppMetrics, rateLimiterConfig *middleware.RateLimiterConfig) (http.Handler, error) {
	authMiddleware := middleware.NewAuthMiddleware(authManager, rateLimiterConfig)
	corsMiddleware := cors.AllowAll()
	requestMiddleware := middleware.NewRequestMiddleware()
	ipRateLimiter := middleware.NewAPIRateLimiter(rateLimiterConfig)

	rootRouter := mux.NewRouter()
	metricsMiddleware := appMetrics.HTTPMiddleware()

	router := rootRouter.PathPrefix("/api").Subrouter()
	router.Use(metricsMiddleware.Handler, corsMiddleware.Handler, ipRateLimiter.Middleware, authMiddleware.Handler, requestMiddleware.Handler)

	metadataHandler.AddEndpoints(metadataManager, router)
	events.AddEndpoints(metadataManager, router)

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		methods, err := route.GetMethods()
		if err != nil {
			return err
		}
		for _, method := range methods {
			template, err := route.GetPathTemplate()
			if err != nil {
				return err
			}
			err = metricsMiddleware.AddHTTPRequestResponseCounter(template, method)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rootRouter, nil
}
