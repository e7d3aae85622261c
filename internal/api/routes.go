package api

import (
	"github.com/gorilla/mux"

	"prediction-dashboard/internal/observability"
)

// SetupRoutes configures all API routes.
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	r.Handle("/metrics", observability.Handler()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/dashboard", handler.GetDashboard).Methods("GET")
	api.HandleFunc("/dashboard/refresh", handler.RefreshDashboard).Methods("POST")

	return r
}
