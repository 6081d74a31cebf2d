package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Users
	api.HandleFunc("/users", handler.CreateUser).Methods("POST")
	api.HandleFunc("/users/{userID}", handler.GetUser).Methods("GET")
	api.HandleFunc("/users/{userID}", handler.DeleteUser).Methods("DELETE")
	api.HandleFunc("/users/{userID}/contact", handler.UpdateContact).Methods("PUT")

	// Watches
	api.HandleFunc("/users/{userID}/watches", handler.ListWatches).Methods("GET")
	api.HandleFunc("/users/{userID}/watches", handler.CreateWatch).Methods("POST")
	api.HandleFunc("/users/{userID}/watches/{watchID}", handler.UpdateWatch).Methods("PATCH")
	api.HandleFunc("/users/{userID}/watches/{watchID}", handler.DeleteWatch).Methods("DELETE")

	// Alert history
	api.HandleFunc("/users/{userID}/alerts", handler.ListAlerts).Methods("GET")

	// Quotes
	api.HandleFunc("/quotes/{symbol}", handler.GetQuote).Methods("GET")

	// Monitor trigger and health
	api.HandleFunc("/monitor", handler.TriggerMonitor).Methods("POST")
	api.HandleFunc("/monitor", handler.MonitorHealth).Methods("GET")

	return r
}
