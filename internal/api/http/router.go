package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"filmrental-backend/internal/logger"
)

// RegisterRentalRoutes registers the rental HTTP endpoints
func RegisterRentalRoutes(router *mux.Router, handler *RentalHandler) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/rentals", handler.HandleRentFilms).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}", handler.HandleGetRental).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id}/return", handler.HandleReturnRental).Methods(http.MethodPost)
}

// NewRouter builds the application router with request logging and a health probe
func NewRouter(handler *RentalHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMiddleware)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
	RegisterRentalRoutes(router, handler)
	return router
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
