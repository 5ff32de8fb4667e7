package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"filmrental-backend/internal/domain"
	"filmrental-backend/internal/logger"
	"filmrental-backend/internal/repository"
	"filmrental-backend/internal/service"
)

const maxRequestBody = 1 << 20

// RentalHandler exposes the rental service over JSON/HTTP
type RentalHandler struct {
	customers repository.CustomerRepository
	films     repository.FilmRepository
	rentals   service.RentalService
}

// NewRentalHandler creates a new rental handler
func NewRentalHandler(customers repository.CustomerRepository, films repository.FilmRepository, rentals service.RentalService) *RentalHandler {
	return &RentalHandler{
		customers: customers,
		films:     films,
		rentals:   rentals,
	}
}

// HandleRentFilms handles POST /api/v1/rentals
func (h *RentalHandler) HandleRentFilms(w http.ResponseWriter, r *http.Request) {
	var req rentFilmsRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be a JSON object with customer_id and film_ids")
		return
	}
	ctx := r.Context()

	// Films are looked up first; an unknown film wins over an unknown customer.
	var films []domain.Film
	if len(req.FilmIDs) > 0 {
		var err error
		films, err = h.films.GetByIDs(ctx, req.FilmIDs)
		if err != nil {
			writeServiceError(w, err)
			return
		}
	}

	// customer_id 0 stands for a missing customer
	var customer *domain.Customer
	if req.CustomerID != 0 {
		var err error
		customer, err = h.customers.GetByID(ctx, req.CustomerID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
	}

	rental, err := h.rentals.RentFilms(ctx, customer, films)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapRentalToResponse(rental))
}

// HandleGetRental handles GET /api/v1/rentals/{id}
func (h *RentalHandler) HandleGetRental(w http.ResponseWriter, r *http.Request) {
	id, ok := rentalID(w, r)
	if !ok {
		return
	}
	rental, err := h.rentals.GetRental(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapRentalToResponse(rental))
}

// HandleReturnRental handles POST /api/v1/rentals/{id}/return
func (h *RentalHandler) HandleReturnRental(w http.ResponseWriter, r *http.Request) {
	id, ok := rentalID(w, r)
	if !ok {
		return
	}
	rental, err := h.rentals.ReturnRental(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapRentalToResponse(rental))
}

func rentalID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "rental id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// statusForKind maps rejected rental operations to HTTP status codes
var statusForKind = map[domain.ErrorKind]int{
	domain.KindEmptyFilmList:       http.StatusBadRequest,
	domain.KindEmptyCustomer:       http.StatusBadRequest,
	domain.KindOutOfStock:          http.StatusConflict,
	domain.KindAlreadyReturned:     http.StatusConflict,
	domain.KindCustomerBlacklisted: http.StatusForbidden,
}

func writeServiceError(w http.ResponseWriter, err error) {
	if kind := domain.KindOf(err); kind != "" {
		status, ok := statusForKind[kind]
		if !ok {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, string(kind), err.Error())
		return
	}
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}
	logger.Error("Rental request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal", "internal server error")
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorResponse{Error: kind, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to write response", "error", err)
	}
}
