package validator

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/alovak/cardcheck/internal/cardcheck"
	"github.com/alovak/cardcheck/validator/models"
	"github.com/go-chi/chi/v5"
)

// API is a HTTP API for the validator service
type API struct {
	validator *Service
}

func NewAPI(validator *Service) *API {
	return &API{
		validator: validator,
	}
}

func (a *API) AppendRoutes(r chi.Router) {
	r.Route("/checks", func(r chi.Router) {
		r.Post("/", a.check)
		r.Post("/batch", a.checkBatch)
		r.Get("/", a.listChecks)
		r.Get("/{checkID}", a.getCheck)
	})
}

func (a *API) check(w http.ResponseWriter, r *http.Request) {
	req := models.CheckRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := a.validator.Check(r.Context(), req, models.SourceHTTP)
	if err != nil {
		switch {
		case errors.Is(err, cardcheck.ErrMalformedInput):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		case errors.Is(err, ErrInvalidExpiry):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (a *API) checkBatch(w http.ResponseWriter, r *http.Request) {
	req := models.BatchRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	results, err := a.validator.CheckBatch(r.Context(), req.Numbers, models.SourceHTTP)
	if err != nil {
		if errors.Is(err, ErrEmptyBatch) || errors.Is(err, ErrBatchTooLarge) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, models.BatchResponse{Results: results})
}

func (a *API) listChecks(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = v
	}

	checks, err := a.validator.ListChecks(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, checks)
}

func (a *API) getCheck(w http.ResponseWriter, r *http.Request) {
	checkID := chi.URLParam(r, "checkID")

	check, err := a.validator.GetCheck(r.Context(), checkID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, check)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
