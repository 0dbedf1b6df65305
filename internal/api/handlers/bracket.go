package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/duelist/stockduel/internal/bracket"
	"github.com/duelist/stockduel/internal/contracts"
	"github.com/duelist/stockduel/pkg/logger"
)

// BracketHandler handles bracket API endpoints
type BracketHandler struct {
	service *bracket.Service
	logger  *logger.Logger
}

// NewBracketHandler creates a new bracket handler
func NewBracketHandler(service *bracket.Service, log *logger.Logger) *BracketHandler {
	return &BracketHandler{
		service: service,
		logger:  log,
	}
}

// Create builds a new bracket
// POST /api/brackets
func (h *BracketHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var params bracket.CreateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	b, err := h.service.CreateBracket(ctx, params)
	if err != nil {
		switch {
		case errors.Is(err, contracts.ErrInvalidInput), errors.Is(err, contracts.ErrInvalidSize):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, contracts.ErrNotFound):
			respondError(w, http.StatusNotFound, err.Error())
		default:
			h.logger.WithError(err).Error("Failed to create bracket")
			respondError(w, http.StatusInternalServerError, "Failed to create bracket")
		}
		return
	}

	respondJSON(w, http.StatusCreated, b)
}

// Get returns one bracket
// GET /api/brackets/{id}
func (h *BracketHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	b, err := h.service.GetBracket(ctx, id)
	if err != nil {
		if errors.Is(err, contracts.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Bracket not found")
			return
		}
		h.logger.WithError(err).WithField("bracket_id", id).Error("Failed to load bracket")
		respondError(w, http.StatusInternalServerError, "Failed to load bracket")
		return
	}

	respondJSON(w, http.StatusOK, b)
}

// Refresh re-fetches prices and advances the bracket lifecycle
// POST /api/brackets/{id}/refresh
func (h *BracketHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	b, err := h.service.RefreshBracket(ctx, id)
	if err != nil {
		if errors.Is(err, contracts.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Bracket not found")
			return
		}
		h.logger.WithError(err).WithField("bracket_id", id).Error("Failed to refresh bracket")
		respondError(w, http.StatusInternalServerError, "Failed to refresh bracket")
		return
	}

	respondJSON(w, http.StatusOK, b)
}

// ListByUser returns a user's brackets
// GET /api/users/{userId}/brackets
func (h *BracketHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := mux.Vars(r)["userId"]

	list, err := h.service.ListUserBrackets(ctx, userID)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to list brackets")
		respondError(w, http.StatusInternalServerError, "Failed to list brackets")
		return
	}
	if list == nil {
		list = []*contracts.Bracket{}
	}

	respondJSON(w, http.StatusOK, list)
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
