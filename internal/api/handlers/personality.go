package handlers

import (
	"net/http"

	"github.com/duelist/stockduel/internal/personality"
)

// PersonalityHandler serves the opponent archetype catalog
type PersonalityHandler struct {
	registry *personality.Registry
}

// NewPersonalityHandler creates a new personality handler
func NewPersonalityHandler(registry *personality.Registry) *PersonalityHandler {
	return &PersonalityHandler{registry: registry}
}

// List returns every personality profile
// GET /api/personalities
func (h *PersonalityHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.registry.All())
}
