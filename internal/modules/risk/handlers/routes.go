package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all risk assessment routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/risk", func(r chi.Router) {
		r.Post("/assess", h.HandleAssess)
		r.Get("/thresholds", h.HandleGetThresholds)
	})
}
