package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all analysis routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/analysis", func(r chi.Router) {
		r.Post("/", h.HandleAnalyze)
		r.Post("/compare", h.HandleCompare)
		r.Get("/recent", h.HandleGetRecent)
		r.Get("/levels", h.HandleGetLevels)
		r.Get("/history/{ticker}", h.HandleGetHistory)
		r.Get("/{id}", h.HandleGetAnalysis)
	})

	r.Get("/tickers", h.HandleGetTickers)
	r.Get("/tickers/{symbol}", h.HandleGetTicker)
	r.Get("/market/context", h.HandleGetMarketContext)
}
