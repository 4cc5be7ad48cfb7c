// Package handlers provides HTTP handlers for the analysis module.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/riskanalyzer/internal/modules/analysis"
	"github.com/aristath/riskanalyzer/internal/modules/marketdata"
	"github.com/aristath/riskanalyzer/internal/modules/risk"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// AnalysisService is the subset of analysis.Service the handlers use.
type AnalysisService interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Analysis, error)
	Compare(ctx context.Context, req analysis.CompareRequest) (*analysis.Comparison, error)
	Get(ctx context.Context, id string) (*analysis.Analysis, error)
	History(ctx context.Context, ticker string, limit int) ([]*analysis.Analysis, error)
	Recent(ctx context.Context, limit int) ([]*analysis.Analysis, error)
	LevelCounts(ctx context.Context) (map[string]int, error)
}

// MarketContextSource supplies the current market backdrop.
type MarketContextSource interface {
	Current(ctx context.Context) (risk.MarketContext, error)
}

// Handler handles analysis HTTP requests
type Handler struct {
	service  AnalysisService
	market   MarketContextSource
	universe *marketdata.Universe
	validate *validator.Validate
	log      zerolog.Logger
}

// NewHandler creates a new analysis handler
func NewHandler(service AnalysisService, market MarketContextSource, universe *marketdata.Universe, log zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		market:   market,
		universe: universe,
		validate: validator.New(),
		log:      log.With().Str("handler", "analysis").Logger(),
	}
}

// HandleAnalyze handles POST /api/analysis
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analysis.Request
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.Analyze(r.Context(), req)
	if err != nil {
		h.writeError(w, err, "Failed to analyze ticker")
		return
	}

	h.writeData(w, http.StatusCreated, result)
}

// HandleCompare handles POST /api/analysis/compare
func (h *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	var req analysis.CompareRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.Compare(r.Context(), req)
	if err != nil {
		h.writeError(w, err, "Failed to compare tickers")
		return
	}

	h.writeData(w, http.StatusOK, result)
}

// HandleGetAnalysis handles GET /api/analysis/{id}
func (h *Handler) HandleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "Failed to get analysis")
		return
	}

	h.writeData(w, http.StatusOK, result)
}

// HandleGetHistory handles GET /api/analysis/history/{ticker}
func (h *Handler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	results, err := h.service.History(r.Context(), chi.URLParam(r, "ticker"), limit)
	if err != nil {
		h.writeError(w, err, "Failed to get analysis history")
		return
	}

	h.writeData(w, http.StatusOK, results)
}

// HandleGetRecent handles GET /api/analysis/recent
func (h *Handler) HandleGetRecent(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	results, err := h.service.Recent(r.Context(), limit)
	if err != nil {
		h.writeError(w, err, "Failed to get recent analyses")
		return
	}

	h.writeData(w, http.StatusOK, results)
}

// HandleGetLevels handles GET /api/analysis/levels
func (h *Handler) HandleGetLevels(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.LevelCounts(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to count risk levels")
		return
	}

	out := make(map[string]int, len(risk.Levels))
	for _, level := range risk.Levels {
		out[string(level)] = counts[string(level)]
	}

	h.writeData(w, http.StatusOK, out)
}

// HandleGetTickers handles GET /api/tickers
func (h *Handler) HandleGetTickers(w http.ResponseWriter, r *http.Request) {
	if h.universe == nil {
		h.writeData(w, http.StatusOK, []marketdata.TickerInfo{})
		return
	}

	h.writeData(w, http.StatusOK, h.universe.Tickers)
}

// HandleGetTicker handles GET /api/tickers/{symbol}
func (h *Handler) HandleGetTicker(w http.ResponseWriter, r *http.Request) {
	symbol, err := marketdata.SanitizeTicker(chi.URLParam(r, "symbol"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if h.universe == nil {
		http.Error(w, "Ticker not found", http.StatusNotFound)
		return
	}
	info, ok := h.universe.Lookup(symbol)
	if !ok {
		http.Error(w, "Ticker not found", http.StatusNotFound)
		return
	}

	h.writeData(w, http.StatusOK, info)
}

// HandleGetMarketContext handles GET /api/market/context
func (h *Handler) HandleGetMarketContext(w http.ResponseWriter, r *http.Request) {
	mc, err := h.market.Current(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to get market context")
		return
	}

	h.writeData(w, http.StatusOK, mc)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		http.Error(w, "Invalid limit parameter", http.StatusBadRequest)
		return 0, false
	}
	return limit, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error, msg string) {
	switch {
	case analysis.IsClientError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, analysis.ErrNotFound), errors.Is(err, marketdata.ErrNoData):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, context.DeadlineExceeded):
		h.log.Warn().Err(err).Msg(msg)
		http.Error(w, msg, http.StatusGatewayTimeout)
	default:
		h.log.Error().Err(err).Msg(msg)
		http.Error(w, msg, http.StatusInternalServerError)
	}
}

func (h *Handler) writeData(w http.ResponseWriter, status int, data interface{}) {
	h.writeJSON(w, status, map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
