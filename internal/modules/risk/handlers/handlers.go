// Package handlers provides HTTP handlers for stateless risk assessment.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/riskanalyzer/internal/modules/risk"
	"github.com/aristath/riskanalyzer/pkg/formulas"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 4 << 20

// MarketContextSource supplies the default market backdrop.
type MarketContextSource interface {
	Current(ctx context.Context) (risk.MarketContext, error)
}

// Handler handles risk assessment HTTP requests
type Handler struct {
	calculator *risk.Calculator
	classifier *risk.Classifier
	market     MarketContextSource
	validate   *validator.Validate
	log        zerolog.Logger
}

// NewHandler creates a new risk assessment handler
func NewHandler(market MarketContextSource, log zerolog.Logger) *Handler {
	return &Handler{
		calculator: risk.NewCalculator(),
		classifier: risk.NewClassifier(),
		market:     market,
		validate:   validator.New(),
		log:        log.With().Str("handler", "risk").Logger(),
	}
}

// AssessRequest carries a caller-supplied series. Returns are derived from
// prices when omitted.
type AssessRequest struct {
	Ticker        string              `json:"ticker" validate:"required,max=12"`
	Dates         []string            `json:"dates" validate:"omitempty,dive,datetime=2006-01-02"`
	Prices        []float64           `json:"prices" validate:"required,min=2,max=10000,dive,gt=0"`
	Returns       []float64           `json:"returns"`
	RiskFreeRate  *float64            `json:"risk_free_rate" validate:"omitempty,gte=-0.05,lte=0.25"`
	MarketContext *risk.MarketContext `json:"market_context"`
}

// HandleAssess handles POST /api/risk/assess
func (h *Handler) HandleAssess(w http.ResponseWriter, r *http.Request) {
	var req AssessRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Dates) > 0 && len(req.Dates) != len(req.Prices) {
		http.Error(w, "dates and prices must have the same length", http.StatusBadRequest)
		return
	}

	returns := req.Returns
	if len(returns) == 0 {
		returns = formulas.CalculateReturns(req.Prices)
	}

	rate := risk.DefaultRiskFreeRate
	if req.RiskFreeRate != nil {
		rate = *req.RiskFreeRate
	}

	metrics, err := h.calculator.Calculate(req.Prices, returns, rate)
	if err != nil {
		if errors.Is(err, risk.ErrEmptySeries) || errors.Is(err, risk.ErrLengthMismatch) || errors.Is(err, risk.ErrNonPositivePrice) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Str("ticker", req.Ticker).Msg("Failed to calculate metrics")
		http.Error(w, "Failed to calculate metrics", http.StatusInternalServerError)
		return
	}

	var mc risk.MarketContext
	if req.MarketContext != nil {
		mc = *req.MarketContext
	} else if h.market != nil {
		if mc, err = h.market.Current(r.Context()); err != nil {
			h.log.Warn().Err(err).Msg("Market context unavailable")
		}
	}

	assessment, err := h.classifier.Assess(req.Ticker, *metrics, mc)
	if err != nil {
		h.log.Error().Err(err).Str("ticker", req.Ticker).Msg("Failed to assess risk")
		http.Error(w, "Failed to assess risk", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"ticker":         req.Ticker,
			"risk_free_rate": rate,
			"observations":   len(returns),
			"metrics":        metrics,
			"assessment":     assessment,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetThresholds handles GET /api/risk/thresholds
func (h *Handler) HandleGetThresholds(w http.ResponseWriter, r *http.Request) {
	t := risk.DefaultThresholds

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"sharpe": map[string]float64{
				"excellent": t.SharpeExcellent,
				"good":      t.SharpeGood,
				"fair":      t.SharpeFair,
				"poor":      t.SharpePoor,
			},
			"sortino": map[string]float64{
				"excellent": t.SortinoExcellent,
				"good":      t.SortinoGood,
				"fair":      t.SortinoFair,
				"poor":      t.SortinoPoor,
			},
			"max_drawdown": map[string]float64{
				"low":       t.DrawdownLow,
				"moderate":  t.DrawdownModerate,
				"high":      t.DrawdownHigh,
				"very_high": t.DrawdownVeryHigh,
			},
			"volatility": map[string]float64{
				"low":  t.VolatilityLow,
				"high": t.VolatilityHigh,
			},
			"levels": []map[string]interface{}{
				{"level": risk.LevelLow, "max_score": -3},
				{"level": risk.LevelModerate, "max_score": -1},
				{"level": risk.LevelHigh, "max_score": 2},
				{"level": risk.LevelVeryHigh, "max_score": nil},
			},
		},
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
