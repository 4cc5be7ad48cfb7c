package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aristath/riskanalyzer/internal/modules/risk"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticMarket struct{ mc risk.MarketContext }

func (s staticMarket) Current(ctx context.Context) (risk.MarketContext, error) {
	return s.mc, nil
}

func newTestRouter() *chi.Mux {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	handler := NewHandler(staticMarket{mc: risk.MarketContext{VIXLevel: 17, MarketTrend: "bullish", InterestRateEnvironment: "stable", MarketSentiment: "neutral"}}, logger)

	router := chi.NewRouter()
	router.Route("/api", handler.RegisterRoutes)
	return router
}

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type assessResponse struct {
	Data struct {
		Ticker       string              `json:"ticker"`
		Observations int                 `json:"observations"`
		Metrics      risk.RiskMetrics    `json:"metrics"`
		Assessment   risk.RiskAssessment `json:"assessment"`
	} `json:"data"`
}

func TestHandleAssess_DerivesReturns(t *testing.T) {
	w := postJSON(t, newTestRouter(), "/api/risk/assess", `{"ticker":"DEMO","prices":[100,105,95,110,90]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp assessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "DEMO", resp.Data.Ticker)
	assert.Equal(t, 4, resp.Data.Observations)
	assert.InDelta(t, -0.10, resp.Data.Metrics.TotalReturn, 1e-12)
	assert.Equal(t, risk.LevelVeryHigh, resp.Data.Assessment.RiskLevel)
	assert.Equal(t, "bullish", resp.Data.Assessment.MarketContext.MarketTrend)
}

func TestHandleAssess_InfiniteSortinoIsEncoded(t *testing.T) {
	w := postJSON(t, newTestRouter(), "/api/risk/assess", `{"ticker":"UP","prices":[100,101,102,104,107],"risk_free_rate":0}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"sortino_ratio":"Infinity"`)

	var resp assessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, math.IsInf(resp.Data.Metrics.SortinoRatio, 1))
}

func TestHandleAssess_ExplicitMarketContext(t *testing.T) {
	body := `{"ticker":"DEMO","prices":[100,101,99,102],"market_context":{"vix_level":31,"market_trend":"bearish","interest_rate_environment":"rising","market_sentiment":"fearful"}}`
	w := postJSON(t, newTestRouter(), "/api/risk/assess", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp assessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "fearful", resp.Data.Assessment.MarketContext.MarketSentiment)
}

func TestHandleAssess_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"ticker":`},
		{"missing ticker", `{"prices":[100,101]}`},
		{"single price", `{"ticker":"X","prices":[100]}`},
		{"negative price", `{"ticker":"X","prices":[100,-1]}`},
		{"returns mismatch", `{"ticker":"X","prices":[100,101,102],"returns":[0.01]}`},
		{"dates mismatch", `{"ticker":"X","prices":[100,101],"dates":["2025-01-02"]}`},
		{"bad date", `{"ticker":"X","prices":[100,101],"dates":["2025-01-02","Jan 3"]}`},
		{"rate out of range", `{"ticker":"X","prices":[100,101],"risk_free_rate":0.9}`},
	}

	router := newTestRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, router, "/api/risk/assess", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestHandleGetThresholds(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/risk/thresholds", nil)
	w := httptest.NewRecorder()
	newTestRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Sharpe map[string]float64 `json:"sharpe"`
			Levels []struct {
				Level    string `json:"level"`
				MaxScore *int   `json:"max_score"`
			} `json:"levels"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1.5, resp.Data.Sharpe["excellent"])
	require.Len(t, resp.Data.Levels, 4)
	assert.Equal(t, "Very High", resp.Data.Levels[3].Level)
	assert.Nil(t, resp.Data.Levels[3].MaxScore)
}
