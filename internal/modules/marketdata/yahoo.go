package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultYahooBaseURL is the public Yahoo Finance API host.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooClient fetches daily closes from the Yahoo Finance chart API.
type YahooClient struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewYahooClient creates a new Yahoo Finance client. An empty baseURL selects DefaultYahooBaseURL.
func NewYahooClient(baseURL string, log zerolog.Logger) *YahooClient {
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}
	return &YahooClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.With().Str("client", "yahoo").Logger(),
	}
}

// chartResponse is the subset of the v8 chart payload we read.
// Closes are pointers because Yahoo reports missing sessions as null.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchPrices fetches adjusted daily closes for the period.
func (c *YahooClient) FetchPrices(ctx context.Context, ticker string, period Period) (*PriceSeries, error) {
	params := url.Values{}
	params.Add("interval", "1d")
	params.Add("range", period.String())
	params.Add("events", "history")

	reqURL := c.baseURL + "/v8/finance/chart/" + url.PathEscape(ticker) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch historical data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("yahoo finance returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if result.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo finance error %s: %s", result.Chart.Error.Code, result.Chart.Error.Description)
	}
	if len(result.Chart.Result) == 0 || len(result.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%s: %w", ticker, ErrNoData)
	}

	chart := result.Chart.Result[0]
	closes := chart.Indicators.Quote[0].Close
	var adjCloses []*float64
	if len(chart.Indicators.AdjClose) > 0 {
		adjCloses = chart.Indicators.AdjClose[0].AdjClose
	}

	dates := make([]string, 0, len(chart.Timestamp))
	prices := make([]float64, 0, len(chart.Timestamp))
	for i, ts := range chart.Timestamp {
		var price *float64
		if i < len(adjCloses) && adjCloses[i] != nil {
			price = adjCloses[i]
		} else if i < len(closes) {
			price = closes[i]
		}
		if price == nil || *price <= 0 {
			continue
		}

		day := time.Unix(ts, 0).UTC().Format(DateLayout)
		// Intraday updates can repeat the last session
		if n := len(dates); n > 0 && dates[n-1] == day {
			prices[n-1] = *price
			continue
		}
		dates = append(dates, day)
		prices = append(prices, *price)
	}

	series, err := NewPriceSeries(ticker, period, SourceReal, dates, prices)
	if err != nil {
		return nil, err
	}
	series = series.Tail(period.TradingDays())

	c.log.Debug().
		Str("ticker", ticker).
		Str("period", period.String()).
		Int("count", len(series.Prices)).
		Msg("Fetched historical prices")

	return series, nil
}
