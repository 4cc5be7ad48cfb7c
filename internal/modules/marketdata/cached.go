package marketdata

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aristath/riskanalyzer/internal/clientdata"
	"github.com/rs/zerolog"
)

// CachedSource is a cache-first decorator over another Source.
type CachedSource struct {
	next Source
	repo *clientdata.Repository
	ttl  time.Duration
	log  zerolog.Logger
}

// NewCachedSource wraps next with the client data cache. A zero ttl selects
// clientdata.TTLPriceSeries.
func NewCachedSource(next Source, repo *clientdata.Repository, ttl time.Duration, log zerolog.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = clientdata.TTLPriceSeries
	}
	return &CachedSource{
		next: next,
		repo: repo,
		ttl:  ttl,
		log:  log.With().Str("component", "price_cache").Logger(),
	}
}

func seriesKey(ticker string, period Period) string {
	return ticker + "|" + period.String()
}

// FetchPrices returns a fresh cached series when one exists, otherwise it
// fetches from the wrapped source and caches the result. Cache failures never
// fail the fetch.
func (c *CachedSource) FetchPrices(ctx context.Context, ticker string, period Period) (*PriceSeries, error) {
	key := seriesKey(ticker, period)

	if raw, err := c.repo.GetIfFresh(clientdata.TablePriceSeries, key); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Failed to read price cache")
	} else if raw != nil {
		var series PriceSeries
		if err := json.Unmarshal(raw, &series); err == nil {
			c.log.Debug().Str("key", key).Msg("Price cache hit")
			return &series, nil
		}
		c.log.Warn().Str("key", key).Msg("Discarding unreadable cached series")
	}

	series, err := c.next.FetchPrices(ctx, ticker, period)
	if err != nil {
		return nil, err
	}

	if err := c.repo.Store(clientdata.TablePriceSeries, key, series, c.ttl); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Failed to cache price series")
	}

	return series, nil
}
