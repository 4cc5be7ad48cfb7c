package marketdata

import (
	"context"
	"encoding/json"
	"math"
	"math/rand/v2"
	"time"

	"github.com/aristath/riskanalyzer/internal/clientdata"
	"github.com/aristath/riskanalyzer/internal/modules/risk"
	"github.com/rs/zerolog"
)

var (
	marketTrends     = []string{"bullish", "sideways", "bearish"}
	rateEnvironments = []string{"rising", "stable", "falling"}
)

// ContextProvider produces the market backdrop for assessments. Values are
// simulated and stable for a calendar day; the rate environment is stable for
// a calendar month.
type ContextProvider struct {
	seed uint64
	repo *clientdata.Repository // optional
	now  func() time.Time
	log  zerolog.Logger
}

// NewContextProvider creates a provider. repo may be nil to disable caching.
func NewContextProvider(seed uint64, repo *clientdata.Repository, log zerolog.Logger) *ContextProvider {
	return &ContextProvider{
		seed: seed,
		repo: repo,
		now:  time.Now,
		log:  log.With().Str("component", "market_context").Logger(),
	}
}

// Current returns the market context for today.
func (p *ContextProvider) Current(ctx context.Context) (risk.MarketContext, error) {
	if err := ctx.Err(); err != nil {
		return risk.MarketContext{}, err
	}

	day := p.now().UTC()
	key := day.Format(DateLayout)

	if p.repo != nil {
		if raw, err := p.repo.GetIfFresh(clientdata.TableMarketContext, key); err != nil {
			p.log.Warn().Err(err).Msg("Failed to read market context cache")
		} else if raw != nil {
			var mc risk.MarketContext
			if err := json.Unmarshal(raw, &mc); err == nil {
				return mc, nil
			}
		}
	}

	mc := p.forDay(day)

	if p.repo != nil {
		if err := p.repo.Store(clientdata.TableMarketContext, key, mc, clientdata.TTLMarketContext); err != nil {
			p.log.Warn().Err(err).Msg("Failed to cache market context")
		}
	}

	return mc, nil
}

func (p *ContextProvider) forDay(day time.Time) risk.MarketContext {
	daySeed := uint64(day.Year())*10000 + uint64(day.Month())*100 + uint64(day.Day())
	monthSeed := uint64(day.Year())*100 + uint64(day.Month())

	daily := rand.New(rand.NewPCG(p.seed, daySeed))
	monthly := rand.New(rand.NewPCG(p.seed, monthSeed))

	vix := math.Round((11+25*daily.Float64())*100) / 100

	trend := marketTrends[daily.IntN(len(marketTrends))]
	if vix >= 30 {
		trend = "bearish"
	}

	return risk.MarketContext{
		VIXLevel:                vix,
		MarketTrend:             trend,
		InterestRateEnvironment: rateEnvironments[monthly.IntN(len(rateEnvironments))],
		MarketSentiment:         sentimentForVIX(vix),
	}
}

func sentimentForVIX(vix float64) string {
	switch {
	case vix < 15:
		return "optimistic"
	case vix < 22:
		return "neutral"
	case vix < 28:
		return "cautious"
	default:
		return "fearful"
	}
}
