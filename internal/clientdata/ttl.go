package clientdata

import "time"

// TTL constants for different data types.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// Daily closes only change once per trading day
	TTLPriceSeries = 6 * time.Hour

	// Market context is simulated per calendar day
	TTLMarketContext = 24 * time.Hour
)
