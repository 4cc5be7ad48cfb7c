// Package di provides dependency injection wiring and initialization.
package di

import (
	"github.com/aristath/riskanalyzer/internal/clientdata"
	"github.com/aristath/riskanalyzer/internal/database"
	"github.com/aristath/riskanalyzer/internal/events"
	"github.com/aristath/riskanalyzer/internal/modules/analysis"
	"github.com/aristath/riskanalyzer/internal/modules/marketdata"
	"github.com/aristath/riskanalyzer/internal/reliability"
	"github.com/aristath/riskanalyzer/internal/scheduler"
	"github.com/prometheus/client_golang/prometheus"
)

// Container holds all application dependencies
type Container struct {
	// Databases
	AnalysisDB *database.DB // analysis.db - persisted analyses
	CacheDB    *database.DB // cache.db - price series and market context cache

	// Repositories
	ClientDataRepo *clientdata.Repository
	AnalysisRepo   *analysis.Repository

	// Events
	EventBus     *events.Bus
	EventManager *events.Manager

	// Metrics
	Registry        *prometheus.Registry
	AnalysisMetrics *analysis.Metrics

	// Market data
	Universe        *marketdata.Universe
	YahooClient     *marketdata.YahooClient
	Simulator       *marketdata.Simulator
	FallbackSource  *marketdata.FallbackSource
	PriceSource     marketdata.Source // cache-first view over FallbackSource
	ContextProvider *marketdata.ContextProvider

	// Services
	AnalysisService *analysis.Service
	BackupService   *reliability.BackupService // nil when backups are disabled

	// Scheduling
	Scheduler       *scheduler.Scheduler
	CacheCleanupJob *clientdata.CleanupJob // status source for /api/system/status
}

// JobInstances holds references to all registered jobs for manual triggering
type JobInstances struct {
	WatchlistRefresh scheduler.Job
	CacheCleanup     scheduler.Job
	Retention        scheduler.Job
	CheckDatabases   scheduler.Job
	WALCheckpoints   scheduler.Job
	Vacuum           scheduler.Job
	Backup           scheduler.Job // nil when backups are disabled
}

// Close releases every database held by the container
func (c *Container) Close() error {
	var firstErr error
	for _, db := range []*database.DB{c.AnalysisDB, c.CacheDB} {
		if db == nil {
			continue
		}
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
