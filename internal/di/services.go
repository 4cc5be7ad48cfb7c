package di

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aristath/riskanalyzer/internal/clientdata"
	"github.com/aristath/riskanalyzer/internal/config"
	"github.com/aristath/riskanalyzer/internal/database"
	"github.com/aristath/riskanalyzer/internal/events"
	"github.com/aristath/riskanalyzer/internal/modules/analysis"
	"github.com/aristath/riskanalyzer/internal/modules/marketdata"
	"github.com/aristath/riskanalyzer/internal/reliability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates repositories on top of the opened databases
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	container.ClientDataRepo = clientdata.NewRepository(container.CacheDB.Conn())
	container.AnalysisRepo = analysis.NewRepository(container.AnalysisDB.Conn(), log)

	return nil
}

// InitializeServices creates the event system, market data sources and services
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	container.EventBus = events.NewBus()
	container.EventManager = events.NewManager(container.EventBus, log)

	container.Registry = prometheus.NewRegistry()
	container.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	container.AnalysisMetrics = analysis.NewMetrics(container.Registry)

	universe, err := marketdata.LoadUniverse()
	if err != nil {
		return fmt.Errorf("failed to load ticker universe: %w", err)
	}
	container.Universe = universe

	container.YahooClient = marketdata.NewYahooClient(cfg.YahooBaseURL, log)
	container.Simulator = marketdata.NewSimulator(cfg.SimulationSeed)
	container.FallbackSource = marketdata.NewFallbackSource(container.YahooClient, container.Simulator, cfg.MarketDataMode, log)

	container.PriceSource = container.FallbackSource
	if cfg.PriceCacheTTL > 0 {
		container.PriceSource = marketdata.NewCachedSource(container.FallbackSource, container.ClientDataRepo, cfg.PriceCacheTTL, log)
	}

	container.ContextProvider = marketdata.NewContextProvider(cfg.SimulationSeed, container.ClientDataRepo, log)

	period, err := marketdata.ParsePeriod(cfg.DefaultPeriod)
	if err != nil {
		return fmt.Errorf("invalid default period: %w", err)
	}

	container.AnalysisService = analysis.NewService(
		container.PriceSource,
		container.ContextProvider,
		container.AnalysisRepo,
		container.EventManager,
		container.AnalysisMetrics,
		analysis.Config{
			DefaultRiskFreeRate: cfg.RiskFreeRate,
			DefaultPeriod:       period,
			CompareConcurrency:  cfg.CompareConcurrency,
		},
		log,
	)

	if cfg.Backup.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		store, err := reliability.NewS3Client(ctx, reliability.S3Config{
			Endpoint:        cfg.Backup.Endpoint,
			Region:          cfg.Backup.Region,
			Bucket:          cfg.Backup.Bucket,
			AccessKeyID:     cfg.Backup.AccessKeyID,
			SecretAccessKey: cfg.Backup.SecretAccessKey,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to create backup store: %w", err)
		}

		container.BackupService = reliability.NewBackupService(
			store,
			[]*database.DB{container.AnalysisDB, container.CacheDB},
			filepath.Join(cfg.DataDir, "backups"),
			container.EventManager,
			log,
		)
	}

	return nil
}
