package di

import (
	"fmt"
	"time"

	"github.com/aristath/riskanalyzer/internal/clientdata"
	"github.com/aristath/riskanalyzer/internal/config"
	"github.com/aristath/riskanalyzer/internal/modules/analysis"
	"github.com/aristath/riskanalyzer/internal/reliability"
	"github.com/aristath/riskanalyzer/internal/scheduler"
	"github.com/rs/zerolog"
)

// RegisterJobs creates all background jobs and registers the scheduled ones
// Returns JobInstances for manual triggering via API
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	container.Scheduler = scheduler.New(log)
	container.CacheCleanupJob = clientdata.NewCleanupJob(container.ClientDataRepo, log)

	instances := &JobInstances{
		WatchlistRefresh: analysis.NewWatchlistRefreshJob(
			container.AnalysisService,
			cfg.Watchlist,
			cfg.DefaultPeriod,
			container.EventManager,
			log,
		),
		CacheCleanup:   container.CacheCleanupJob,
		Retention:      analysis.NewRetentionJob(container.AnalysisService, time.Duration(cfg.RetentionDays)*24*time.Hour, log),
		CheckDatabases: scheduler.NewCheckDatabasesJob(log, container.AnalysisDB, container.CacheDB),
		WALCheckpoints: scheduler.NewCheckWALCheckpointsJob(log, container.AnalysisDB, container.CacheDB),
		Vacuum:         reliability.NewVacuumJob(log, container.CacheDB, container.AnalysisDB),
	}
	if container.BackupService != nil {
		instances.Backup = reliability.NewBackupJob(container.BackupService, cfg.Backup.RetentionDays, log)
	}

	registrations := []struct {
		schedule string
		job      scheduler.Job
	}{
		{cfg.Schedules.WatchlistRefresh, instances.WatchlistRefresh},
		{cfg.Schedules.CacheCleanup, instances.CacheCleanup},
		{cfg.Schedules.Retention, instances.Retention},
		{cfg.Schedules.Maintenance, instances.CheckDatabases},
		{"0 */15 * * * *", instances.WALCheckpoints},
		{cfg.Schedules.Maintenance, instances.Vacuum},
		{cfg.Schedules.Backup, instances.Backup},
	}

	for _, reg := range registrations {
		if reg.schedule == "" || reg.job == nil {
			continue
		}
		if err := container.Scheduler.AddJob(reg.schedule, reg.job); err != nil {
			return nil, fmt.Errorf("failed to register job %s: %w", reg.job.Name(), err)
		}
	}

	return instances, nil
}
