package reliability

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/riskanalyzer/internal/database"
	"github.com/rs/zerolog"
)

// BackupJob uploads a fresh backup and rotates old ones
type BackupJob struct {
	service       *BackupService
	retentionDays int
	timeout       time.Duration
	log           zerolog.Logger
}

// NewBackupJob creates a new backup job
func NewBackupJob(service *BackupService, retentionDays int, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		service:       service,
		retentionDays: retentionDays,
		timeout:       10 * time.Minute,
		log:           log.With().Str("job", "backup").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *BackupJob) Name() string {
	return "database_backup"
}

// Run executes the backup job
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	key, err := j.service.CreateAndUploadBackup(ctx)
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	deleted, err := j.service.RotateOldBackups(ctx, j.retentionDays)
	if err != nil {
		j.log.Warn().Err(err).Msg("Backup rotation failed")
	}

	j.log.Info().Str("key", key).Int("rotated", deleted).Msg("Backup job completed")
	return nil
}

// VacuumJob performs periodic VACUUM on databases
type VacuumJob struct {
	databases []*database.DB
	log       zerolog.Logger
}

// NewVacuumJob creates a new vacuum job. Nil databases are skipped.
func NewVacuumJob(log zerolog.Logger, databases ...*database.DB) *VacuumJob {
	return &VacuumJob{
		databases: databases,
		log:       log.With().Str("job", "vacuum").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *VacuumJob) Name() string {
	return "database_vacuum"
}

// Run executes the vacuum job. Failures are logged and do not stop other databases.
func (j *VacuumJob) Run() error {
	j.log.Info().Msg("Starting database vacuum")
	startTime := time.Now()

	failed := 0
	for _, db := range j.databases {
		if db == nil {
			continue
		}
		if err := j.vacuumDatabase(db); err != nil {
			j.log.Error().
				Str("database", db.Name()).
				Err(err).
				Msg("VACUUM failed")
			failed++
		}
	}

	j.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Int("failed", failed).
		Msg("Database vacuum completed")

	if failed > 0 {
		return fmt.Errorf("vacuum failed for %d database(s)", failed)
	}
	return nil
}

func (j *VacuumJob) vacuumDatabase(db *database.DB) error {
	before, err := db.GetStats()
	if err != nil {
		return err
	}

	if _, err := db.Conn().Exec("VACUUM"); err != nil {
		return fmt.Errorf("VACUUM failed: %w", err)
	}

	after, err := db.GetStats()
	if err != nil {
		return err
	}

	j.log.Info().
		Str("database", db.Name()).
		Int64("pages_before", before.PageCount).
		Int64("pages_after", after.PageCount).
		Msg("VACUUM completed")

	return nil
}
