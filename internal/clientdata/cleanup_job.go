package clientdata

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// CleanupResult summarizes the most recent cleanup run.
type CleanupResult struct {
	RanAt   time.Time        `json:"ran_at"`
	Deleted map[string]int64 `json:"deleted"`
	Total   int64            `json:"total"`
}

// CleanupJob evicts expired price series and market context rows from cache.db.
type CleanupJob struct {
	repo *Repository
	log  zerolog.Logger
	now  func() time.Time

	mu   sync.Mutex
	last *CleanupResult
}

// NewCleanupJob creates the cache eviction job.
func NewCleanupJob(repo *Repository, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		repo: repo,
		log:  log.With().Str("job", "client_data_cleanup").Logger(),
		now:  time.Now,
	}
}

// Run evicts expired rows from every cache table.
func (j *CleanupJob) Run() error {
	deleted, err := j.repo.DeleteAllExpired()
	if err != nil {
		return fmt.Errorf("failed to evict expired cache entries: %w", err)
	}

	tables := make([]string, 0, len(deleted))
	for table := range deleted {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	result := &CleanupResult{RanAt: j.now(), Deleted: deleted}
	for _, table := range tables {
		n := deleted[table]
		result.Total += n
		if n > 0 {
			j.log.Debug().Str("table", table).Int64("deleted", n).Msg("Evicted expired rows")
		}
	}

	j.mu.Lock()
	j.last = result
	j.mu.Unlock()

	if result.Total > 0 {
		j.log.Info().Int64("total_deleted", result.Total).Msg("Cache eviction completed")
	}
	return nil
}

// LastResult returns the outcome of the latest successful run, or nil before the first run.
func (j *CleanupJob) LastResult() *CleanupResult {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.last
}

// Name returns the job name for scheduling and logging.
func (j *CleanupJob) Name() string {
	return "client_data_cleanup"
}
