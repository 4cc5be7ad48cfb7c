package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/riskanalyzer/internal/clientdata"
	"github.com/aristath/riskanalyzer/internal/database"
	"github.com/aristath/riskanalyzer/internal/events"
	"github.com/aristath/riskanalyzer/internal/modules/marketdata"
	"github.com/aristath/riskanalyzer/internal/scheduler"
)

// LevelCounter reports stored analyses per risk level.
type LevelCounter interface {
	LevelCounts(ctx context.Context) (map[string]int, error)
}

// CleanupReporter exposes the outcome of the latest cache eviction.
type CleanupReporter interface {
	LastResult() *clientdata.CleanupResult
}

// SystemHandlers handles system-wide monitoring and operations endpoints
type SystemHandlers struct {
	log            zerolog.Logger
	levels         LevelCounter
	cacheCleanup   CleanupReporter
	scheduler      *scheduler.Scheduler
	bus            *events.Bus
	marketDataMode marketdata.Mode
	databases      []*database.DB
	startedAt      time.Time
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(
	log zerolog.Logger,
	levels LevelCounter,
	cacheCleanup CleanupReporter,
	sched *scheduler.Scheduler,
	bus *events.Bus,
	marketDataMode marketdata.Mode,
	databases ...*database.DB,
) *SystemHandlers {
	return &SystemHandlers{
		log:            log.With().Str("handler", "system").Logger(),
		levels:         levels,
		cacheCleanup:   cacheCleanup,
		scheduler:      sched,
		bus:            bus,
		marketDataMode: marketDataMode,
		databases:      databases,
		startedAt:      time.Now(),
	}
}

// SystemStatusResponse represents system status
type SystemStatusResponse struct {
	Status           string         `json:"status"`
	UptimeSeconds    int64          `json:"uptime_seconds"`
	GoVersion        string         `json:"go_version"`
	Goroutines       int            `json:"goroutines"`
	CPUPercent       float64        `json:"cpu_percent"`
	MemoryPercent    float64        `json:"memory_percent"`
	MarketDataMode   string         `json:"market_data_mode"`
	AnalysesByLevel  map[string]int `json:"analyses_by_level"`
	EventSubscribers int            `json:"event_subscribers"`
	EventsDropped    int64          `json:"events_dropped"`
	Jobs             int            `json:"jobs"`
	// CacheCleanup is nil until the eviction job has run once
	CacheCleanup *clientdata.CleanupResult `json:"cache_cleanup,omitempty"`
	LastChecked  string                    `json:"last_checked"`
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	response := SystemStatusResponse{
		Status:         "ok",
		UptimeSeconds:  int64(time.Since(h.startedAt).Seconds()),
		GoVersion:      runtime.Version(),
		Goroutines:     runtime.NumGoroutine(),
		CPUPercent:     cpuPercent,
		MemoryPercent:  memPercent,
		MarketDataMode: string(h.marketDataMode),
		LastChecked:    time.Now().Format(time.RFC3339),
	}

	if h.levels != nil {
		counts, err := h.levels.LevelCounts(r.Context())
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to count analyses by level")
			response.Status = "degraded"
		}
		response.AnalysesByLevel = counts
	}
	if h.bus != nil {
		response.EventSubscribers = h.bus.SubscriberCount()
		response.EventsDropped = h.bus.Dropped()
	}
	if h.scheduler != nil {
		response.Jobs = len(h.scheduler.Jobs())
	}
	if h.cacheCleanup != nil {
		response.CacheCleanup = h.cacheCleanup.LastResult()
	}

	h.writeJSON(w, http.StatusOK, response)
}

// DatabaseInfo is one entry of the database stats response
type DatabaseInfo struct {
	Name    string          `json:"name"`
	Profile string          `json:"profile"`
	Stats   *database.Stats `json:"stats,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// HandleDatabaseStats handles GET /api/system/database/stats
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	infos := make([]DatabaseInfo, 0, len(h.databases))
	for _, db := range h.databases {
		if db == nil {
			continue
		}
		info := DatabaseInfo{Name: db.Name(), Profile: string(db.Profile())}
		stats, err := db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to get database stats")
			info.Error = err.Error()
		} else {
			info.Stats = stats
		}
		infos = append(infos, info)
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"databases":    infos,
		"last_checked": time.Now().Format(time.RFC3339),
	})
}

// HandleJobsStatus handles GET /api/system/jobs
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	jobs := []scheduler.JobStatus{}
	if h.scheduler != nil {
		jobs = h.scheduler.Jobs()
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"jobs": jobs,
	})
}

// HandleRunJob handles POST /api/system/jobs/{name}/run
func (h *SystemHandlers) HandleRunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.scheduler == nil {
		http.Error(w, "Scheduler not available", http.StatusServiceUnavailable)
		return
	}

	err := h.scheduler.RunNow(name)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "success",
			"message": "Job " + name + " completed",
		})
	case errors.Is(err, scheduler.ErrJobRunning):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, scheduler.ErrJobNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.log.Error().Err(err).Str("job", name).Msg("Manual job run failed")
		http.Error(w, "Job failed: "+err.Error(), http.StatusInternalServerError)
	}
}

// getSystemStats returns CPU and RAM usage percentages
// Uses a short sampling interval so the endpoint stays responsive
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
