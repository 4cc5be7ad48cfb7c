// Package events provides event management functionality.
package events

import (
	"time"
)

// EventType represents different event types
type EventType string

const (
	AnalysisCompleted   EventType = "ANALYSIS_COMPLETED"
	AnalysisFailed      EventType = "ANALYSIS_FAILED"
	ComparisonCompleted EventType = "COMPARISON_COMPLETED"
	WatchlistRefreshed  EventType = "WATCHLIST_REFRESHED"
	AnalysesPruned      EventType = "ANALYSES_PRUNED"
	BackupCompleted     EventType = "BACKUP_COMPLETED"
	ErrorOccurred       EventType = "ERROR_OCCURRED"
)

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Module    string                 `json:"module"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// EventData is the interface that all typed event payloads implement
type EventData interface {
	EventType() EventType
}

// AnalysisCompletedData contains data for AnalysisCompleted events
type AnalysisCompletedData struct {
	AnalysisID string  `json:"analysis_id"`
	Ticker     string  `json:"ticker"`
	Period     string  `json:"period"`
	DataSource string  `json:"data_source"`
	RiskLevel  string  `json:"risk_level"`
	RiskScore  int     `json:"risk_score"`
	Sharpe     float64 `json:"sharpe_ratio"`
	DurationMs int64   `json:"duration_ms"`
}

// EventType returns the event type for AnalysisCompletedData
func (d *AnalysisCompletedData) EventType() EventType {
	return AnalysisCompleted
}

// AnalysisFailedData contains data for AnalysisFailed events
type AnalysisFailedData struct {
	Ticker string `json:"ticker"`
	Period string `json:"period"`
	Error  string `json:"error"`
}

// EventType returns the event type for AnalysisFailedData
func (d *AnalysisFailedData) EventType() EventType {
	return AnalysisFailed
}

// ComparisonCompletedData contains data for ComparisonCompleted events
type ComparisonCompletedData struct {
	Tickers    []string `json:"tickers"`
	BestSharpe string   `json:"best_sharpe"`
	Failed     int      `json:"failed"`
}

// EventType returns the event type for ComparisonCompletedData
func (d *ComparisonCompletedData) EventType() EventType {
	return ComparisonCompleted
}

// WatchlistRefreshedData contains data for WatchlistRefreshed events
type WatchlistRefreshedData struct {
	Analyzed int `json:"analyzed"`
	Failed   int `json:"failed"`
}

// EventType returns the event type for WatchlistRefreshedData
func (d *WatchlistRefreshedData) EventType() EventType {
	return WatchlistRefreshed
}

// AnalysesPrunedData contains data for AnalysesPruned events
type AnalysesPrunedData struct {
	Deleted int64     `json:"deleted"`
	Cutoff  time.Time `json:"cutoff"`
}

// EventType returns the event type for AnalysesPrunedData
func (d *AnalysesPrunedData) EventType() EventType {
	return AnalysesPruned
}

// BackupCompletedData contains data for BackupCompleted events
type BackupCompletedData struct {
	Key       string `json:"key"`
	SizeBytes int64  `json:"size_bytes"`
	Pruned    int    `json:"pruned"`
}

// EventType returns the event type for BackupCompletedData
func (d *BackupCompletedData) EventType() EventType {
	return BackupCompleted
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}
