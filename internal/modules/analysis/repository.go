package analysis

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Repository persists analyses in analysis.db. The full record is stored as a
// msgpack payload; indexed columns exist only for lookups.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new analysis repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "analysis").Logger(),
	}
}

// Save inserts an analysis
func (r *Repository) Save(ctx context.Context, a *Analysis) error {
	payload, err := msgpack.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode analysis %s: %w", a.ID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO analyses (id, ticker, period, data_source, risk_level, risk_score, risk_free_rate, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Ticker, a.Period, a.DataSource,
		string(a.Assessment.RiskLevel), a.Assessment.RiskScore, a.RiskFreeRate,
		payload, a.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis %s: %w", a.ID, err)
	}

	return nil
}

// GetByID returns the analysis or ErrNotFound
func (r *Repository) GetByID(ctx context.Context, id string) (*Analysis, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, "SELECT payload FROM analyses WHERE id = ?", id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis %s: %w", id, err)
	}

	return decodeAnalysis(payload)
}

// ListByTicker returns the newest analyses for a ticker first
func (r *Repository) ListByTicker(ctx context.Context, ticker string, limit int) ([]*Analysis, error) {
	return r.list(ctx,
		"SELECT payload FROM analyses WHERE ticker = ? ORDER BY created_at DESC, id LIMIT ?",
		ticker, limit)
}

// ListRecent returns the newest analyses across all tickers
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]*Analysis, error) {
	return r.list(ctx,
		"SELECT payload FROM analyses ORDER BY created_at DESC, id LIMIT ?",
		limit)
}

// DeleteOlderThan removes analyses created before cutoff and returns how many were removed
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM analyses WHERE created_at < ?", cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to delete old analyses: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// CountByLevel returns the number of stored analyses per risk level
func (r *Repository) CountByLevel(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT risk_level, COUNT(*) FROM analyses GROUP BY risk_level")
	if err != nil {
		return nil, fmt.Errorf("failed to count analyses: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var level string
		var count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, fmt.Errorf("failed to scan analysis count: %w", err)
		}
		counts[level] = count
	}
	return counts, rows.Err()
}

func (r *Repository) list(ctx context.Context, query string, args ...interface{}) ([]*Analysis, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	analyses := make([]*Analysis, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}

		a, err := decodeAnalysis(payload)
		if err != nil {
			r.log.Warn().Err(err).Msg("Skipping undecodable analysis")
			continue
		}
		analyses = append(analyses, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analyses: %w", err)
	}
	return analyses, nil
}

func decodeAnalysis(payload []byte) (*Analysis, error) {
	var a Analysis
	if err := msgpack.Unmarshal(payload, &a); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}
	// msgpack restores timestamps in time.Local
	a.CreatedAt = a.CreatedAt.UTC()
	return &a, nil
}
