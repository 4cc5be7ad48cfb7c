package di

import (
	"fmt"
	"path/filepath"

	"github.com/aristath/riskanalyzer/internal/config"
	"github.com/aristath/riskanalyzer/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens both databases and applies their schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// 1. analysis.db - persisted analyses
	analysisDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "analysis.db"),
		Profile: database.ProfileStandard,
		Name:    database.NameAnalysis,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize analysis database: %w", err)
	}
	container.AnalysisDB = analysisDB

	// 2. cache.db - ephemeral price and market context cache
	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    database.NameCache,
	})
	if err != nil {
		analysisDB.Close()
		return nil, fmt.Errorf("failed to initialize cache database: %w", err)
	}
	container.CacheDB = cacheDB

	for _, db := range []*database.DB{analysisDB, cacheDB} {
		if err := db.Migrate(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to migrate %s database: %w", db.Name(), err)
		}
	}

	log.Info().Str("data_dir", cfg.DataDir).Msg("Databases initialized")
	return container, nil
}
