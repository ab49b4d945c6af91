package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"blogcast/config"
	"blogcast/runner/storage"
)

// loadConfig reads the config file and applies command-line overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if stagesPath != "" {
		cfg.StagesPath = stagesPath
	}
	return cfg, nil
}

// openStorage opens the run history database in the data directory
func openStorage(cfg *config.Config) (*storage.Storage, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if dir := filepath.Dir(cfg.AudioPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create audio directory: %w", err)
		}
	}

	dbPath := filepath.Join(cfg.DataDir, "blogcast.db")
	store, err := storage.NewStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Printf("💾 Run history: %s", dbPath)
	return store, nil
}
