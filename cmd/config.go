package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rpaixao/a11y-analyzer/internal/db"
	"github.com/rpaixao/a11y-analyzer/utils"
)

func initialize() {
	if configFilePath != "" {
		vConfig.SetConfigFile(configFilePath)
		cobra.CheckErr(vConfig.ReadInConfig())
		log.Info().Str("config", configFilePath).Msg("Loaded configuration file")
	}

	envPrefix := ""
	cobra.CheckErr(utils.BindFlags(rootCmd, vConfig, envPrefix))

	logLevel := zerolog.InfoLevel
	zerolog.SetGlobalLevel(logLevel)
	log.Logger = log.Logger.Level(logLevel)
}

// openDatabase creates the parent directory if needed and connects.
func openDatabase(path string) (*db.Connection, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for db: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	return db.NewConnection(absPath)
}
