package cmd

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rpaixao/a11y-analyzer/internal/runner"
)

var Version = "0.0.0"

var (
	configFilePath string
	dbPath         string
	toolPath       string
	scanTimeout    time.Duration
	vConfig        = viper.New()
)

const configFileFlag = "config"

var rootCmd = &cobra.Command{
	Use:   "a11y-analyzer",
	Short: "Website Accessibility Analyzer",
	Long:  `A service and command-line tool to audit websites for accessibility issues.`,
}

func Execute() error {
	vConfig.SetEnvPrefix("A11y-Analyzer")
	vConfig.AutomaticEnv()

	cobra.OnInitialize(initialize)

	rootCmd.PersistentFlags().StringVar(&configFilePath, configFileFlag, "", "Path to the config file")
	cobra.CheckErr(rootCmd.MarkPersistentFlagFilename(configFileFlag, "yaml", "yml", "json"))
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "data/a11y.db", "Path to the SQLite database file")
	rootCmd.PersistentFlags().StringVar(&toolPath, "tool", "a11y-scan", "Audit tool executable, invoked with the target URL as its sole argument")
	rootCmd.PersistentFlags().DurationVar(&scanTimeout, "timeout", runner.DefaultTimeout, "Hard wall-clock bound on one tool invocation")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(dbPruneCmd())
	rootCmd.AddCommand(dbResetCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Error executing root command")
		return err
	}
	return nil
}
