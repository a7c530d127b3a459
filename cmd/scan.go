package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rpaixao/a11y-analyzer/internal/runner"
	"github.com/rpaixao/a11y-analyzer/internal/scanner"
)

// scanCmd runs a single scan from the terminal, persists the report and
// prints it as JSON.
func scanCmd() *cobra.Command {
	var reportPath string

	cmd := &cobra.Command{
		Use:   "scan <url>",
		Short: "Audit one URL and print the resulting report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := openDatabase(dbPath)
			if err != nil {
				return err
			}
			defer conn.Close()

			scans := scanner.New(runner.New(toolPath, scanTimeout), conn)
			report, err := scans.Scan(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}

			jsonData, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal report to JSON: %w", err)
			}

			fmt.Println(string(jsonData))

			if reportPath != "" {
				if err := os.MkdirAll(filepath.Dir(reportPath), 0755); err != nil {
					return fmt.Errorf("failed to create directory for report: %w", err)
				}
				if err := os.WriteFile(reportPath, jsonData, 0644); err != nil {
					return fmt.Errorf("failed to write JSON to file: %w", err)
				}
				log.Info().Str("output", reportPath).Msg("Report saved successfully.")
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&reportPath, "report-path", "", "Path to also save the report JSON")

	return cmd
}
