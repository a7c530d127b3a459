package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// dbResetCmd returns the database reset command for wiping all stored data
func dbResetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "db:reset",
		Short: "Delete all reports, issues and users from the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to wipe the database without --yes")
			}

			conn, err := openDatabase(dbPath)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := conn.ClearAllData(); err != nil {
				return fmt.Errorf("failed to clear database: %w", err)
			}

			log.Info().Str("db", dbPath).Msg("Database cleared")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the wipe")

	return cmd
}
