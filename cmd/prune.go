package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// dbPruneCmd returns the database prune command for bulk-deleting reports
func dbPruneCmd() *cobra.Command {
	var ids []string

	cmd := &cobra.Command{
		Use:   "db:prune",
		Short: "Delete stored reports by id",
		Long: `Deletes the reports with the given ids, along with their issues. Ids that
do not exist are ignored, so the command is safe to re-run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(ids) == 0 {
				return fmt.Errorf("at least one id is required (use --ids)")
			}

			conn, err := openDatabase(dbPath)
			if err != nil {
				return err
			}
			defer conn.Close()

			deleted, err := conn.DeleteReportsByIDs(ids)
			if err != nil {
				return fmt.Errorf("failed to delete reports: %w", err)
			}

			log.Info().Int("deleted", deleted).Int("requested", len(ids)).Msg("Prune finished")
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&ids, "ids", nil, "Report ids to delete")

	return cmd
}
