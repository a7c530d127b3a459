package cmd

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rpaixao/a11y-analyzer/internal/api"
	"github.com/rpaixao/a11y-analyzer/internal/auth"
	"github.com/rpaixao/a11y-analyzer/internal/runner"
	"github.com/rpaixao/a11y-analyzer/internal/scanner"
)

func serveCmd() *cobra.Command {
	var addr string
	var corsOrigins []string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the accessibility analyzer HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := openDatabase(dbPath)
			if err != nil {
				return err
			}
			defer conn.Close()

			scans := scanner.New(runner.New(toolPath, scanTimeout), conn)
			router := api.NewRouter(scans, conn, auth.New(conn), corsOrigins)

			log.Info().Str("addr", addr).Str("db", dbPath).Str("tool", toolPath).Msg("Server is running")
			return http.ListenAndServe(addr, router)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":5000", "Address to listen on")
	cmd.Flags().StringSliceVar(&corsOrigins, "cors-origins",
		[]string{"http://localhost:3000", "http://localhost:5173"}, "Allowed CORS origins")

	return cmd
}
