// =============================================================================
// Expensight - Serve Command
// =============================================================================
//
// Starts the HTTP front-end around a pipeline session. The front-end exposes
// the cleaned table, report generation + download, and the chart images.
//
// =============================================================================

package cmd

import (
	"github.com/expensight/expensight/internal/pipeline"
	"github.com/expensight/expensight/internal/server"
	"github.com/spf13/cobra"
)

// addr overrides the configured listen address for this invocation.
var addr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the interactive HTTP front-end",
	Long: `Serve the pipeline over HTTP:

  GET  /api/records       current cleaned table
  POST /api/report        trigger a run, returns the report location
  GET  /api/report/file   download the report workbook
  GET  /api/charts        chart inventory
  GET  /api/charts/:name  one chart PNG`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger := newLogger(cfg)
		session := pipeline.NewSession(cfg, logger)

		listen := cfg.Addr()
		if addr != "" {
			listen = addr
		}
		return server.New(session, logger).Start(listen)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config and EXPENSIGHT_ADDR)")
}
