// =============================================================================
// Expensight - Run Command
// =============================================================================
//
// Executes one full pipeline run: load and clean the input table, compute
// the aggregate set, render the charts, and export the nine-sheet report.
// Finishes with a console summary mirroring the report's Summary sheet.
//
// =============================================================================

package cmd

import (
	"os"

	"github.com/expensight/expensight/internal/pipeline"
	"github.com/spf13/cobra"
)

// Path overrides for a single run; empty means "use the config value".
var (
	inputFile  string
	outputFile string
	chartsDir  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the expense pipeline once and export the report",
	Long: `Load the expense table, clean and validate it, compute statistics and
groupings, render the four charts, and write the report workbook.

Row-level validation failures are dropped and counted; structural input
problems abort the run without touching any existing report.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if inputFile != "" {
			cfg.InputFile = inputFile
		}
		if outputFile != "" {
			cfg.OutputFile = outputFile
		}
		if chartsDir != "" {
			cfg.ChartsDir = chartsDir
		}

		session := pipeline.NewSession(cfg, newLogger(cfg))
		res, err := session.Run()
		if err != nil {
			return err
		}

		pipeline.WriteSummary(os.Stdout, res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&inputFile, "input", "", "Input expense table (.xlsx or .csv)")
	runCmd.Flags().StringVar(&outputFile, "output", "", "Output report workbook path")
	runCmd.Flags().StringVar(&chartsDir, "charts-dir", "", "Directory for chart PNG files")
}
