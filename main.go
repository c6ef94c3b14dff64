// =============================================================================
// Expensight - Main Entry Point
// =============================================================================
//
// USAGE:
//   expensight run       - Run the pipeline once and export the report
//   expensight serve     - Start the interactive HTTP front-end
//   expensight version   - Display the application version
//
// ARCHITECTURE:
//   cmd/        : CLI command definitions (Cobra)
//   internal/   : core pipeline (model, loader, analyze, chart, report,
//                 pipeline session, HTTP server)
//   pkg/        : shared utilities
//
// =============================================================================

package main

import (
	"github.com/expensight/expensight/cmd"
)

func main() {
	cmd.Execute()
}
