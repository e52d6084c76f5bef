// =============================================================================
// BKHD to UpSSE Converter - Main Entry Point
// =============================================================================
//
// USAGE:
//   upsse process    - Convert a BKHD listing into an UpSSE import file
//   upsse locations  - List the configured locations
//   upsse version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : conversion logic, reference data, readers and writers
//   - pkg/       : shared utilities (logging, output files)
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/bkhd-upsse-converter/cmd"
)

func main() {
	cmd.Execute()
}
