// Package main provides the vecseg CLI tool.
//
// Usage:
//
//	vecseg [flags] <command> [args]
//
// Local commands:
//
//	write    - Write a segment from JSON lines
//	info     - Show header and geometry of a segment
//	get      - Print the vector at an index
//	range    - Print a contiguous run of vectors
//	many     - Print vectors at arbitrary indices
//	cat      - Print every vector, optionally with metadata
//	dump     - Hex dump the start of a segment file
//	verify   - Check segment files against their headers
//	nearest  - Exact nearest-neighbour scan over a segment
//
// Remote commands (backend from config):
//
//	push, pull, remote-get, remote-ls
//
// Configuration:
//
//	Settings are read from --config and VECSEG_* environment variables,
//	e.g. VECSEG_BACKEND_KIND=s3 VECSEG_BACKEND_S3_BUCKET=segments.
package main

import (
	"fmt"
	"os"

	"github.com/hupe1980/vecseg/cmd/vecseg/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
