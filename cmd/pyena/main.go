package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version info
var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

// Global flags
var (
	noColor bool
	quiet   bool
	debug   bool
)

// Root command
var rootCmd = &cobra.Command{
	Use:   "pyena",
	Short: "ENA sequencing metadata registration client",
	Long: `pyena registers sequencing metadata with the European Nucleotide
Archive: it submits sample, experiment and run documents to the
drop-box API, stages the run's data file over FTP, and reuses
accessions the archive already holds instead of failing on duplicates.

Credentials are read from the WEBIN_USER and WEBIN_PASS environment
variables. Submissions go to the sandbox unless --my-data-is-ready is
given.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	Example: `  # Register a sample against the sandbox
  pyena register --study-accession PRJEB00001 --sample-name hCoV-19/X/1 \
      --sample-center-name "Example Centre" --sample-taxon 2697049 --sample-only

  # Full sample/experiment/run registration against the live archive
  pyena register --my-data-is-ready --study-accession PRJEB00001 \
      --sample-name hCoV-19/X/1 --sample-center-name "Example Centre" \
      --sample-taxon 2697049 --run-name run1 --run-file-path reads.bam \
      --run-center-name "Example Centre" --run-instrument "Oxford Nanopore GridION" \
      --run-lib-source VIRAL_RNA --run-lib-selection PCR --run-lib-strategy AMPLICON

  # Release a held accession
  pyena release ERS0000001 --center-name "Example Centre"`,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output")

	// Add commands to root
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(releaseCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(2)
	}
}
