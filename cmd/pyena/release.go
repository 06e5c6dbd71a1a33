package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/CLIMB-COVID/pyena/internal/config"
	"github.com/CLIMB-COVID/pyena/internal/ena"
)

var releaseCmd = &cobra.Command{
	Use:   "release <accession>",
	Short: "Release a held accession to the public archive",
	Long: `Release makes a provisionally private accession public. Records
submitted by the register command are held until their hold date;
releasing them early is occasionally needed when a registration was
interrupted after the ADD but before the automatic release.`,
	Args:          cobra.ExactArgs(1),
	RunE:          runRelease,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	releaseReady  bool
	releaseCenter string
)

func init() {
	releaseCmd.Flags().BoolVar(&releaseReady, "my-data-is-ready", false, "Release on the live archive instead of the sandbox")
	releaseCmd.Flags().StringVar(&releaseCenter, "center-name", "", "Submitting center name (required)")
	releaseCmd.MarkFlagRequired("center-name")
}

func runRelease(cmd *cobra.Command, args []string) error {
	target := args[0]

	cfg, err := config.Load(config.Path())
	if err != nil {
		return err
	}

	client := ena.NewClient(cfg, releaseReady, os.Stderr)
	outcome, err := client.Release(context.Background(), target, releaseCenter)
	if err != nil {
		return err
	}

	switch outcome {
	case ena.OutcomeOK, ena.OutcomeDuplicate:
		printSuccess("%s released", target)
	default:
		printError("release of %s failed (%s)", target, outcome)
		os.Exit(2)
	}
	return nil
}
