package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CLIMB-COVID/pyena/internal/config"
	"github.com/CLIMB-COVID/pyena/internal/ena"
	"github.com/CLIMB-COVID/pyena/internal/register"
	"github.com/CLIMB-COVID/pyena/internal/ui"
	"github.com/CLIMB-COVID/pyena/internal/upload"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a sample, experiment and run with the archive",
	Long: `Register sequencing metadata with the archive in three dependent
steps: sample, then experiment, then run. A sample already registered
under the study is reused rather than resubmitted. The run's data file
is uploaded over FTP before its metadata is submitted, unless --no-ftp
says it was staged out-of-band.

The command prints one space-separated summary line to stdout:
success flag, readiness flag, sample name, run name, file path, study
accession, then the sample, experiment and run accessions ("None" when
absent).`,
	RunE:          runRegister,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	registerReady      bool
	registerNoFTP      bool
	registerSampleOnly bool
	registerModify     bool

	registerStudyAccession string

	registerSampleAttrs  []string
	registerSampleName   string
	registerSampleCenter string
	registerSampleTaxon  string

	registerExperimentAttrs []string

	registerRunName         string
	registerRunFilePath     string
	registerRunFileType     string
	registerRunCenter       string
	registerRunInstrument   string
	registerRunLibSource    string
	registerRunLibSelection string
	registerRunLibStrategy  string
	registerRunLibProtocol  string
)

func init() {
	f := registerCmd.Flags()

	f.BoolVar(&registerReady, "my-data-is-ready", false, "Submit to the live archive instead of the sandbox")
	f.BoolVar(&registerNoFTP, "no-ftp", false, "Skip the FTP upload (file already staged)")
	f.BoolVar(&registerSampleOnly, "sample-only", false, "Stop after registering the sample")
	f.BoolVar(&registerModify, "modify", false, "Resubmit the sample as a modification")

	f.StringVar(&registerStudyAccession, "study-accession", "", "Study accession the sample belongs to (required)")

	f.StringArrayVar(&registerSampleAttrs, "sample-attr", nil, "Sample attribute as tag=value (repeatable)")
	f.StringVar(&registerSampleName, "sample-name", "", "Sample alias (required)")
	f.StringVar(&registerSampleCenter, "sample-center-name", "", "Submitting center for the sample (required)")
	f.StringVar(&registerSampleTaxon, "sample-taxon", "", "NCBI taxon id for the sample (required)")

	f.StringArrayVar(&registerExperimentAttrs, "experiment-attr", nil, "Experiment attribute as tag=value (repeatable)")

	f.StringVar(&registerRunName, "run-name", "", "Run (and experiment) alias")
	f.StringVar(&registerRunFilePath, "run-file-path", "", "Path to the run's data file")
	f.StringVar(&registerRunFileType, "run-file-type", "bam", "File type tag for the data file")
	f.StringVar(&registerRunCenter, "run-center-name", "", "Submitting center for the experiment and run")
	f.StringVar(&registerRunInstrument, "run-instrument", "", "Sequencing instrument free text")
	f.StringVar(&registerRunLibSource, "run-lib-source", "", "Library source")
	f.StringVar(&registerRunLibSelection, "run-lib-selection", "", "Library selection")
	f.StringVar(&registerRunLibStrategy, "run-lib-strategy", "", "Library strategy")
	f.StringVar(&registerRunLibProtocol, "run-lib-protocol", "", "Library construction protocol free text")

	registerCmd.MarkFlagRequired("study-accession")
	registerCmd.MarkFlagRequired("sample-name")
	registerCmd.MarkFlagRequired("sample-center-name")
	registerCmd.MarkFlagRequired("sample-taxon")
}

func runRegister(cmd *cobra.Command, args []string) error {
	if err := validateRunFlags(); err != nil {
		return err
	}

	sampleAttrs, err := parseAttrPairs(registerSampleAttrs)
	if err != nil {
		return err
	}
	experimentAttrs, err := parseAttrPairs(registerExperimentAttrs)
	if err != nil {
		return err
	}

	cfgPath := config.Path()
	printDebug("loading config from %q", cfgPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	if !registerReady {
		printWarning("Submitting to the sandbox; pass --my-data-is-ready to use the live archive")
	}

	var uploader register.Uploader = upload.NewFTPUploader(cfg)
	if !quiet {
		uploader = spinnerUploader{inner: uploader}
	}

	pipeline := &register.Pipeline{
		Submitter: ena.NewClient(cfg, registerReady, os.Stderr),
		Finder:    ena.NewPortalClient(cfg),
		Uploader:  uploader,
		Checksum:  upload.MD5Sum,
		Diag:      os.Stderr,
	}

	req := register.Request{
		Production: registerReady,
		Modify:     registerModify,
		SampleOnly: registerSampleOnly,
		SkipUpload: registerNoFTP,

		StudyAccession: registerStudyAccession,

		SampleName:       registerSampleName,
		SampleCenterName: registerSampleCenter,
		SampleTaxon:      registerSampleTaxon,
		SampleAttributes: sampleAttrs,

		ExperimentAttributes: experimentAttrs,

		RunName:       registerRunName,
		RunFilePath:   registerRunFilePath,
		RunFileType:   registerRunFileType,
		RunCenterName: registerRunCenter,
		RunInstrument: registerRunInstrument,
		Library: ena.LibrarySpec{
			Source:    strings.ReplaceAll(registerRunLibSource, "_", " "),
			Selection: strings.ReplaceAll(registerRunLibSelection, "_", " "),
			Strategy:  registerRunLibStrategy,
			Protocol:  registerRunLibProtocol,
		},
	}

	res := pipeline.Run(context.Background(), req)
	fmt.Println(res.Summary(req))

	if code := res.ExitCode(); code != 0 {
		os.Exit(code)
	}
	return nil
}

// validateRunFlags enforces the run-related flags that become required
// when the invocation goes past the sample stage.
func validateRunFlags() error {
	if registerSampleOnly {
		return nil
	}

	required := map[string]string{
		"run-name":          registerRunName,
		"run-file-path":     registerRunFilePath,
		"run-center-name":   registerRunCenter,
		"run-instrument":    registerRunInstrument,
		"run-lib-source":    registerRunLibSource,
		"run-lib-selection": registerRunLibSelection,
		"run-lib-strategy":  registerRunLibStrategy,
	}

	var missing []string
	for flag, value := range required {
		if value == "" {
			missing = append(missing, "--"+flag)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("required without --sample-only: %s", strings.Join(missing, ", "))
	}
	return nil
}

// spinnerUploader wraps the FTP uploader with terminal feedback.
type spinnerUploader struct {
	inner register.Uploader
}

func (s spinnerUploader) Upload(ctx context.Context, path string) error {
	spinner := ui.NewSpinner(fmt.Sprintf("Uploading %s", filepath.Base(path)))
	spinner.Start()
	defer spinner.Stop()
	return s.inner.Upload(ctx, path)
}
