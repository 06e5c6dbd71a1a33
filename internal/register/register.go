// Package register sequences the three dependent registrations a run
// submission needs: sample, then experiment, then run. A fatal outcome
// at any stage halts the stages after it; duplicates are reused, not
// resubmitted. There is no rollback: a sample registered before a
// later stage fails stays registered and is picked up by the
// pre-check on the next invocation.
package register

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/CLIMB-COVID/pyena/internal/ena"
)

// Submitter posts a document to the drop-box and classifies the
// receipt. Implemented by ena.Client.
type Submitter interface {
	Submit(ctx context.Context, docType ena.DocumentType, document []byte, opts ena.SubmitOptions) (ena.Outcome, string, error)
}

// SampleFinder queries the portal for already-registered samples.
// Implemented by ena.PortalClient.
type SampleFinder interface {
	FindSample(ctx context.Context, study, alias string) ([]ena.PortalSample, error)
}

// Uploader stages a run data file in the upload area. Implemented by
// upload.FTPUploader.
type Uploader interface {
	Upload(ctx context.Context, path string) error
}

// Pipeline wires the collaborators for a registration run.
type Pipeline struct {
	Submitter Submitter
	Finder    SampleFinder
	Uploader  Uploader
	Checksum  func(path string) (string, error)
	Diag      io.Writer
}

// Request carries everything a single invocation registers.
type Request struct {
	Production bool // submit to the live archive rather than the sandbox
	Modify     bool // resubmit the sample as a MODIFY action
	SampleOnly bool // stop after the sample stage
	SkipUpload bool // the run file was staged out-of-band

	StudyAccession string

	SampleName       string
	SampleCenterName string
	SampleTaxon      string
	SampleAttributes map[string]string

	ExperimentAttributes map[string]string

	RunName       string
	RunFilePath   string
	RunFileType   string
	RunCenterName string
	RunInstrument string
	Library       ena.LibrarySpec
}

// Result is the outcome of a pipeline run.
type Result struct {
	Success             bool
	SampleAccession     string
	ExperimentAccession string
	RunAccession        string

	runAttempted bool
	runOutcome   ena.Outcome
}

// ExitCode maps the result to the process exit code: 0 on success,
// the absolute value of the run outcome code when the run stage was
// attempted and failed, 2 for any other failure. The run outcome is
// consulted only when that stage actually ran; earlier failures never
// alias into run-specific codes.
func (r Result) ExitCode() int {
	if r.Success {
		return 0
	}
	if r.runAttempted && r.runOutcome.Code() < 0 {
		return -r.runOutcome.Code()
	}
	return 2
}

// Summary renders the single machine-readable stdout line: success
// flag, readiness flag, sample name, run name, file path, study
// accession, then the three accessions. Absent values print as the
// literal "None".
func (r Result) Summary(req Request) string {
	success := "0"
	if r.Success {
		success = "1"
	}
	ready := "0"
	if req.Production {
		ready = "1"
	}
	return strings.Join([]string{
		success,
		ready,
		orNone(req.SampleName),
		orNone(req.RunName),
		orNone(req.RunFilePath),
		orNone(req.StudyAccession),
		orNone(r.SampleAccession),
		orNone(r.ExperimentAccession),
		orNone(r.RunAccession),
	}, " ")
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

// Run walks the registration stages for the request.
func (p *Pipeline) Run(ctx context.Context, req Request) Result {
	diag := p.Diag
	if diag == nil {
		diag = io.Discard
	}

	var res Result

	// Check the portal before submitting, so an already-registered
	// sample is reused without provoking a duplicate error.
	samples, err := p.Finder.FindSample(ctx, req.StudyAccession, req.SampleName)
	if err != nil {
		fmt.Fprintf(diag, "[FAIL] Portal lookup failed for %s: %v\n", req.SampleName, err)
		return res
	}

	if len(samples) > 0 {
		res.SampleAccession = samples[0].SecondarySampleAccession
		fmt.Fprintf(diag, "[SKIP] Accession %s already exists. Moving on...\n", res.SampleAccession)
	} else {
		accession, ok := p.registerSample(ctx, req, diag)
		if !ok {
			return res
		}
		res.SampleAccession = accession
	}

	if req.SampleOnly {
		res.Success = res.SampleAccession != ""
		return res
	}

	if res.SampleAccession == "" {
		fmt.Fprintln(diag, "[FAIL] Sample registration returned no accession; cannot register experiment")
		return res
	}

	expAccession, ok := p.registerExperiment(ctx, req, res.SampleAccession, diag)
	if !ok {
		return res
	}
	res.ExperimentAccession = expAccession

	if res.ExperimentAccession == "" {
		fmt.Fprintln(diag, "[FAIL] Experiment registration returned no accession; cannot register run")
		return res
	}

	res.runAttempted = true
	res.runOutcome, res.RunAccession = p.registerRun(ctx, req, res.ExperimentAccession, diag)
	res.Success = !res.runOutcome.IsFatal() && res.RunAccession != ""
	return res
}

// registerSample submits the SAMPLE document. ok is false when the
// stage failed fatally.
func (p *Pipeline) registerSample(ctx context.Context, req Request, diag io.Writer) (string, bool) {
	record := ena.SampleRecord{
		Alias:      req.SampleName,
		CenterName: req.SampleCenterName,
		TaxonID:    req.SampleTaxon,
		Attributes: req.SampleAttributes,
	}
	document, err := record.Document()
	if err != nil {
		fmt.Fprintf(diag, "[FAIL] Unable to build sample document: %v\n", err)
		return "", false
	}

	outcome, accession, err := p.Submitter.Submit(ctx, ena.DocumentSample, document, ena.SubmitOptions{
		CenterName: req.SampleCenterName,
		Release:    !req.Modify,
		Modify:     req.Modify,
	})
	if err != nil {
		fmt.Fprintf(diag, "[FAIL] Sample submission failed: %v\n", err)
		return "", false
	}
	if outcome.IsFatal() {
		return "", false
	}
	return accession, true
}

// registerExperiment submits the EXPERIMENT document referencing the
// sample. There is no duplicate pre-check at this stage.
func (p *Pipeline) registerExperiment(ctx context.Context, req Request, sampleAccession string, diag io.Writer) (string, bool) {
	record := ena.ExperimentRecord{
		Alias:           req.RunName,
		CenterName:      req.RunCenterName,
		StudyAccession:  req.StudyAccession,
		SampleAccession: sampleAccession,
		Instrument:      req.RunInstrument,
		Library:         req.Library,
		Attributes:      req.ExperimentAttributes,
	}
	document, err := record.Document()
	if err != nil {
		fmt.Fprintf(diag, "[FAIL] Unable to build experiment document: %v\n", err)
		return "", false
	}

	outcome, accession, err := p.Submitter.Submit(ctx, ena.DocumentExperiment, document, ena.SubmitOptions{
		CenterName: req.RunCenterName,
		Release:    true,
	})
	if err != nil {
		fmt.Fprintf(diag, "[FAIL] Experiment submission failed: %v\n", err)
		return "", false
	}
	if outcome.IsFatal() {
		return "", false
	}
	return accession, true
}

// registerRun stages the file (unless skipped), computes its checksum
// and submits the RUN document. An upload failure is fatal before any
// metadata reaches the archive.
func (p *Pipeline) registerRun(ctx context.Context, req Request, expAccession string, diag io.Writer) (ena.Outcome, string) {
	if !req.SkipUpload {
		if err := p.Uploader.Upload(ctx, req.RunFilePath); err != nil {
			fmt.Fprintf(diag, "[FAIL] FTP transfer timed out or failed for %s\n%v\n", req.RunFilePath, err)
			return ena.OutcomeFatal, ""
		}
	}

	checksum, err := p.Checksum(req.RunFilePath)
	if err != nil {
		fmt.Fprintf(diag, "[FAIL] Unable to checksum %s: %v\n", req.RunFilePath, err)
		return ena.OutcomeFatal, ""
	}

	record := ena.RunRecord{
		Alias:               req.RunName,
		CenterName:          req.RunCenterName,
		FilePath:            req.RunFilePath,
		FileType:            req.RunFileType,
		ExperimentAccession: expAccession,
		Checksum:            checksum,
	}
	document, err := record.Document()
	if err != nil {
		fmt.Fprintf(diag, "[FAIL] Unable to build run document: %v\n", err)
		return ena.OutcomeFatal, ""
	}

	outcome, accession, err := p.Submitter.Submit(ctx, ena.DocumentRun, document, ena.SubmitOptions{
		CenterName: req.RunCenterName,
		Release:    true,
	})
	if err != nil {
		fmt.Fprintf(diag, "[FAIL] Run submission failed: %v\n", err)
		return ena.OutcomeFatal, ""
	}
	return outcome, accession
}
