package ena

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/CLIMB-COVID/pyena/internal/config"
	"github.com/CLIMB-COVID/pyena/internal/errors"
)

// submissionField is the multipart field carrying the action envelope.
const submissionField = "SUBMISSION"

// Client submits metadata documents to the ENA drop-box. The endpoint
// (production or sandbox) is fixed at construction, as are the
// credentials; nothing is read from ambient process state.
type Client struct {
	endpoint   string
	creds      config.Credentials
	httpClient *http.Client
	diag       io.Writer
	now        func() time.Time
}

// NewClient creates a drop-box client. When production is false the
// sandbox endpoint is used, so submissions never touch the live
// archive. Diagnostics (receipt dumps, release notices) go to diag.
func NewClient(cfg *config.Config, production bool, diag io.Writer) *Client {
	endpoint := cfg.Submission.SandboxURL
	if production {
		endpoint = cfg.Submission.ProductionURL
	}
	if diag == nil {
		diag = io.Discard
	}
	return &Client{
		endpoint: endpoint,
		creds:    cfg.Credentials,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Submission.TimeoutSeconds) * time.Second,
		},
		diag: diag,
		now:  time.Now,
	}
}

// SubmitOptions controls a single submission.
type SubmitOptions struct {
	CenterName string
	// Release issues a follow-up RELEASE for the returned accession
	// when the submission itself succeeds.
	Release bool
	// Modify submits a MODIFY envelope instead of ADD+HOLD.
	Modify bool
}

// Submit posts a document plus its action envelope to the drop-box and
// classifies the receipt. A transport failure is returned as an error;
// the archive's own rejections come back as outcomes.
func (c *Client) Submit(ctx context.Context, docType DocumentType, document []byte, opts SubmitOptions) (Outcome, string, error) {
	const op = errors.Op("ena.Client.Submit")

	envelope, err := NewSubmission(opts.CenterName, opts.Modify, c.now())
	if err != nil {
		return OutcomeFatal, "", errors.Wrap(op, err)
	}

	status, body, err := c.post(ctx, map[string][]byte{
		string(docType): document,
		submissionField: envelope,
	})
	if err != nil {
		return OutcomeFatal, "", errors.E(op, errors.KindNetwork, err)
	}

	outcome, accession := Classify(status, body, string(docType), c.diag)

	if opts.Release && outcome == OutcomeOK && accession != "" {
		releaseOutcome, err := c.Release(ctx, accession, opts.CenterName)
		if err != nil {
			return OutcomeFatal, accession, errors.Wrap(op, err)
		}
		if releaseOutcome == OutcomeOK {
			fmt.Fprintf(c.diag, "[INFO] %s released successfully: %s\n", docType, accession)
		}
	}

	return outcome, accession, nil
}

// Release issues a RELEASE action for a held accession. The receipt's
// accession is discarded; only the outcome matters.
func (c *Client) Release(ctx context.Context, target, centerName string) (Outcome, error) {
	const op = errors.Op("ena.Client.Release")

	envelope, err := NewRelease(target, centerName)
	if err != nil {
		return OutcomeFatal, errors.Wrap(op, err)
	}

	status, body, err := c.post(ctx, map[string][]byte{
		submissionField: envelope,
	})
	if err != nil {
		return OutcomeFatal, errors.E(op, errors.KindNetwork, err)
	}

	outcome, _ := Classify(status, body, "", c.diag)
	return outcome, nil
}

// post sends a multipart/form-data request with basic auth and returns
// the raw status and body.
func (c *Client) post(ctx context.Context, fields map[string][]byte) (int, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		part, err := writer.CreateFormField(name)
		if err != nil {
			return 0, "", err
		}
		if _, err := part.Write(value); err != nil {
			return 0, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return 0, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.SetBasicAuth(c.creds.Username, c.creds.Password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", err
	}
	return resp.StatusCode, string(body), nil
}
