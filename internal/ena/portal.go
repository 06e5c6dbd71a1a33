package ena

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/CLIMB-COVID/pyena/internal/config"
	"github.com/CLIMB-COVID/pyena/internal/errors"
)

// PortalSample is a sample record returned by the portal search API.
type PortalSample struct {
	SampleAccession          string `json:"sample_accession"`
	SampleDescription        string `json:"sample_description"`
	SampleAlias              string `json:"sample_alias"`
	SecondarySampleAccession string `json:"secondary_sample_accession"`
}

// PortalClient queries the archive's read-only search API. No
// authentication is required.
type PortalClient struct {
	searchURL  string
	httpClient *http.Client
}

// NewPortalClient creates a portal search client.
func NewPortalClient(cfg *config.Config) *PortalClient {
	return &PortalClient{
		searchURL: cfg.Portal.SearchURL,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Portal.TimeoutSeconds) * time.Second,
		},
	}
}

// FindSample returns samples already registered under the given study
// accession and sample alias. An empty slice means the sample has not
// been registered yet.
func (p *PortalClient) FindSample(ctx context.Context, study, alias string) ([]PortalSample, error) {
	const op = errors.Op("ena.PortalClient.FindSample")

	params := url.Values{}
	params.Set("query", fmt.Sprintf("study_accession=%q AND sample_alias=%q", study, alias))
	params.Set("result", "sample")
	params.Set("fields", "sample_accession,sample_description,sample_alias,secondary_sample_accession")
	params.Set("limit", "0")
	params.Set("download", "false")
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.E(op, errors.KindNetwork, err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, errors.E(op, errors.KindNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.E(op, errors.KindNetwork, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.E(op, errors.KindNetwork,
			fmt.Sprintf("portal search returned HTTP %d", resp.StatusCode))
	}

	// The portal returns an empty body rather than [] when nothing
	// matches.
	if strings.TrimSpace(string(body)) == "" {
		return nil, nil
	}

	var samples []PortalSample
	if err := json.Unmarshal(body, &samples); err != nil {
		return nil, errors.E(op, errors.KindParse, err, "failed to decode portal response")
	}
	return samples, nil
}
