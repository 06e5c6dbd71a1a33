package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"github.com/CLIMB-COVID/pyena/internal/config"
)

// Submission records one multipart POST received by the fake drop-box.
type Submission struct {
	Environment string // "production" or "sandbox"
	Fields      map[string]string
	Username    string
	Password    string
}

type scriptedResponse struct {
	status int
	body   string
}

// FakeArchive is an in-process stand-in for the archive: a drop-box
// endpoint in two environments and the portal search endpoint.
// Receipts are served from a FIFO queue of scripted responses; when
// the queue is empty a generic success receipt is synthesized from the
// document type of the incoming submission.
type FakeArchive struct {
	Server *httptest.Server

	mu          sync.Mutex
	submissions []Submission
	responses   []scriptedResponse
	portalBody  string
	searches    []url.Values
}

// NewFakeArchive starts the fake archive and registers its shutdown
// with the test.
func NewFakeArchive(t *testing.T) *FakeArchive {
	t.Helper()

	a := &FakeArchive{}

	router := mux.NewRouter()
	router.HandleFunc("/submit/{env:production|sandbox}/", a.handleSubmit).Methods(http.MethodPost)
	router.HandleFunc("/portal/api/search", a.handleSearch).Methods(http.MethodGet)

	a.Server = httptest.NewServer(router)
	t.Cleanup(a.Server.Close)
	return a
}

// Config returns a configuration pointing every endpoint at the fake,
// with a dummy credential pair already populated.
func (a *FakeArchive) Config() *config.Config {
	cfg := config.Default()
	cfg.Submission.ProductionURL = a.Server.URL + "/submit/production/"
	cfg.Submission.SandboxURL = a.Server.URL + "/submit/sandbox/"
	cfg.Submission.TimeoutSeconds = 5
	cfg.Portal.SearchURL = a.Server.URL + "/portal/api/search"
	cfg.Portal.TimeoutSeconds = 5
	cfg.Credentials = config.Credentials{Username: "Webin-00000", Password: "test-pass"}
	return cfg
}

// EnqueueReceipt scripts the next drop-box response.
func (a *FakeArchive) EnqueueReceipt(status int, body string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.responses = append(a.responses, scriptedResponse{status: status, body: body})
}

// SetPortalBody sets the raw body the portal search endpoint returns.
// The real portal returns an empty body when nothing matches, which is
// also the fake's default.
func (a *FakeArchive) SetPortalBody(body string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.portalBody = body
}

// Submissions returns a copy of every submission received so far.
func (a *FakeArchive) Submissions() []Submission {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Submission, len(a.submissions))
	copy(out, a.submissions)
	return out
}

// Searches returns the query parameters of every portal search
// received so far.
func (a *FakeArchive) Searches() []url.Values {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]url.Values, len(a.searches))
	copy(out, a.searches)
	return out
}

func (a *FakeArchive) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	fields := make(map[string]string)
	for name, values := range r.MultipartForm.Value {
		if len(values) > 0 {
			fields[name] = values[0]
		}
	}

	sub := Submission{
		Environment: mux.Vars(r)["env"],
		Fields:      fields,
	}
	sub.Username, sub.Password, _ = r.BasicAuth()

	a.mu.Lock()
	a.submissions = append(a.submissions, sub)
	resp, ok := a.popResponse()
	a.mu.Unlock()

	if !ok {
		resp = scriptedResponse{status: http.StatusOK, body: defaultReceipt(fields)}
	}
	w.WriteHeader(resp.status)
	w.Write([]byte(resp.body))
}

// popResponse must be called with the mutex held.
func (a *FakeArchive) popResponse() (scriptedResponse, bool) {
	if len(a.responses) == 0 {
		return scriptedResponse{}, false
	}
	resp := a.responses[0]
	a.responses = a.responses[1:]
	return resp, true
}

// defaultReceipt synthesizes a success receipt matching the document
// type of the submission.
func defaultReceipt(fields map[string]string) string {
	for docType, accession := range map[string]string{
		"SAMPLE":     "ERS0000001",
		"EXPERIMENT": "ERX0000001",
		"RUN":        "ERR0000001",
	} {
		if _, ok := fields[docType]; ok {
			return ReceiptOK(docType, accession)
		}
	}
	// Envelope-only submission: a release.
	return ReceiptReleaseOK()
}

func (a *FakeArchive) handleSearch(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	a.searches = append(a.searches, r.URL.Query())
	body := a.portalBody
	a.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(body))
}
