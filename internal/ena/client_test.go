package ena

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/CLIMB-COVID/pyena/internal/testutil"
)

func TestClientSubmitMultipartFields(t *testing.T) {
	archive := testutil.NewFakeArchive(t)
	client := NewClient(archive.Config(), false, nil)

	outcome, accession, err := client.Submit(context.Background(),
		DocumentSample, []byte("<SAMPLE_SET/>"), SubmitOptions{CenterName: "Example Centre"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if outcome != OutcomeOK {
		t.Fatalf("outcome = %v, want OK", outcome)
	}
	if accession != "ERS0000001" {
		t.Errorf("accession = %q, want ERS0000001", accession)
	}

	subs := archive.Submissions()
	if len(subs) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(subs))
	}
	sub := subs[0]

	if sub.Environment != "sandbox" {
		t.Errorf("environment = %q, want sandbox", sub.Environment)
	}
	if sub.Username != "Webin-00000" || sub.Password != "test-pass" {
		t.Errorf("basic auth not forwarded: %q/%q", sub.Username, sub.Password)
	}
	if sub.Fields["SAMPLE"] != "<SAMPLE_SET/>" {
		t.Errorf("SAMPLE field = %q", sub.Fields["SAMPLE"])
	}

	envelope, ok := sub.Fields["SUBMISSION"]
	if !ok {
		t.Fatal("expected SUBMISSION field")
	}
	if !strings.Contains(envelope, "<ADD>") || !strings.Contains(envelope, "HoldUntilDate") {
		t.Errorf("envelope missing ADD+HOLD actions: %s", envelope)
	}
	if !strings.Contains(envelope, `center_name="Example Centre"`) {
		t.Errorf("envelope missing center name: %s", envelope)
	}
}

func TestClientProductionEndpoint(t *testing.T) {
	archive := testutil.NewFakeArchive(t)
	client := NewClient(archive.Config(), true, nil)

	if _, _, err := client.Submit(context.Background(),
		DocumentSample, []byte("<SAMPLE_SET/>"), SubmitOptions{CenterName: "C"}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	subs := archive.Submissions()
	if len(subs) != 1 || subs[0].Environment != "production" {
		t.Errorf("expected a production submission, got %+v", subs)
	}
}

func TestClientModifyEnvelope(t *testing.T) {
	archive := testutil.NewFakeArchive(t)
	client := NewClient(archive.Config(), false, nil)

	if _, _, err := client.Submit(context.Background(),
		DocumentSample, []byte("<SAMPLE_SET/>"), SubmitOptions{CenterName: "C", Modify: true}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	envelope := archive.Submissions()[0].Fields["SUBMISSION"]
	if !strings.Contains(envelope, "<MODIFY>") {
		t.Errorf("envelope missing MODIFY action: %s", envelope)
	}
	if strings.Contains(envelope, "HOLD") || strings.Contains(envelope, "<ADD>") {
		t.Errorf("modify envelope must carry only MODIFY: %s", envelope)
	}
}

func TestClientReleaseFollowUp(t *testing.T) {
	archive := testutil.NewFakeArchive(t)
	var diag bytes.Buffer
	client := NewClient(archive.Config(), false, &diag)

	outcome, accession, err := client.Submit(context.Background(),
		DocumentSample, []byte("<SAMPLE_SET/>"), SubmitOptions{CenterName: "C", Release: true})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if outcome != OutcomeOK || accession != "ERS0000001" {
		t.Fatalf("unexpected result: %v %q", outcome, accession)
	}

	subs := archive.Submissions()
	if len(subs) != 2 {
		t.Fatalf("expected submission + release, got %d requests", len(subs))
	}

	release := subs[1]
	if _, ok := release.Fields["SAMPLE"]; ok {
		t.Error("release request must carry only the envelope")
	}
	if !strings.Contains(release.Fields["SUBMISSION"], `target="ERS0000001"`) {
		t.Errorf("release envelope missing target: %s", release.Fields["SUBMISSION"])
	}
	if !strings.Contains(diag.String(), "released successfully") {
		t.Error("expected release notice in diagnostics")
	}
}

func TestClientNoReleaseWithoutFlag(t *testing.T) {
	archive := testutil.NewFakeArchive(t)
	client := NewClient(archive.Config(), false, nil)

	if _, _, err := client.Submit(context.Background(),
		DocumentSample, []byte("<SAMPLE_SET/>"), SubmitOptions{CenterName: "C"}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if subs := archive.Submissions(); len(subs) != 1 {
		t.Errorf("expected no release follow-up, got %d requests", len(subs))
	}
}

func TestClientNoReleaseOnDuplicate(t *testing.T) {
	archive := testutil.NewFakeArchive(t)
	archive.EnqueueReceipt(http.StatusOK, testutil.ReceiptDuplicate("s", "ERS9"))
	client := NewClient(archive.Config(), false, nil)

	outcome, accession, err := client.Submit(context.Background(),
		DocumentSample, []byte("<SAMPLE_SET/>"), SubmitOptions{CenterName: "C", Release: true})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if outcome != OutcomeDuplicate || accession != "ERS9" {
		t.Fatalf("unexpected result: %v %q", outcome, accession)
	}

	if subs := archive.Submissions(); len(subs) != 1 {
		t.Errorf("duplicate outcome must not trigger a release, got %d requests", len(subs))
	}
}

func TestClientFatalReceipt(t *testing.T) {
	archive := testutil.NewFakeArchive(t)
	archive.EnqueueReceipt(http.StatusInternalServerError, "upstream exploded")
	var diag bytes.Buffer
	client := NewClient(archive.Config(), false, &diag)

	outcome, accession, err := client.Submit(context.Background(),
		DocumentSample, []byte("<SAMPLE_SET/>"), SubmitOptions{CenterName: "C"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if outcome != OutcomeFatal || accession != "" {
		t.Fatalf("unexpected result: %v %q", outcome, accession)
	}
	if !strings.Contains(diag.String(), "upstream exploded") {
		t.Error("expected raw body in diagnostics")
	}
}

func TestClientTransportError(t *testing.T) {
	archive := testutil.NewFakeArchive(t)
	cfg := archive.Config()
	archive.Server.Close()
	client := NewClient(cfg, false, nil)

	outcome, _, err := client.Submit(context.Background(),
		DocumentSample, []byte("<SAMPLE_SET/>"), SubmitOptions{CenterName: "C"})
	if err == nil {
		t.Fatal("expected transport error")
	}
	if outcome != OutcomeFatal {
		t.Errorf("outcome = %v, want FATAL", outcome)
	}
}

func TestClientStandaloneRelease(t *testing.T) {
	archive := testutil.NewFakeArchive(t)
	client := NewClient(archive.Config(), false, nil)

	outcome, err := client.Release(context.Background(), "ERS0000001", "Example Centre")
	if err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if outcome != OutcomeOK {
		t.Errorf("outcome = %v, want OK", outcome)
	}

	envelope := archive.Submissions()[0].Fields["SUBMISSION"]
	if !strings.Contains(envelope, `<RELEASE target="ERS0000001"`) {
		t.Errorf("unexpected release envelope: %s", envelope)
	}
}
