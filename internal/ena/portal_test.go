package ena

import (
	"context"
	"testing"

	"github.com/CLIMB-COVID/pyena/internal/testutil"
)

func TestPortalFindSampleQuery(t *testing.T) {
	archive := testutil.NewFakeArchive(t)
	portal := NewPortalClient(archive.Config())

	samples, err := portal.FindSample(context.Background(), "PRJEB12345", "sample-01")
	if err != nil {
		t.Fatalf("FindSample failed: %v", err)
	}
	if samples != nil {
		t.Errorf("empty portal body should yield nil, got %v", samples)
	}

	searches := archive.Searches()
	if len(searches) != 1 {
		t.Fatalf("expected 1 search, got %d", len(searches))
	}
	q := searches[0]

	want := `study_accession="PRJEB12345" AND sample_alias="sample-01"`
	if got := q.Get("query"); got != want {
		t.Errorf("query = %q, want %q", got, want)
	}
	if q.Get("result") != "sample" {
		t.Errorf("result = %q, want sample", q.Get("result"))
	}
	if q.Get("format") != "json" {
		t.Errorf("format = %q, want json", q.Get("format"))
	}
	if q.Get("limit") != "0" {
		t.Errorf("limit = %q, want 0", q.Get("limit"))
	}
}

func TestPortalFindSampleDecodesMatches(t *testing.T) {
	archive := testutil.NewFakeArchive(t)
	archive.SetPortalBody(`[
		{
			"sample_accession": "SAMEA7744196",
			"sample_description": "surveillance sample",
			"sample_alias": "sample-01",
			"secondary_sample_accession": "ERS5554041"
		}
	]`)
	portal := NewPortalClient(archive.Config())

	samples, err := portal.FindSample(context.Background(), "PRJEB12345", "sample-01")
	if err != nil {
		t.Fatalf("FindSample failed: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(samples))
	}
	got := samples[0]
	if got.SampleAccession != "SAMEA7744196" {
		t.Errorf("SampleAccession = %q", got.SampleAccession)
	}
	if got.SecondarySampleAccession != "ERS5554041" {
		t.Errorf("SecondarySampleAccession = %q", got.SecondarySampleAccession)
	}
	if got.SampleAlias != "sample-01" {
		t.Errorf("SampleAlias = %q", got.SampleAlias)
	}
}

func TestPortalFindSampleBadJSON(t *testing.T) {
	archive := testutil.NewFakeArchive(t)
	archive.SetPortalBody(`{"not": "an array"}`)
	portal := NewPortalClient(archive.Config())

	if _, err := portal.FindSample(context.Background(), "PRJEB12345", "s"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestPortalFindSampleServerDown(t *testing.T) {
	archive := testutil.NewFakeArchive(t)
	cfg := archive.Config()
	archive.Server.Close()
	portal := NewPortalClient(cfg)

	if _, err := portal.FindSample(context.Background(), "PRJEB12345", "s"); err == nil {
		t.Fatal("expected transport error")
	}
}
