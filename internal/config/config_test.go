package config

import (
	"os"
	"path/filepath"
	"testing"
)

func setCreds(t *testing.T) {
	t.Helper()
	t.Setenv(EnvUser, "Webin-12345")
	t.Setenv(EnvPass, "hunter2")
}

func TestLoadDefaults(t *testing.T) {
	setCreds(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Submission.ProductionURL != "https://www.ebi.ac.uk/ena/submit/drop-box/submit/" {
		t.Errorf("unexpected production URL: %s", cfg.Submission.ProductionURL)
	}
	if cfg.Submission.SandboxURL != "https://wwwdev.ebi.ac.uk/ena/submit/drop-box/submit/" {
		t.Errorf("unexpected sandbox URL: %s", cfg.Submission.SandboxURL)
	}
	if cfg.Transfer.Host != "webin.ebi.ac.uk:21" {
		t.Errorf("unexpected transfer host: %s", cfg.Transfer.Host)
	}
	if cfg.Transfer.TimeoutSeconds != 30 {
		t.Errorf("transfer timeout = %d, want 30", cfg.Transfer.TimeoutSeconds)
	}
	if cfg.Credentials.Username != "Webin-12345" || cfg.Credentials.Password != "hunter2" {
		t.Errorf("credentials not read from environment: %+v", cfg.Credentials)
	}
}

func TestLoadMissingCredentials(t *testing.T) {
	t.Setenv(EnvUser, "")
	t.Setenv(EnvPass, "")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error when credentials are unset")
	}
}

func TestLoadOverlay(t *testing.T) {
	setCreds(t)

	path := filepath.Join(t.TempDir(), "pyena.yaml")
	content := []byte(`submission:
  production_url: http://localhost:8080/submit/
  sandbox_url: http://localhost:8081/submit/
  timeout_seconds: 5
transfer:
  host: localhost:2121
  timeout_seconds: 2
`)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Submission.ProductionURL != "http://localhost:8080/submit/" {
		t.Errorf("overlay did not apply: %s", cfg.Submission.ProductionURL)
	}
	if cfg.Transfer.Host != "localhost:2121" {
		t.Errorf("overlay did not apply to transfer host: %s", cfg.Transfer.Host)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Portal.SearchURL != "https://www.ebi.ac.uk/ena/portal/api/search" {
		t.Errorf("portal default lost: %s", cfg.Portal.SearchURL)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	setCreds(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Portal.SearchURL == "" {
		t.Error("expected defaults when file is missing")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	setCreds(t)

	cfg := Default()
	cfg.Transfer.Host = "example.org:21"

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Transfer.Host != "example.org:21" {
		t.Errorf("round trip lost transfer host: %s", loaded.Transfer.Host)
	}
}
