package upload

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMD5Sum(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"empty", "", "d41d8cd98f00b204e9800998ecf8427e"},
		{"known content", "hello world\n", "6f5902ac237024bdd0c176cb93063dc4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "reads.bam")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			got, err := MD5Sum(path)
			if err != nil {
				t.Fatalf("MD5Sum failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("MD5Sum = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMD5SumMissingFile(t *testing.T) {
	if _, err := MD5Sum(filepath.Join(t.TempDir(), "nope.bam")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
