package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Output.Encoding != "tabular" {
		t.Errorf("default encoding = %q, want tabular", cfg.Output.Encoding)
	}
	if cfg.Output.Detail != "standard" {
		t.Errorf("default detail = %q, want standard", cfg.Output.Detail)
	}
	if cfg.Preflight.SampleSize != 25 {
		t.Errorf("default sample size = %d, want 25", cfg.Preflight.SampleSize)
	}

	opts := cfg.SanitizeOptions()
	if !opts.MaskPII {
		t.Error("PII masking should default on")
	}
	if opts.ScrubNames || opts.FuzzLocations {
		t.Error("lossier scrubbing should default off")
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
sanitize:
  custom_terms:
    - Acme Corp
  scrub_names: true
  mask_pii: false
categories:
  - pattern: my coffee
    category: Office Coffee
    confidence: 0.95
output:
  encoding: markdown
  detail: debug
  max_rows: 50
preflight:
  sample_size: 10
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	opts := cfg.SanitizeOptions()
	if len(opts.CustomTerms) != 1 || opts.CustomTerms[0] != "Acme Corp" {
		t.Errorf("custom terms = %v", opts.CustomTerms)
	}
	if !opts.ScrubNames {
		t.Error("scrub_names should be enabled")
	}
	if opts.MaskPII {
		t.Error("mask_pii false should override the default")
	}
	if cfg.Output.Encoding != "markdown" || cfg.Output.Detail != "debug" || cfg.Output.MaxRows != 50 {
		t.Errorf("output section = %+v", cfg.Output)
	}
	if cfg.Preflight.SampleSize != 10 {
		t.Errorf("sample size = %d, want 10", cfg.Preflight.SampleSize)
	}
	if len(cfg.Categories) != 1 || cfg.Categories[0].Category != "Office Coffee" {
		t.Errorf("categories = %+v", cfg.Categories)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "sanitize:\n  custom_terms: [Globex]\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Output.Encoding != "tabular" {
		t.Errorf("encoding should default, got %q", cfg.Output.Encoding)
	}
	if !cfg.SanitizeOptions().MaskPII {
		t.Error("unset mask_pii should keep the default")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad encoding", "output:\n  encoding: yaml\n"},
		{"bad detail", "output:\n  detail: everything\n"},
		{"rule missing category", "categories:\n  - pattern: foo\n"},
		{"rule confidence out of range", "categories:\n  - pattern: foo\n    category: Bar\n    confidence: 1.5\n"},
		{"not yaml", "{{{\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
