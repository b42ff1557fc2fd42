package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/devicelab-dev/katalon-recorder/pkg/core"
)

func TestLoad_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "katalon-recorder.yaml")

	content := `
recordings:
  - recordings/
  - "extra/*.json"
output: scripts
selectorAttribute: data-testid
parallel: 4
dry: true
objectStore:
  endpoint: localhost:9000
  bucket: katalon
  prefix: nightly
  region: us-east-1
  useSSL: true
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Recordings) != 2 || cfg.Recordings[0] != "recordings/" {
		t.Errorf("expected 2 recordings entries, got %v", cfg.Recordings)
	}
	if cfg.Output != "scripts" {
		t.Errorf("expected output scripts, got %s", cfg.Output)
	}
	if cfg.SelectorAttribute != "data-testid" {
		t.Errorf("expected selectorAttribute data-testid, got %s", cfg.SelectorAttribute)
	}
	if cfg.Parallel != 4 || !cfg.Dry {
		t.Errorf("expected parallel 4 and dry, got %d %v", cfg.Parallel, cfg.Dry)
	}
	store := cfg.ObjectStore
	if store.Endpoint != "localhost:9000" || store.Bucket != "katalon" || store.Prefix != "nightly" || store.Region != "us-east-1" || !store.UseSSL {
		t.Errorf("unexpected objectStore %+v", store)
	}
	if !store.Enabled() {
		t.Error("objectStore should be enabled")
	}
	if cfg.Path != configPath {
		t.Errorf("Path = %s, want %s", cfg.Path, configPath)
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/katalon-recorder.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "katalon-recorder.yaml")
	if err := os.WriteFile(configPath, []byte("parallel: [not a number"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(configPath)
	if !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative parallel", "parallel: -1"},
		{"endpoint with scheme", "objectStore:\n  endpoint: http://localhost:9000\n  bucket: b"},
		{"endpoint without bucket", "objectStore:\n  endpoint: localhost:9000"},
		{"bucket without endpoint", "objectStore:\n  bucket: scripts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "katalon-recorder.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(configPath)
			if !errors.Is(err, core.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadFromDir_YAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "katalon-recorder.yaml"), []byte("output: a"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "katalon-recorder.yml"), []byte("output: b"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Output != "a" {
		t.Errorf("expected .yaml to take precedence, got output %s", cfg.Output)
	}
}

func TestLoadFromDir_YML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "katalon-recorder.yml"), []byte("output: b"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Output != "b" {
		t.Errorf("expected output b, got %s", cfg.Output)
	}
}

func TestLoadFromDir_NoConfig(t *testing.T) {
	cfg, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected empty config, got nil")
	}
	if cfg.Path != "" || len(cfg.Recordings) != 0 || cfg.ObjectStore.Enabled() {
		t.Errorf("expected empty config, got %+v", cfg)
	}
}

func TestResolveRecordings(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.json", "b.json", "c.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := &Config{Recordings: []string{"*.json", "missing.json"}}
	paths, err := cfg.ResolveRecordings(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "b.json"),
		filepath.Join(dir, "missing.json"),
	}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %s, want %s", i, paths[i], want[i])
		}
	}
}
