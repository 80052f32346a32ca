package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validYAML = `
environment: test
server:
  port: 8080
store:
  type: memory
ingest:
  sources:
    - name: semo_bm026
      kind: semo
      url: https://reports.sem-o.com/api/v1/dynamic
      report: BM-026
    - name: eirgrid_demand
      kind: eirgrid
      url: https://www.eirgrid.ie/api/graph-data
      area: demandactual
      region: ALL
forecast:
  model_name: test-model
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValid(t *testing.T) {
	c, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Environment != "test" {
		t.Fatalf("unexpected environment %q", c.Environment)
	}
	if len(c.Ingest.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(c.Ingest.Sources))
	}
	if c.Ingest.Sources[0].Report != "BM-026" {
		t.Fatalf("unexpected report %q", c.Ingest.Sources[0].Report)
	}
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Ingest.FetchTimeout != 10*time.Second {
		t.Fatalf("expected 10s fetch timeout default, got %v", c.Ingest.FetchTimeout)
	}
	if c.Forecast.HorizonHours != 24 {
		t.Fatalf("expected horizon default 24, got %d", c.Forecast.HorizonHours)
	}
	if c.Training.PollInterval != 30*time.Second {
		t.Fatalf("expected 30s poll interval default, got %v", c.Training.PollInterval)
	}
}

func TestLoadRejectsEmptySources(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: test
store:
  type: memory
`))
	if err == nil {
		t.Fatal("expected error for empty sources")
	}
}

func TestLoadRejectsBadStoreType(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: test
store:
  type: postgres
ingest:
  sources:
    - name: x
      kind: semo
      url: http://localhost
`))
	if err == nil {
		t.Fatal("expected error for unknown store type")
	}
}

func TestLoadRejectsDuplicateSource(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: test
store:
  type: memory
ingest:
  sources:
    - name: dup
      kind: semo
      url: http://localhost
    - name: dup
      kind: semo
      url: http://localhost
`))
	if err == nil {
		t.Fatal("expected error for duplicate source name")
	}
}

func TestLoadWithEnvOverride(t *testing.T) {
	t.Setenv("CLICKHOUSE_HOST", "ch.override")
	t.Setenv("MODEL_URL", "http://model.override")

	c, err := LoadWithEnv(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.ClickHouse.Host != "ch.override" {
		t.Fatalf("env override not applied, got %q", c.ClickHouse.Host)
	}
	if c.Forecast.ModelURL != "http://model.override" {
		t.Fatalf("env override not applied, got %q", c.Forecast.ModelURL)
	}
}
