package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:   HTTPConfig{Port: 8080},
		Search: SearchConfig{Driver: DriverSolr, URL: "http://localhost:8983"},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Search.Driver = "elastic"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
	expected := `search.driver must be "solr" or "memory", got "elastic"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_DriverRequirements(t *testing.T) {
	tests := []struct {
		name   string
		search SearchConfig
		ok     bool
	}{
		{"solr without url", SearchConfig{Driver: DriverSolr}, false},
		{"solr with url", SearchConfig{Driver: DriverSolr, URL: "http://solr:8983"}, true},
		{"memory without fixture", SearchConfig{Driver: DriverMemory}, false},
		{"memory with fixture", SearchConfig{Driver: DriverMemory, Fixture: "fixture.yaml"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Search = tc.search
			err := cfg.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestValidate_CacheWithoutAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Enabled = true

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for enabled cache without addrs")
	}

	cfg.Cache.Enabled = false
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled cache needs no addrs: %v", err)
	}
}

func TestValidate_BlankFieldOfInterest(t *testing.T) {
	cfg := validConfig()
	cfg.Metadata.FieldsOfInterest = map[string][]string{"*": {"sex", " "}}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for blank field")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec 10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec 60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Search.Driver != DriverSolr {
		t.Errorf("expected driver %q, got %q", DriverSolr, cfg.Search.Driver)
	}
	if cfg.Search.PageSize != 1000 {
		t.Errorf("expected PageSize 1000, got %d", cfg.Search.PageSize)
	}
	if cfg.Search.TimeoutSec != 60 {
		t.Errorf("expected TimeoutSec 60, got %d", cfg.Search.TimeoutSec)
	}
	if cfg.Cache.TTLSec != 3600 {
		t.Errorf("expected TTLSec 3600, got %d", cfg.Cache.TTLSec)
	}
	if cfg.Metadata.Concurrency != 4 {
		t.Errorf("expected Concurrency 4, got %d", cfg.Metadata.Concurrency)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		Search: SearchConfig{Driver: DriverMemory, PageSize: 50},
		Cache:  CacheConfig{TTLSec: 5},
	}
	cfg.ApplyDefaults()

	if cfg.Search.Driver != DriverMemory {
		t.Errorf("expected driver preserved, got %q", cfg.Search.Driver)
	}
	if cfg.Search.PageSize != 50 {
		t.Errorf("expected PageSize preserved, got %d", cfg.Search.PageSize)
	}
	if cfg.Cache.TTLSec != 5 {
		t.Errorf("expected TTLSec preserved, got %d", cfg.Cache.TTLSec)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SCXA_TEST_SOLR", "http://solr:8983")

	got := string(expandEnvVars([]byte("url: ${SCXA_TEST_SOLR}\ndriver: ${SCXA_TEST_UNSET:-memory}\n")))
	want := "url: http://solr:8983\ndriver: memory\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := `http:
  port: 9090
search:
  driver: memory
  fixture: fixture.yaml
metadata:
  fields_of_interest:
    "*": [organism_part, sex]
`
	if err := os.WriteFile(filepath.Join(dir, "config", "test.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if got := cfg.Metadata.FieldsOfInterest["*"]; len(got) != 2 || got[1] != "sex" {
		t.Errorf("unexpected fields of interest %v", got)
	}
	if cfg.Search.PageSize != 1000 {
		t.Errorf("expected defaults applied, got page size %d", cfg.Search.PageSize)
	}
}
