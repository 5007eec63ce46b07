package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the scxa API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Search   SearchConfig   `yaml:"search"`
	Cache    CacheConfig    `yaml:"cache"`
	Metadata MetadataConfig `yaml:"metadata"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	// AdminKeys guard the administrative routes. Empty disables them.
	AdminKeys []string `yaml:"admin_keys"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// Search backend drivers.
const (
	DriverSolr   = "solr"
	DriverMemory = "memory"
)

// SearchConfig holds search backend settings.
type SearchConfig struct {
	Driver           string `yaml:"driver"` // solr, memory (default: solr)
	URL              string `yaml:"url"`
	TimeoutSec       int    `yaml:"timeout_sec"`
	PageSize         int    `yaml:"page_size"` // cursor page size in all-docs mode
	Fixture          string `yaml:"fixture"`   // memory driver only
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Addrs    []string `yaml:"addrs"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	TTLSec   int      `yaml:"ttl_sec"`
}

// MetadataConfig holds cell metadata settings.
type MetadataConfig struct {
	// FieldsOfInterest lists extra metadata fields per experiment accession.
	// The "*" entry applies to experiments without their own entry.
	FieldsOfInterest map[string][]string `yaml:"fields_of_interest"`
	Concurrency      int                 `yaml:"concurrency"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Search.Driver == "" {
		c.Search.Driver = DriverSolr
	}
	if c.Search.TimeoutSec <= 0 {
		c.Search.TimeoutSec = 60
	}
	if c.Search.PageSize <= 0 {
		c.Search.PageSize = 1000
	}
	if c.Search.ReadinessTimeout <= 0 {
		c.Search.ReadinessTimeout = 10
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 3600
	}
	if c.Metadata.Concurrency <= 0 {
		c.Metadata.Concurrency = 4
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Search.Driver {
	case DriverSolr:
		if c.Search.URL == "" {
			return fmt.Errorf("search.url is required for the %s driver", DriverSolr)
		}
	case DriverMemory:
		if c.Search.Fixture == "" {
			return fmt.Errorf("search.fixture is required for the %s driver", DriverMemory)
		}
	default:
		return fmt.Errorf("search.driver must be %q or %q, got %q", DriverSolr, DriverMemory, c.Search.Driver)
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when the cache is enabled")
	}
	for acc, fields := range c.Metadata.FieldsOfInterest {
		for _, f := range fields {
			if strings.TrimSpace(f) == "" {
				return fmt.Errorf("metadata.fields_of_interest.%s contains a blank field", acc)
			}
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
