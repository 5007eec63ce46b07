package scxa

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "solr" or "memory"
	solrURL  string
	timeout  time.Duration
	pageSize int
	fixture  []byte

	cacheAddrs    []string
	cachePassword string
	cacheTTL      time.Duration

	fieldsOfInterest map[string][]string
	concurrency      int

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithSolr configures the client to run lookups on a SolrCloud node.
func WithSolr(baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverSolr
		c.solrURL = baseURL
	})
}

// WithTimeout bounds one backend request. Default: 60s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithPageSize sets the rows per cursor page for all-docs searches.
// Default: 1000.
func WithPageSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.pageSize = n
	})
}

// WithDataset runs lookups in process against a YAML dataset instead of
// Solr. Useful for tests and local development.
func WithDataset(yamlData []byte) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverMemory
		c.fixture = yamlData
	})
}

// WithRedisCache caches results in Redis or Valkey for ttl.
func WithRedisCache(addr, password string, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
		c.cacheTTL = ttl
	})
}

// WithFieldsOfInterest sets the metadata fields reported per experiment
// accession. The "*" entry applies to experiments without their own list.
func WithFieldsOfInterest(fields map[string][]string) Option {
	return optionFunc(func(c *clientConfig) {
		c.fieldsOfInterest = fields
	})
}

// WithMetadataConcurrency bounds concurrent metadata lookups per cell.
// Default: 4.
func WithMetadataConcurrency(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.concurrency = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
