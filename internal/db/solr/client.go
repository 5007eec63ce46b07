// Package solr executes streaming expressions against a SolrCloud cluster
// over HTTP.
package solr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/scxa/internal/db"
	"github.com/kailas-cloud/scxa/internal/solr/stream"
)

// Compile-time check: Store implements db.SearchStore.
var _ db.SearchStore = (*Store)(nil)

const (
	defaultTimeout  = 60 * time.Second
	defaultPageSize = 1000

	kindStream = "stream"
	kindSelect = "select"
)

// Config holds connection parameters for a Solr store.
type Config struct {
	// BaseURL is the node address, e.g. http://localhost:8983.
	BaseURL string
	// Timeout bounds one request including reading its body.
	Timeout time.Duration
	// PageSize is the number of rows per cursor page in all-docs mode.
	PageSize int
	// HTTPClient overrides the default client (Timeout is then ignored).
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Store implements db.Streamer over the Solr /stream and /select handlers.
type Store struct {
	baseURL  string
	client   *http.Client
	pageSize int
	logger   *zap.Logger
}

// NewStore creates a Solr store.
func NewStore(cfg Config) (*Store, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Store{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		client:   client,
		pageSize: pageSize,
		logger:   logger,
	}, nil
}

// Open implements db.Streamer. A top-level all-docs search is paged with
// cursor marks; everything else is submitted to the /stream handler.
func (s *Store) Open(ctx context.Context, expr stream.Expression) (db.TupleStream, error) {
	if n, ok := expr.(*stream.SearchNode); ok && n.AllDocs() {
		return s.openCursor(ctx, n), nil
	}
	return s.openStream(ctx, expr)
}

// Ping checks connectivity via the system info handler.
func (s *Store) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/solr/admin/info/system?wt=json", http.NoBody)
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return &db.Error{Op: db.OpPing, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	return nil
}

// WaitForReady polls Ping until the backend responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for search backend: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Close releases idle connections.
func (s *Store) Close() {
	s.client.CloseIdleConnections()
}

func (s *Store) collectionURL(collection, handler string) string {
	return s.baseURL + "/solr/" + url.PathEscape(collection) + "/" + handler
}
