// Package resultcache caches search results by business key in a key-value
// store. Cache failures never fail a lookup: they are logged and the result
// is loaded from the backend.
package resultcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/scxa/internal/db"
)

const keyPrefix = "scxa:result:"

// anyExperiment stands in for the experiment segment of keys not scoped to one.
const anyExperiment = "_"

// store is the consumer interface for the result cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DelMatch(ctx context.Context, pattern string) (int, error)
}

// Key identifies a cached result.
type Key struct {
	// Kind names the lookup, e.g. "species".
	Kind string
	// Experiment scopes the result for invalidation. Empty for global lookups.
	Experiment string
	// Args are the ordered lookup arguments.
	Args []string
	// Set holds set-valued arguments; their order does not matter.
	Set []string
}

// String renders the store key: scxa:result:<kind>:<experiment>:<digest>.
func (k Key) String() string {
	h := sha256.New()
	for _, a := range k.Args {
		h.Write([]byte(a))
		h.Write([]byte{0})
	}
	h.Write([]byte{1})
	set := slices.Clone(k.Set)
	slices.Sort(set)
	for _, s := range slices.Compact(set) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}

	exp := k.Experiment
	if exp == "" {
		exp = anyExperiment
	}
	return keyPrefix + k.Kind + ":" + exp + ":" + hex.EncodeToString(h.Sum(nil)[:16])
}

// Cache stores JSON-encoded results with a TTL. A nil *Cache loads every
// result directly.
type Cache struct {
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a result cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"/"error"), passed explicitly.
func New(s store, ttl time.Duration, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{store: s, ttl: ttl, cacheTotal: cacheTotal, logger: logger}
}

// Strings returns the cached result for key or calls load and caches it.
func (c *Cache) Strings(
	ctx context.Context, key Key, load func(context.Context) ([]string, error),
) ([]string, error) {
	return remember(ctx, c, key, load)
}

// StringMap returns the cached result for key or calls load and caches it.
func (c *Cache) StringMap(
	ctx context.Context, key Key, load func(context.Context) (map[string]string, error),
) (map[string]string, error) {
	return remember(ctx, c, key, load)
}

// InvalidateExperiment drops every cached result scoped to accession together
// with all unscoped results, since gene-keyed lookups may include the
// experiment's data.
func (c *Cache) InvalidateExperiment(ctx context.Context, accession string) (int, error) {
	if c == nil {
		return 0, nil
	}
	if accession == "" || strings.ContainsAny(accession, "*?[]\\:") {
		return 0, fmt.Errorf("invalid accession %q", accession)
	}
	n := 0
	for _, scope := range []string{accession, anyExperiment} {
		removed, err := c.store.DelMatch(ctx, keyPrefix+"*:"+scope+":*")
		n += removed
		if err != nil {
			return n, fmt.Errorf("invalidate %s: %w", accession, err)
		}
	}
	c.logger.Info("Invalidated cached results", zap.String("experiment", accession), zap.Int("keys", n))
	return n, nil
}

func remember[T any](ctx context.Context, c *Cache, key Key, load func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}

	k := key.String()
	if v, ok := get[T](ctx, c, k); ok {
		c.inc("hit")
		return v, nil
	}
	c.inc("miss")

	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	c.put(ctx, k, v)
	return v, nil
}

func get[T any](ctx context.Context, c *Cache, key string) (T, bool) {
	var v T
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.inc("error")
			c.logger.Warn("Failed to get cached result", zap.String("key", key), zap.Error(err))
		}
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		c.inc("error")
		c.logger.Warn("Failed to parse cached result", zap.String("key", key), zap.Error(err))
		return v, false
	}
	return v, true
}

func (c *Cache) put(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("Failed to encode result", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.inc("error")
		c.logger.Warn("Failed to cache result", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
