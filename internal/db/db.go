package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/scxa/internal/solr/stream"
)

// Streamer executes streaming expressions against the search backend.
type Streamer interface {
	// Open submits expr and returns a cursor over its tuples. The caller must
	// Close the returned stream on every path.
	Open(ctx context.Context, expr stream.Expression) (TupleStream, error)
}

// TupleStream is a forward-only, finite cursor over result tuples. It owns
// backend resources until Close.
//
//	ts, err := s.Open(ctx, expr)
//	if err != nil { ... }
//	defer ts.Close()
//	for ts.Next() { use(ts.Tuple()) }
//	if err := ts.Err(); err != nil { ... }
type TupleStream interface {
	Next() bool
	Tuple() stream.Tuple
	Err() error
	Close() error
}

// Pinger checks backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SearchStore is a search backend the service runs against.
type SearchStore interface {
	Streamer
	Pinger
	Close()
}

// KVStore is the key-value contract of the result cache.
type KVStore interface {
	Pinger
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DelMatch deletes every key matching a glob pattern.
	DelMatch(ctx context.Context, pattern string) (int, error)
	Close()
}

// ErrStop can be returned by an Each callback to stop iterating without error.
var ErrStop = errors.New("stop iteration")

// Each opens expr, calls fn for every tuple and always closes the stream.
// Returning ErrStop from fn ends the iteration early; no further tuples are
// requested from the backend.
func Each(ctx context.Context, s Streamer, expr stream.Expression, fn func(stream.Tuple) error) (err error) {
	ts, err := s.Open(ctx, expr)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := ts.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close tuple stream: %w", cerr)
		}
	}()

	for ts.Next() {
		if err := fn(ts.Tuple()); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
	return ts.Err()
}

// Collect returns every tuple of expr.
func Collect(ctx context.Context, s Streamer, expr stream.Expression) ([]stream.Tuple, error) {
	var out []stream.Tuple
	err := Each(ctx, s, expr, func(t stream.Tuple) error {
		out = append(out, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Values returns the first element of field from every tuple of expr, in
// stream order. Tuples without a non-blank value are skipped.
func Values(ctx context.Context, s Streamer, expr stream.Expression, field string) ([]string, error) {
	out := []string{}
	err := Each(ctx, s, expr, func(t stream.Tuple) error {
		if v := t.First(field); v != "" {
			out = append(out, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
