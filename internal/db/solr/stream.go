package solr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/scxa/internal/db"
	"github.com/kailas-cloud/scxa/internal/metrics"
	"github.com/kailas-cloud/scxa/internal/solr/stream"
)

func (s *Store) openStream(ctx context.Context, expr stream.Expression) (db.TupleStream, error) {
	compiled := stream.Compile(expr)
	s.logger.Debug("submitting streaming expression",
		zap.String("collection", expr.Collection()),
		zap.String("expr", compiled),
	)

	form := url.Values{"expr": {compiled}}
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, s.collectionURL(expr.Collection(), "stream"), strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpStream, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	metrics.StreamRequestDuration.WithLabelValues(kindStream).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.StreamRequestsTotal.WithLabelValues(kindStream, "error").Inc()
		return nil, &db.Error{Op: db.OpStream, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		metrics.StreamRequestsTotal.WithLabelValues(kindStream, "fault").Inc()
		return nil, db.NewBackendError(compiled, readFault(resp.Body, resp.StatusCode))
	}

	dec := json.NewDecoder(resp.Body)
	if err := seekDocs(dec); err != nil {
		_ = resp.Body.Close()
		metrics.StreamRequestsTotal.WithLabelValues(kindStream, "error").Inc()
		return nil, &db.Error{Op: db.OpStream, Err: fmt.Errorf("decode response: %w", err)}
	}

	metrics.StreamRequestsTotal.WithLabelValues(kindStream, "ok").Inc()
	return &tupleStream{body: resp.Body, dec: dec, expression: compiled}, nil
}

// tupleStream reads tuples lazily from a /stream response body.
type tupleStream struct {
	body       io.ReadCloser
	dec        *json.Decoder
	expression string

	cur    stream.Tuple
	err    error
	done   bool
	closed bool
}

func (t *tupleStream) Next() bool {
	if t.done || t.closed || t.err != nil {
		return false
	}
	if !t.dec.More() {
		// The stream always ends with an EOF tuple. Running out of docs
		// without one means the body was cut short.
		t.err = &db.Error{Op: db.OpStream, Err: io.ErrUnexpectedEOF}
		return false
	}

	tup, err := readTuple(t.dec)
	if err != nil {
		t.err = &db.Error{Op: db.OpStream, Err: fmt.Errorf("decode tuple: %w", err)}
		return false
	}
	if v, ok := tup.Get(fieldException); ok {
		t.err = db.NewBackendError(t.expression, v.First())
		return false
	}
	if tup.Has(fieldEOF) {
		if err := expectDelim(t.dec, ']'); err != nil {
			t.err = &db.Error{Op: db.OpStream, Err: fmt.Errorf("after EOF tuple: %w", err)}
			return false
		}
		t.done = true
		return false
	}

	metrics.StreamTuplesTotal.WithLabelValues(kindStream).Inc()
	t.cur = tup
	return true
}

func (t *tupleStream) Tuple() stream.Tuple { return t.cur }

func (t *tupleStream) Err() error { return t.err }

// Close releases the connection. Unread tuples are discarded with it.
func (t *tupleStream) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	if err := t.body.Close(); err != nil {
		return &db.Error{Op: db.OpStream, Err: err}
	}
	return nil
}
