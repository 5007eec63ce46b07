package solr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/scxa/internal/db"
	"github.com/kailas-cloud/scxa/internal/metrics"
	"github.com/kailas-cloud/scxa/internal/solr/stream"
)

// initialCursorMark starts a cursor-mark traversal.
const initialCursorMark = "*"

type cursorState int

const (
	// cursorHasMore: the next page starts at mark.
	cursorHasMore cursorState = iota
	// cursorFetching: a page request is in flight.
	cursorFetching
	// cursorDone: the backend returned the mark it was given; no pages remain.
	cursorDone
)

// cursorStream pages through an all-docs search with cursor marks. A page is
// requested only when the previous one is consumed, so a caller that stops
// iterating never triggers another request.
type cursorStream struct {
	store      *Store
	ctx        context.Context
	search     *stream.SearchNode
	expression string

	state cursorState
	mark  string
	page  []stream.Tuple
	pos   int

	cur    stream.Tuple
	err    error
	closed bool
}

func (s *Store) openCursor(ctx context.Context, search *stream.SearchNode) *cursorStream {
	return &cursorStream{
		store:      s,
		ctx:        ctx,
		search:     search,
		expression: stream.Compile(search),
		state:      cursorHasMore,
		mark:       initialCursorMark,
	}
}

func (c *cursorStream) Next() bool {
	for {
		if c.closed || c.err != nil {
			return false
		}
		if c.pos < len(c.page) {
			c.cur = c.page[c.pos]
			c.pos++
			return true
		}
		if c.state == cursorDone {
			return false
		}
		c.fetch()
	}
}

func (c *cursorStream) fetch() {
	c.state = cursorFetching
	docs, next, err := c.store.selectPage(c.ctx, c.search, c.expression, c.mark)
	if err != nil {
		c.err = err
		c.state = cursorDone
		return
	}
	metrics.CursorPagesTotal.Inc()

	c.page, c.pos = docs, 0
	if next == "" || next == c.mark {
		c.state = cursorDone
		return
	}
	c.mark = next
	c.state = cursorHasMore
}

func (c *cursorStream) Tuple() stream.Tuple { return c.cur }

func (c *cursorStream) Err() error { return c.err }

func (c *cursorStream) Close() error {
	c.closed = true
	c.page = nil
	return nil
}

type selectResponse struct {
	Response struct {
		NumFound int               `json:"numFound"`
		Docs     []json.RawMessage `json:"docs"`
	} `json:"response"`
	NextCursorMark string `json:"nextCursorMark"`
}

// selectPage fetches one page of search starting at mark.
func (s *Store) selectPage(
	ctx context.Context, search *stream.SearchNode, expression, mark string,
) ([]stream.Tuple, string, error) {
	p := search.Params()
	q := url.Values{}
	q.Set("q", stream.QueryString(p.Query, p.Normalize))
	if len(p.Filter) > 0 {
		q.Set("fq", stream.QueryString(p.Filter, p.Normalize))
	}
	if len(p.Fields) > 0 {
		q.Set("fl", strings.Join(p.Fields, ","))
	}
	q.Set("sort", stream.SortString(p.Sort))
	q.Set("rows", strconv.Itoa(s.pageSize))
	q.Set("cursorMark", mark)
	q.Set("wt", "json")

	s.logger.Debug("fetching cursor page",
		zap.String("collection", search.Collection()),
		zap.String("cursor_mark", mark),
	)

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, s.collectionURL(search.Collection(), "select"), strings.NewReader(q.Encode()),
	)
	if err != nil {
		return nil, "", &db.Error{Op: db.OpSelect, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := s.client.Do(req)
	metrics.StreamRequestDuration.WithLabelValues(kindSelect).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.StreamRequestsTotal.WithLabelValues(kindSelect, "error").Inc()
		return nil, "", &db.Error{Op: db.OpSelect, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.StreamRequestsTotal.WithLabelValues(kindSelect, "fault").Inc()
		return nil, "", db.NewBackendError(expression, readFault(resp.Body, resp.StatusCode))
	}

	var sr selectResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		metrics.StreamRequestsTotal.WithLabelValues(kindSelect, "error").Inc()
		return nil, "", &db.Error{Op: db.OpSelect, Err: fmt.Errorf("decode response: %w", err)}
	}
	metrics.StreamRequestsTotal.WithLabelValues(kindSelect, "ok").Inc()

	docs := make([]stream.Tuple, 0, len(sr.Response.Docs))
	for _, raw := range sr.Response.Docs {
		t, err := decodeTuple(raw)
		if err != nil {
			return nil, "", &db.Error{Op: db.OpSelect, Err: fmt.Errorf("decode doc: %w", err)}
		}
		docs = append(docs, t)
	}
	metrics.StreamTuplesTotal.WithLabelValues(kindSelect).Add(float64(len(docs)))

	return docs, sr.NextCursorMark, nil
}
