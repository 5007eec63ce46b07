// Package memory is an in-process search backend. It evaluates streaming
// expressions against collections held in memory, following the operator
// semantics of the remote backend. It serves local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/kailas-cloud/scxa/internal/db"
	"github.com/kailas-cloud/scxa/internal/solr/schema"
	"github.com/kailas-cloud/scxa/internal/solr/stream"
)

// Compile-time check: Store implements db.SearchStore.
var _ db.SearchStore = (*Store)(nil)

type collection struct {
	info   schema.CollectionInfo
	fields map[string]schema.FieldInfo
	docs   []stream.Tuple
}

// Store holds collections and evaluates expressions over them.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
	requests    atomic.Int64
	logger      *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Nil keeps the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCollections replaces the default schema.Catalog collections.
func WithCollections(infos ...schema.CollectionInfo) Option {
	return func(s *Store) {
		s.collections = make(map[string]*collection, len(infos))
		for _, info := range infos {
			s.define(info)
		}
	}
}

// New creates an empty store with every schema.Catalog collection defined.
func New(opts ...Option) *Store {
	s := &Store{logger: zap.NewNop()}
	WithCollections(schema.Catalog()...)(s)
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) define(info schema.CollectionInfo) {
	c := &collection{info: info, fields: make(map[string]schema.FieldInfo, len(info.Fields))}
	for _, f := range info.Fields {
		c.fields[f.Name] = f
	}
	s.collections[info.Name] = c
}

// Add appends documents to a defined collection.
func (s *Store) Add(name string, docs ...stream.Tuple) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("collection %q is not defined", name)
	}
	for _, d := range docs {
		c.docs = append(c.docs, d.Clone())
	}
	return nil
}

// Len returns the number of documents in a collection.
func (s *Store) Len(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.collections[name]; ok {
		return len(c.docs)
	}
	return 0
}

// Requests returns the number of expressions submitted so far.
func (s *Store) Requests() int64 { return s.requests.Load() }

// Open implements db.Streamer. The whole result is computed up front.
func (s *Store) Open(ctx context.Context, expr stream.Expression) (db.TupleStream, error) {
	s.requests.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, &db.Error{Op: db.OpStream, Err: err}
	}

	compiled := stream.Compile(expr)
	s.logger.Debug("evaluating streaming expression", zap.String("expr", compiled))

	s.mu.RLock()
	defer s.mu.RUnlock()

	ev := evaluator{store: s, expression: compiled, root: expr}
	tuples, err := ev.eval(expr)
	if err != nil {
		return nil, err
	}
	return &sliceStream{tuples: tuples}, nil
}

// Ping implements db.Pinger.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op kept for symmetry with remote stores.
func (s *Store) Close() {}

type sliceStream struct {
	tuples []stream.Tuple
	pos    int
	cur    stream.Tuple
	closed bool
}

func (s *sliceStream) Next() bool {
	if s.closed || s.pos >= len(s.tuples) {
		return false
	}
	s.cur = s.tuples[s.pos]
	s.pos++
	return true
}

func (s *sliceStream) Tuple() stream.Tuple { return s.cur }

func (s *sliceStream) Err() error { return nil }

func (s *sliceStream) Close() error {
	s.closed = true
	s.tuples = nil
	return nil
}
