package memory

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/scxa/internal/db"
	"github.com/kailas-cloud/scxa/internal/solr/query"
	"github.com/kailas-cloud/scxa/internal/solr/stream"
)

// evaluator computes one expression tree. Faults carry the compiled root
// expression, like the remote backend's.
type evaluator struct {
	store      *Store
	expression string
	root       stream.Expression
}

func (e *evaluator) fault(format string, args ...any) error {
	return db.NewBackendError(e.expression, fmt.Sprintf(format, args...))
}

func (e *evaluator) eval(x stream.Expression) ([]stream.Tuple, error) {
	switch n := x.(type) {
	case *stream.SearchNode:
		return e.search(n)
	case *stream.UniqueNode:
		in, err := e.eval(n.Upstream())
		if err != nil {
			return nil, err
		}
		return unique(in, n.Over()), nil
	case *stream.SelectNode:
		in, err := e.eval(n.Upstream())
		if err != nil {
			return nil, err
		}
		return project(in, n.Mappings()), nil
	case *stream.SortNode:
		in, err := e.eval(n.Upstream())
		if err != nil {
			return nil, err
		}
		sortTuples(in, n.Keys())
		return in, nil
	case *stream.InnerJoinNode:
		left, err := e.eval(n.Left())
		if err != nil {
			return nil, err
		}
		right, err := e.eval(n.Right())
		if err != nil {
			return nil, err
		}
		return innerJoin(left, right, n.On()), nil
	case *stream.CartesianProductNode:
		in, err := e.eval(n.Upstream())
		if err != nil {
			return nil, err
		}
		return cartesianProduct(in, n.Fields()), nil
	default:
		return nil, e.fault("unknown stream function %T", x)
	}
}

func (e *evaluator) search(n *stream.SearchNode) ([]stream.Tuple, error) {
	c, ok := e.store.collections[n.Collection()]
	if !ok {
		return nil, e.fault("Collection not found: %s", n.Collection())
	}
	p := n.Params()

	for _, cl := range append(slices.Clone(p.Query), p.Filter...) {
		if _, ok := c.fields[cl.Field]; !ok {
			return nil, e.fault("undefined field %s", cl.Field)
		}
		if len(cl.Terms) == 0 {
			return nil, e.fault("org.apache.solr.search.SyntaxError: Cannot parse '%s:()'", cl.Field)
		}
	}
	for _, k := range p.Sort {
		if _, ok := c.fields[k.Field]; !ok {
			return nil, e.fault("sort param field can't be found: %s", k.Field)
		}
	}
	// A top-level all-docs search is paged by cursor mark and never hits the
	// export handler. Only nested ones are checked for doc values.
	if n.AllDocs() && e.root != stream.Expression(n) {
		if len(p.Fields) == 0 {
			return nil, e.fault("export field list (fl) must be specified")
		}
		for _, f := range p.Fields {
			if info, ok := c.fields[f]; ok && !info.DocValues {
				return nil, e.fault("field %s %s", f, db.ExportFaultMarker)
			}
		}
	}

	var out []stream.Tuple
	for _, d := range c.docs {
		if matchesAll(d, p.Query, p.Normalize) && matchesAll(d, p.Filter, p.Normalize) {
			out = append(out, d)
		}
	}
	sortTuples(out, p.Sort)
	if !n.AllDocs() && len(out) > p.Rows {
		out = out[:p.Rows]
	}

	for i, d := range out {
		out[i] = fieldList(d, p.Fields)
	}
	return out, nil
}

func matchesAll(d stream.Tuple, clauses []query.Clause, normalize bool) bool {
	for _, cl := range clauses {
		if !matches(d, cl, normalize) {
			return false
		}
	}
	return true
}

// matches reports whether any element of the clause's field matches any term.
func matches(d stream.Tuple, cl query.Clause, normalize bool) bool {
	v, ok := d.Get(cl.Field)
	if !ok {
		return false
	}
	for _, item := range v.Items() {
		for _, term := range cl.Terms {
			if termMatches(item, term, normalize) {
				return true
			}
		}
	}
	return false
}

// termMatches follows the compiled query: normalized multi-word terms are
// wildcard-wrapped and match as substrings, other normalized terms match the
// whole value ignoring case, literal terms match exactly.
func termMatches(value, term string, normalize bool) bool {
	if !normalize {
		return value == term
	}
	if strings.ContainsAny(term, " \t\n") {
		return strings.Contains(strings.ToLower(value), strings.ToLower(term))
	}
	return strings.EqualFold(value, term)
}

func fieldList(d stream.Tuple, fields []string) stream.Tuple {
	if len(fields) == 0 {
		return d.Clone()
	}
	var t stream.Tuple
	for _, f := range fields {
		if v, ok := d.Get(f); ok {
			t.Set(f, v)
		}
	}
	return t
}

func sortTuples(ts []stream.Tuple, keys []query.SortKey) {
	if len(keys) == 0 {
		return
	}
	slices.SortStableFunc(ts, func(a, b stream.Tuple) int {
		for _, k := range keys {
			c := cmp.Compare(a.First(k.Field), b.First(k.Field))
			if k.Direction == query.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}
