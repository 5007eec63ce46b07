// Package stream composes streaming expressions: relational operators
// (search, unique, select, sort, inner join, cartesian product) evaluated by
// the search backend and rendered to its text form by Compile.
//
// Expressions are immutable once built and may be shared between goroutines.
//
// Unique and InnerJoin only see adjacent tuples, so they are only correct over
// inputs sorted ascending on their key. That requirement is carried by the
// Sorted type: only SortedSearch, SortBy, Unique, SelectSorted and InnerJoin
// produce one, and the key it is sorted on travels with it.
package stream

import (
	"fmt"
	"slices"

	"github.com/kailas-cloud/scxa/internal/solr/query"
	"github.com/kailas-cloud/scxa/internal/solr/schema"
)

// Expression is a node of a streaming expression tree.
type Expression interface {
	// Collection is the collection the expression is submitted to.
	Collection() string
	node()
}

// SearchNode is a leaf that runs a query against one collection.
type SearchNode struct {
	collection string
	uniqueKey  string
	params     query.Params
	allDocs    bool
}

// Search returns a leaf for spec.
func Search[C schema.Collection](spec query.Spec[C]) *SearchNode {
	return &SearchNode{
		collection: spec.Collection(),
		uniqueKey:  spec.UniqueKey(),
		params:     spec.Params(),
	}
}

// ReturnAllDocs returns a copy of s that ignores the row cap and retrieves
// every matching document. Paging through the full result set needs a total
// order, so the collection's unique key is appended to the sort if missing.
func (s *SearchNode) ReturnAllDocs() *SearchNode {
	c := &SearchNode{
		collection: s.collection,
		uniqueKey:  s.uniqueKey,
		params:     s.params.Clone(),
		allDocs:    true,
	}
	if !c.params.HasSortKey(c.uniqueKey) {
		c.params.Sort = append(c.params.Sort, query.SortKey{Field: c.uniqueKey, Direction: query.Asc})
	}
	return c
}

// Collection implements Expression.
func (s *SearchNode) Collection() string { return s.collection }

// UniqueKey returns the collection's unique key field.
func (s *SearchNode) UniqueKey() string { return s.uniqueKey }

// Params returns a copy of the query parameters.
func (s *SearchNode) Params() query.Params { return s.params.Clone() }

// AllDocs reports whether the row cap is ignored.
func (s *SearchNode) AllDocs() bool { return s.allDocs }

func (*SearchNode) node() {}

// UniqueNode drops tuples whose key equals the previous tuple's key.
type UniqueNode struct {
	upstream Expression
	over     string
}

// Collection implements Expression.
func (u *UniqueNode) Collection() string { return u.upstream.Collection() }

// Upstream returns the input expression.
func (u *UniqueNode) Upstream() Expression { return u.upstream }

// Over returns the key field.
func (u *UniqueNode) Over() string { return u.over }

func (*UniqueNode) node() {}

// Mapping renames Source to Target in a select.
type Mapping struct {
	Source string
	Target string
}

// As maps source to target.
func As(source, target string) Mapping { return Mapping{Source: source, Target: target} }

// Keep keeps field under its own name.
func Keep(field string) Mapping { return Mapping{Source: field, Target: field} }

// SelectNode projects and renames fields. Fields not mapped are dropped.
type SelectNode struct {
	upstream Expression
	mappings []Mapping
}

// Collection implements Expression.
func (s *SelectNode) Collection() string { return s.upstream.Collection() }

// Upstream returns the input expression.
func (s *SelectNode) Upstream() Expression { return s.upstream }

// Mappings returns a copy of the field mappings in order.
func (s *SelectNode) Mappings() []Mapping { return slices.Clone(s.mappings) }

func (*SelectNode) node() {}

// SortNode re-sorts its input.
type SortNode struct {
	upstream Expression
	keys     []query.SortKey
}

// Collection implements Expression.
func (s *SortNode) Collection() string { return s.upstream.Collection() }

// Upstream returns the input expression.
func (s *SortNode) Upstream() Expression { return s.upstream }

// Keys returns a copy of the sort keys.
func (s *SortNode) Keys() []query.SortKey { return slices.Clone(s.keys) }

func (*SortNode) node() {}

// InnerJoinNode merge-joins two inputs sorted on the same key.
type InnerJoinNode struct {
	left  Expression
	right Expression
	on    string
}

// Collection implements Expression.
func (j *InnerJoinNode) Collection() string { return j.left.Collection() }

// Left returns the left input.
func (j *InnerJoinNode) Left() Expression { return j.left }

// Right returns the right input.
func (j *InnerJoinNode) Right() Expression { return j.right }

// On returns the join key.
func (j *InnerJoinNode) On() string { return j.on }

func (*InnerJoinNode) node() {}

// CartesianProductNode expands multi-valued fields into one tuple per combination.
type CartesianProductNode struct {
	upstream Expression
	fields   []string
}

// Collection implements Expression.
func (c *CartesianProductNode) Collection() string { return c.upstream.Collection() }

// Upstream returns the input expression.
func (c *CartesianProductNode) Upstream() Expression { return c.upstream }

// Fields returns a copy of the expanded fields.
func (c *CartesianProductNode) Fields() []string { return slices.Clone(c.fields) }

func (*CartesianProductNode) node() {}

// Sorted is an expression known to be sorted ascending on Key.
type Sorted struct {
	expr Expression
	key  string
}

// Expr returns the underlying expression.
func (s Sorted) Expr() Expression { return s.expr }

// Key returns the field the expression is sorted on.
func (s Sorted) Key() string { return s.key }

// SortedSearch asserts that s is sorted ascending on key. It fails unless key
// is the first sort key of s and its direction is ascending.
func SortedSearch(s *SearchNode, key string) (Sorted, error) {
	if len(s.params.Sort) == 0 || s.params.Sort[0].Field != key || s.params.Sort[0].Direction != query.Asc {
		return Sorted{}, fmt.Errorf("search on %s is not sorted ascending on %q", s.collection, key)
	}
	return Sorted{expr: s, key: key}, nil
}

// SortBy re-sorts e ascending on key, then on any further keys.
func SortBy(e Expression, key string, then ...query.SortKey) Sorted {
	keys := append([]query.SortKey{{Field: key, Direction: query.Asc}}, then...)
	return Sorted{expr: Sort(e, keys...), key: key}
}

// Sort re-sorts e on keys. The result carries no sortedness guarantee; use
// SortBy to obtain a Sorted.
func Sort(e Expression, keys ...query.SortKey) *SortNode {
	return &SortNode{upstream: e, keys: slices.Clone(keys)}
}

// Unique drops adjacent duplicates of s's sort key, which makes it a global
// de-duplication.
func Unique(s Sorted) Sorted {
	return Sorted{expr: &UniqueNode{upstream: s.expr, over: s.key}, key: s.key}
}

// Select projects e through mappings. If several sources map to one target,
// the first source present in a tuple wins.
func Select(e Expression, mappings ...Mapping) *SelectNode {
	return &SelectNode{upstream: e, mappings: slices.Clone(mappings)}
}

// SelectSorted projects s and keeps its sortedness under the key's new name.
// It fails if the key is not projected.
func SelectSorted(s Sorted, mappings ...Mapping) (Sorted, error) {
	i := slices.IndexFunc(mappings, func(m Mapping) bool { return m.Source == s.key })
	if i < 0 {
		return Sorted{}, fmt.Errorf("select drops sort key %q", s.key)
	}
	return Sorted{expr: Select(s.expr, mappings...), key: mappings[i].Target}, nil
}

// InnerJoin merge-joins left and right on their common sort key. Tuples whose
// key appears on one side only are dropped. On a field defined by both sides
// the left value wins unless it is empty. The output keeps left order and is
// sorted on the same key.
func InnerJoin(left, right Sorted) (Sorted, error) {
	if left.key != right.key {
		return Sorted{}, fmt.Errorf("inner join: left sorted on %q, right sorted on %q", left.key, right.key)
	}
	return Sorted{
		expr: &InnerJoinNode{left: left.expr, right: right.expr, on: left.key},
		key:  left.key,
	}, nil
}

// CartesianProduct emits, for each run of tuples sharing all other fields, one
// tuple per combination of the values of fields.
func CartesianProduct(e Expression, fields ...string) *CartesianProductNode {
	return &CartesianProductNode{upstream: e, fields: slices.Clone(fields)}
}
