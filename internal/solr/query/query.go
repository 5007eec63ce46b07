// Package query builds immutable search specifications for a single collection.
package query

import (
	"slices"

	"github.com/kailas-cloud/scxa/internal/solr/schema"
)

// DefaultRows is the row cap applied when the caller does not set one.
const DefaultRows = 1000

// Direction is a sort direction.
type Direction string

const (
	// Asc sorts ascending.
	Asc Direction = "asc"
	// Desc sorts descending.
	Desc Direction = "desc"
)

// Clause is one field and the set of terms it may match. Terms are OR-ed.
type Clause struct {
	Field string
	Terms []string
}

// SortKey is one sort criterion.
type SortKey struct {
	Field     string
	Direction Direction
}

// Facet requests value counts over a field.
type Facet struct {
	Field    string
	Limit    int
	MinCount int
}

// Params is the collection-agnostic content of a Spec. Clauses of different
// fields are AND-ed.
type Params struct {
	Query     []Clause
	Filter    []Clause
	Fields    []string
	Sort      []SortKey
	Facet     *Facet
	Rows      int
	Normalize bool
}

// Clone returns a deep copy.
func (p Params) Clone() Params {
	c := Params{
		Query:     cloneClauses(p.Query),
		Filter:    cloneClauses(p.Filter),
		Fields:    slices.Clone(p.Fields),
		Sort:      slices.Clone(p.Sort),
		Rows:      p.Rows,
		Normalize: p.Normalize,
	}
	if p.Facet != nil {
		f := *p.Facet
		c.Facet = &f
	}
	return c
}

// HasSortKey reports whether field is one of the sort keys.
func (p Params) HasSortKey(field string) bool {
	return slices.ContainsFunc(p.Sort, func(k SortKey) bool { return k.Field == field })
}

func cloneClauses(cs []Clause) []Clause {
	if cs == nil {
		return nil
	}
	out := make([]Clause, len(cs))
	for i, c := range cs {
		out[i] = Clause{Field: c.Field, Terms: slices.Clone(c.Terms)}
	}
	return out
}

// Spec is an immutable search specification over collection C.
type Spec[C schema.Collection] struct {
	params Params
}

// Collection returns the collection name.
func (s Spec[C]) Collection() string {
	var c C
	return c.Name()
}

// UniqueKey returns the collection's unique key field.
func (s Spec[C]) UniqueKey() string {
	var c C
	return c.UniqueKey()
}

// Params returns a copy of the spec content.
func (s Spec[C]) Params() Params { return s.params.Clone() }

// Rows returns the row cap.
func (s Spec[C]) Rows() int { return s.params.Rows }
