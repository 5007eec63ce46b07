package query

import (
	"slices"

	"github.com/kailas-cloud/scxa/internal/solr/schema"
)

// Builder accumulates a Spec. Every method returns a new Builder and leaves
// the receiver untouched, so partially built specs can be shared.
type Builder[C schema.Collection] struct {
	params Params
}

// New starts a Builder with DefaultRows and normalization enabled.
func New[C schema.Collection]() Builder[C] {
	return Builder[C]{params: Params{Rows: DefaultRows, Normalize: true}}
}

// AddQuery adds scored terms for f. Terms for a field already present are
// OR-ed into its existing clause.
func (b Builder[C]) AddQuery(f schema.Field[C], terms ...string) Builder[C] {
	p := b.params.Clone()
	p.Query = addClause(p.Query, f.Name(), terms)
	return Builder[C]{params: p}
}

// AddFilter adds unscored exact-match terms for f, merged like AddQuery.
func (b Builder[C]) AddFilter(f schema.Field[C], terms ...string) Builder[C] {
	p := b.params.Clone()
	p.Filter = addClause(p.Filter, f.Name(), terms)
	return Builder[C]{params: p}
}

// Fields appends fields to the requested field list, skipping duplicates.
func (b Builder[C]) Fields(fields ...schema.Field[C]) Builder[C] {
	p := b.params.Clone()
	for _, f := range fields {
		if !slices.Contains(p.Fields, f.Name()) {
			p.Fields = append(p.Fields, f.Name())
		}
	}
	return Builder[C]{params: p}
}

// SortBy appends a sort key. Sorting again by the same field replaces its direction.
func (b Builder[C]) SortBy(f schema.Field[C], dir Direction) Builder[C] {
	p := b.params.Clone()
	if i := slices.IndexFunc(p.Sort, func(k SortKey) bool { return k.Field == f.Name() }); i >= 0 {
		p.Sort[i].Direction = dir
	} else {
		p.Sort = append(p.Sort, SortKey{Field: f.Name(), Direction: dir})
	}
	return Builder[C]{params: p}
}

// Facet requests value counts over f.
func (b Builder[C]) Facet(f schema.Field[C], limit, minCount int) Builder[C] {
	p := b.params.Clone()
	p.Facet = &Facet{Field: f.Name(), Limit: limit, MinCount: minCount}
	return Builder[C]{params: p}
}

// Rows sets the row cap. Negative values are treated as zero.
func (b Builder[C]) Rows(n int) Builder[C] {
	p := b.params.Clone()
	p.Rows = max(n, 0)
	return Builder[C]{params: p}
}

// Normalize toggles wildcard expansion of multi-word terms. Disable it when
// terms must be matched literally.
func (b Builder[C]) Normalize(on bool) Builder[C] {
	p := b.params.Clone()
	p.Normalize = on
	return Builder[C]{params: p}
}

// Build returns the immutable Spec.
func (b Builder[C]) Build() Spec[C] {
	return Spec[C]{params: b.params.Clone()}
}

func addClause(clauses []Clause, field string, terms []string) []Clause {
	i := slices.IndexFunc(clauses, func(c Clause) bool { return c.Field == field })
	if i < 0 {
		clauses = append(clauses, Clause{Field: field})
		i = len(clauses) - 1
	}
	for _, t := range terms {
		if !slices.Contains(clauses[i].Terms, t) {
			clauses[i].Terms = append(clauses[i].Terms, t)
		}
	}
	return clauses
}
