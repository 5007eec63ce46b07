package memory

import (
	"slices"

	"github.com/kailas-cloud/scxa/internal/solr/stream"
)

// unique drops every tuple whose key equals the previous tuple's key.
func unique(in []stream.Tuple, key string) []stream.Tuple {
	out := make([]stream.Tuple, 0, len(in))
	var prev stream.Value
	for i, t := range in {
		v, _ := t.Get(key)
		if i > 0 && v.Equal(prev) {
			continue
		}
		prev = v
		out = append(out, t)
	}
	return out
}

// project applies select mappings in order. When several sources map to the
// same target the first one present wins; absent sources are omitted.
func project(in []stream.Tuple, mappings []stream.Mapping) []stream.Tuple {
	out := make([]stream.Tuple, len(in))
	for i, t := range in {
		var p stream.Tuple
		for _, m := range mappings {
			if p.Has(m.Target) {
				continue
			}
			if v, ok := t.Get(m.Source); ok {
				p.Set(m.Target, v)
			}
		}
		out[i] = p
	}
	return out
}

// innerJoin merge-joins two inputs sorted ascending on key. Each left tuple
// is combined with every right tuple of equal key. Tuples without a key never
// match.
func innerJoin(left, right []stream.Tuple, key string) []stream.Tuple {
	var out []stream.Tuple
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		lk, lok := joinKey(left[i], key)
		if !lok {
			i++
			continue
		}
		rk, rok := joinKey(right[j], key)
		if !rok {
			j++
			continue
		}

		switch {
		case lk < rk:
			i++
		case lk > rk:
			j++
		default:
			end := j
			for end < len(right) {
				k, ok := joinKey(right[end], key)
				if !ok || k != rk {
					break
				}
				end++
			}
			for i < len(left) {
				k, ok := joinKey(left[i], key)
				if !ok || k != lk {
					break
				}
				for _, r := range right[j:end] {
					out = append(out, merge(left[i], r))
				}
				i++
			}
			j = end
		}
	}
	return out
}

func joinKey(t stream.Tuple, key string) (string, bool) {
	v, ok := t.Get(key)
	if !ok || v.IsEmpty() {
		return "", false
	}
	return v.First(), true
}

// merge unions the fields of l and r. The left value wins unless it is empty.
func merge(l, r stream.Tuple) stream.Tuple {
	m := l.Clone()
	for _, f := range r.Fields() {
		lv, ok := m.Get(f)
		if ok && !lv.IsEmpty() {
			continue
		}
		rv, _ := r.Get(f)
		m.Set(f, rv)
	}
	return m
}

// cartesianProduct groups adjacent tuples that agree on every non-expanded
// field and emits one tuple per combination of the expanded fields' values,
// collected across the group in first-seen order. A field with no values
// does not take part in the product.
func cartesianProduct(in []stream.Tuple, fields []string) []stream.Tuple {
	var out []stream.Tuple
	for start := 0; start < len(in); {
		end := start + 1
		for end < len(in) && sameGroup(in[start], in[end], fields) {
			end++
		}
		out = append(out, expand(in[start:end], fields)...)
		start = end
	}
	return out
}

func sameGroup(a, b stream.Tuple, expanded []string) bool {
	keep := func(f string) bool { return !slices.Contains(expanded, f) }
	an := slices.DeleteFunc(a.Fields(), func(f string) bool { return !keep(f) })
	bn := slices.DeleteFunc(b.Fields(), func(f string) bool { return !keep(f) })
	if !slices.Equal(an, bn) {
		return false
	}
	for _, f := range an {
		av, _ := a.Get(f)
		bv, _ := b.Get(f)
		if !av.Equal(bv) {
			return false
		}
	}
	return true
}

func expand(group []stream.Tuple, fields []string) []stream.Tuple {
	type axis struct {
		field  string
		values []string
	}
	var axes []axis
	for _, f := range fields {
		var vals []string
		for _, t := range group {
			if v, ok := t.Get(f); ok {
				vals = append(vals, v.Items()...)
			}
		}
		if len(vals) > 0 {
			axes = append(axes, axis{field: f, values: vals})
		}
	}

	base := group[0]
	out := []stream.Tuple{base.Clone()}
	for _, a := range axes {
		next := make([]stream.Tuple, 0, len(out)*len(a.values))
		for _, t := range out {
			for _, v := range a.values {
				c := t.Clone()
				c.Set(a.field, stream.Scalar(v))
				next = append(next, c)
			}
		}
		out = next
	}
	return out
}
