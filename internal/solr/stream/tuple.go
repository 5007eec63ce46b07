package stream

import (
	"slices"
	"strings"
)

// Value is a tuple field value: a scalar or an ordered list of values.
type Value struct {
	items []string
	multi bool
}

// Scalar returns a single-valued Value.
func Scalar(s string) Value { return Value{items: []string{s}} }

// List returns a multi-valued Value.
func List(items ...string) Value { return Value{items: slices.Clone(items), multi: true} }

// First returns the first element, or "" for an empty list.
func (v Value) First() string {
	if len(v.items) == 0 {
		return ""
	}
	return v.items[0]
}

// Items returns a copy of the elements.
func (v Value) Items() []string { return slices.Clone(v.items) }

// Len returns the number of elements.
func (v Value) Len() int { return len(v.items) }

// IsMulti reports whether the value is a list.
func (v Value) IsMulti() bool { return v.multi }

// IsEmpty reports whether the value has no non-blank element.
func (v Value) IsEmpty() bool {
	for _, s := range v.items {
		if s != "" {
			return false
		}
	}
	return true
}

// Equal reports whether both values hold the same elements in the same order.
func (v Value) Equal(o Value) bool {
	return v.multi == o.multi && slices.Equal(v.items, o.items)
}

func (v Value) String() string {
	if !v.multi {
		return v.First()
	}
	return "[" + strings.Join(v.items, ",") + "]"
}

// Tuple is one result row: an ordered field → value mapping.
type Tuple struct {
	names  []string
	values map[string]Value
}

// NewTuple builds a tuple from alternating field names and string values.
func NewTuple(kv ...string) Tuple {
	var t Tuple
	for i := 0; i+1 < len(kv); i += 2 {
		t.Set(kv[i], Scalar(kv[i+1]))
	}
	return t
}

// Set assigns v to name, keeping the field's position if it already exists.
func (t *Tuple) Set(name string, v Value) {
	if t.values == nil {
		t.values = make(map[string]Value)
	}
	if _, ok := t.values[name]; !ok {
		t.names = append(t.names, name)
	}
	t.values[name] = v
}

// Get returns the value of name.
func (t Tuple) Get(name string) (Value, bool) {
	v, ok := t.values[name]
	return v, ok
}

// Has reports whether the tuple defines name.
func (t Tuple) Has(name string) bool {
	_, ok := t.values[name]
	return ok
}

// First returns the first element of name, or "".
func (t Tuple) First(name string) string { return t.values[name].First() }

// Fields returns the field names in order.
func (t Tuple) Fields() []string { return slices.Clone(t.names) }

// Len returns the number of fields.
func (t Tuple) Len() int { return len(t.names) }

// Clone returns an independent copy.
func (t Tuple) Clone() Tuple {
	c := Tuple{names: slices.Clone(t.names)}
	if t.values != nil {
		c.values = make(map[string]Value, len(t.values))
		for k, v := range t.values {
			c.values[k] = v
		}
	}
	return c
}

// Equal reports whether both tuples hold the same fields in the same order.
func (t Tuple) Equal(o Tuple) bool {
	if !slices.Equal(t.names, o.names) {
		return false
	}
	for _, n := range t.names {
		if !t.values[n].Equal(o.values[n]) {
			return false
		}
	}
	return true
}

func (t Tuple) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, n := range t.names {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(n)
		sb.WriteByte('=')
		sb.WriteString(t.values[n].String())
	}
	sb.WriteByte('}')
	return sb.String()
}
