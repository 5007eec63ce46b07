// Package schema declares the search backend collections and their fields.
//
// A Field is tagged with the collection it belongs to at the type level, so a
// query built for one collection cannot reference another collection's field.
package schema

// Collection identifies a backend collection.
type Collection interface {
	// Name is the collection name used on the wire.
	Name() string
	// UniqueKey is the field that totally orders the collection's documents.
	UniqueKey() string
}

// Field is an immutable handle to a field of collection C.
type Field[C Collection] struct {
	name      string
	multi     bool
	docValues bool
}

// NewField returns a single-valued field of collection C.
func NewField[C Collection](name string) Field[C] {
	return Field[C]{name: name, docValues: true}
}

// NewMultiField returns a multi-valued field of collection C. docValues reports
// whether the field carries the index structure cursor export requires.
func NewMultiField[C Collection](name string, docValues bool) Field[C] {
	return Field[C]{name: name, multi: true, docValues: docValues}
}

// Name returns the field name.
func (f Field[C]) Name() string { return f.name }

// Multi reports whether the field is multi-valued.
func (f Field[C]) Multi() bool { return f.multi }

// DocValues reports whether the field can be exported in all-docs mode.
func (f Field[C]) DocValues() bool { return f.docValues }

// Collection returns the name of the owning collection.
func (f Field[C]) Collection() string {
	var c C
	return c.Name()
}

func (f Field[C]) String() string { return f.Collection() + "." + f.name }

// Names returns the field names in order.
func Names[C Collection](fields ...Field[C]) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.name
	}
	return names
}
