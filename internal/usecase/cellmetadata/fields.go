package cellmetadata

import (
	"context"
	"slices"
)

// DefaultFields is the key of StaticFields applied to experiments without
// their own entry.
const DefaultFields = "*"

// StaticFields resolves fields of interest from configuration, keyed by
// experiment accession.
type StaticFields map[string][]string

// FieldsOfInterest implements FieldsResolver.
func (f StaticFields) FieldsOfInterest(_ context.Context, experiment string) ([]string, error) {
	if fields, ok := f[experiment]; ok {
		return slices.Clone(fields), nil
	}
	return slices.Clone(f[DefaultFields]), nil
}
