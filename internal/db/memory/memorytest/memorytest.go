// Package memorytest provides a memory store preloaded with a small
// single-cell dataset.
package memorytest

import (
	"bytes"
	_ "embed"
	"testing"

	"github.com/kailas-cloud/scxa/internal/db/memory"
)

//go:embed fixture.yaml
var fixture []byte

// Fixture returns the raw YAML dataset.
func Fixture() []byte { return bytes.Clone(fixture) }

// NewStore returns a store loaded with the dataset.
func NewStore(t testing.TB) *memory.Store {
	t.Helper()
	s := memory.New()
	if err := s.LoadFixture(bytes.NewReader(fixture)); err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return s
}
