package gene

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/scxa/internal/domain"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    Category
		wantErr bool
	}{
		{"", Any, false},
		{"symbol", Symbol, false},
		{" Symbol ", Symbol, false},
		{"ENSGENE", EnsemblGene, false},
		{"pathwayname", Pathway, false},
		{"organism", "", true},
	}
	for _, tc := range tests {
		got, err := ParseCategory(tc.in)
		if tc.wantErr {
			if !errors.Is(err, domain.ErrUnknownCategory) {
				t.Errorf("ParseCategory(%q): expected ErrUnknownCategory, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCategory(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseCategory(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
