// Package gene defines the gene property categories a search term can be
// resolved against.
package gene

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/scxa/internal/domain"
)

// Category is a bioentity property name.
type Category string

// Supported categories. Any matches every property.
const (
	Any         Category = ""
	Symbol      Category = "symbol"
	Synonym     Category = "synonym"
	EnsemblGene Category = "ensgene"
	Description Category = "description"
	GOTerm      Category = "go"
	InterPro    Category = "interpro"
	Pathway     Category = "pathwayname"
)

var known = map[Category]bool{
	Any: true, Symbol: true, Synonym: true, EnsemblGene: true,
	Description: true, GOTerm: true, InterPro: true, Pathway: true,
}

// ParseCategory normalizes s and checks it is supported.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !known[c] {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownCategory, s)
	}
	return c, nil
}

// String returns the property name.
func (c Category) String() string { return string(c) }
