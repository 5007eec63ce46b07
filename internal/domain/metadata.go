package domain

import (
	"fmt"
	"regexp"
)

// NotAvailable is reported for a cell that has no recorded value for a
// metadata field.
const NotAvailable = "Not available"

// Metadata field names shared by every experiment.
const (
	InferredCellType = "inferred_cell_type"
	OrganismPart     = "organism_part"
)

var accessionRe = regexp.MustCompile(`^E-[A-Z]{2,6}-\d+$`)

// ValidateAccession checks that acc looks like an experiment accession,
// e.g. E-MTAB-5061.
func ValidateAccession(acc string) error {
	if !accessionRe.MatchString(acc) {
		return fmt.Errorf("%w: %q", ErrInvalidAccession, acc)
	}
	return nil
}
