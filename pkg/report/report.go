// Package report projects scan results into the exported table shape.
package report

import (
	"github.com/samber/lo"

	"github.com/juditrz/host-checker/pkg/model"
)

// Table is a header plus data rows, ready for the csv/xlsx writers.
type Table struct {
	Header []string
	Rows   [][]string
}

// Project normalizes results into rows. Provenance columns are only
// emitted when the input source carried meaningful provenance (the
// markdown-link form); other sources get the reduced three-column shape.
// Pure projection, no reordering.
func Project(results []model.ScanResult, withProvenance bool) Table {
	if withProvenance {
		return Table{
			Header: []string{"Name", "Profile", "URL", "Host", "NS Provider"},
			Rows: lo.Map(results, func(r model.ScanResult, _ int) []string {
				return []string{r.SourceLabel, r.SourceRef, r.URL, r.HostProvider, r.NSProvider}
			}),
		}
	}
	return Table{
		Header: []string{"URL", "Host", "NS Provider"},
		Rows: lo.Map(results, func(r model.ScanResult, _ int) []string {
			return []string{r.URL, r.HostProvider, r.NSProvider}
		}),
	}
}
