package input

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/morikuni/failure/v2"

	"github.com/juditrz/host-checker/pkg/model"
	"github.com/juditrz/host-checker/pkg/util"
)

// ErrorCode identifies input parsing failures.
type ErrorCode string

const (
	// ErrColumnNotFound means the CSV header lacks the requested column.
	ErrColumnNotFound ErrorCode = "ColumnNotFound"
)

// DefaultCSVColumn is the column consulted when none is named.
const DefaultCSVColumn = "URL"

// LinksFromCSV yields one InputLink per non-empty value in the chosen
// column, provenance fixed to ("CSV Entry", "N/A").
func LinksFromCSV(r io.Reader, column string) ([]model.InputLink, error) {
	if column == "" {
		column = DefaultCSVColumn
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, failure.Wrap(err)
	}
	idx := -1
	for i, name := range header {
		if strings.TrimSpace(name) == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, failure.New(ErrColumnNotFound,
			failure.Message("CSV header does not contain the URL column"),
			failure.Context{"column": column},
		)
	}

	var links []model.InputLink
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, failure.Wrap(err)
		}
		if idx >= len(record) {
			continue
		}
		value := strings.TrimSpace(record[idx])
		if value == "" {
			continue
		}
		links = append(links, model.InputLink{
			SourceLabel: "CSV Entry",
			SourceRef:   "N/A",
			URL:         util.NormalizeURL(value),
		})
	}
	return links, nil
}

// LinksFromCSVFile opens path and delegates to LinksFromCSV.
func LinksFromCSVFile(path, column string) ([]model.InputLink, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, failure.Wrap(err)
	}
	defer file.Close()
	return LinksFromCSV(file, column)
}
