package output

import (
	"encoding/csv"
	"os"
)

// WriteCSV writes a header row followed by data rows. Path "-" targets
// stdout (which is left open).
func WriteCSV(path string, header []string, rows [][]string) error {
	var file *os.File
	if path == "-" {
		file = os.Stdout
	} else {
		var err error
		file, err = os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
	}

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
