package tables

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"
)

// readCSVFile reads every row of a CSV file. Quoting is lax because
// published reference tables are frequently hand-edited.
func readCSVFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "tables: open csv")
	}
	defer f.Close()

	return readCSV(f)
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // allow variable fields

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "tables: read csv row")
		}
		rows = append(rows, record)
	}
	return rows, nil
}
