// Package tables reads the tabular reference files (CSV or XLSX) that
// back the lookup indexes. Readers validate headers and fail fast on
// unreadable, malformed, or empty tables; no partial result is returned.
package tables

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/statsight/sic-cli/internal/model"
)

// Column names required by the classification lookup table.
var lookupColumns = []string{"description", "code", "bridge"}

// Column names required by the rephrase table.
var rephraseColumns = []string{
	"input_code",
	"sic_code",
	"input_description",
	"llm_rephrased_description",
	"reviewed_description",
}

// Table is a loaded tabular file with a validated header.
type Table struct {
	colIdx map[string]int
	Rows   [][]string
}

// ReadTable loads the file at path and verifies that every required
// column is present in the header row. The format is chosen by
// extension: .xlsx uses the spreadsheet reader, everything else is
// parsed as CSV. A table with a header but no data rows is an error.
func ReadTable(path string, required ...string) (*Table, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	colIdx, err := headerIndex(rows[0], required)
	if err != nil {
		return nil, eris.Wrapf(err, "tables: %s", path)
	}
	if len(rows) < 2 {
		return nil, eris.Errorf("tables: %s: no data rows", path)
	}

	return &Table{colIdx: colIdx, Rows: rows[1:]}, nil
}

// Col returns the trimmed value of the named column in row.
func (t *Table) Col(row []string, name string) string {
	return getCol(row, t.colIdx, name)
}

// ReadRecords loads the classification lookup table from path.
func ReadRecords(path string) ([]model.Record, error) {
	tbl, err := ReadTable(path, lookupColumns...)
	if err != nil {
		return nil, err
	}

	records := make([]model.Record, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		records = append(records, model.Record{
			Description: tbl.Col(row, "description"),
			Code:        tbl.Col(row, "code"),
			Bridge:      tbl.Col(row, "bridge"),
		})
	}
	return records, nil
}

// ReadRephraseRecords loads the rephrased-description table from path.
func ReadRephraseRecords(path string) ([]model.RephraseRecord, error) {
	tbl, err := ReadTable(path, rephraseColumns...)
	if err != nil {
		return nil, err
	}

	records := make([]model.RephraseRecord, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		records = append(records, model.RephraseRecord{
			InputCode:            tbl.Col(row, "input_code"),
			SICCode:              tbl.Col(row, "sic_code"),
			InputDescription:     tbl.Col(row, "input_description"),
			RephrasedDescription: tbl.Col(row, "llm_rephrased_description"),
			ReviewedDescription:  tbl.Col(row, "reviewed_description"),
		})
	}
	return records, nil
}

// readRows dispatches on file extension and returns all rows including
// the header. An empty file (no header) is an error.
func readRows(path string) ([][]string, error) {
	var rows [][]string
	var err error

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		rows, err = readXLSX(path)
	} else {
		rows, err = readCSVFile(path)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("tables: %s: empty table", path)
	}
	return rows, nil
}

// headerIndex builds a normalized column name → index map and verifies
// every required column is present.
func headerIndex(header []string, required []string) (map[string]int, error) {
	colIdx := make(map[string]int, len(header))
	for i, col := range header {
		colIdx[normalizeCol(col)] = i
	}
	for _, name := range required {
		if _, ok := colIdx[normalizeCol(name)]; !ok {
			return nil, eris.Errorf("missing required column %q", name)
		}
	}
	return colIdx, nil
}

// normalizeCol lowercases and trims a column name for header matching.
func normalizeCol(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// getCol gets a trimmed column value by normalized name.
func getCol(row []string, colIdx map[string]int, name string) string {
	idx, ok := colIdx[normalizeCol(name)]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
