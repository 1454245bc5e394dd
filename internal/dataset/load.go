package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// LoadCSV reads a table from a CSV file with a header row. Cells that are
// empty or one of NA/NaN/null become NaN; a column where every non-missing
// cell parses as a number is numeric, anything else is kept as labels.
func LoadCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s: need a header row and at least one data row", path)
	}

	header := records[0]
	rows := len(records) - 1
	tbl := New(rows)

	for col, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%s: empty column name at position %d", path, col+1)
		}

		raw := make([]string, rows)
		for i := 1; i < len(records); i++ {
			if col >= len(records[i]) {
				return nil, fmt.Errorf("%s: row %d has %d fields, header has %d", path, i+1, len(records[i]), len(header))
			}
			raw[i-1] = strings.TrimSpace(records[i][col])
		}

		if vals, ok := parseNumeric(raw); ok {
			if err := tbl.AddColumn(name, vals); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			continue
		}
		if err := tbl.AddLabelColumn(name, raw); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return tbl, nil
}

func parseNumeric(raw []string) ([]float64, bool) {
	vals := make([]float64, len(raw))
	seen := false
	for i, cell := range raw {
		if isMissing(cell) {
			vals[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, false
		}
		vals[i] = v
		seen = true
	}
	return vals, seen
}

func isMissing(cell string) bool {
	switch strings.ToLower(cell) {
	case "", "na", "nan", "null":
		return true
	}
	return false
}
