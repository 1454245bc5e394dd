package dataset

import (
	"fmt"
	"math"
)

// Table is a column-oriented numeric table. Missing values are NaN.
// Non-numeric columns are kept as labels and can only be used for grouping.
type Table struct {
	order   []string
	numeric map[string][]float64
	labels  map[string][]string
	rows    int
}

func New(rows int) *Table {
	return &Table{
		numeric: make(map[string][]float64),
		labels:  make(map[string][]string),
		rows:    rows,
	}
}

func (t *Table) Rows() int { return t.rows }

// Columns returns all column names in original order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// NumericColumns returns the numeric column names in original order.
func (t *Table) NumericColumns() []string {
	out := make([]string, 0, len(t.numeric))
	for _, name := range t.order {
		if _, ok := t.numeric[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

func (t *Table) HasColumn(name string) bool {
	_, num := t.numeric[name]
	_, lab := t.labels[name]
	return num || lab
}

// Column returns the numeric column, or nil if the name is unknown or non-numeric.
func (t *Table) Column(name string) []float64 {
	return t.numeric[name]
}

// Labels returns the label column, or nil.
func (t *Table) Labels(name string) []string {
	return t.labels[name]
}

func (t *Table) AddColumn(name string, vals []float64) error {
	if t.HasColumn(name) {
		return fmt.Errorf("duplicate column %q", name)
	}
	if len(vals) != t.rows {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(vals), t.rows)
	}
	t.order = append(t.order, name)
	t.numeric[name] = vals
	return nil
}

func (t *Table) AddLabelColumn(name string, vals []string) error {
	if t.HasColumn(name) {
		return fmt.Errorf("duplicate column %q", name)
	}
	if len(vals) != t.rows {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(vals), t.rows)
	}
	t.order = append(t.order, name)
	t.labels[name] = vals
	return nil
}

// Schema selects the response and predictor columns for one analysis.
type Schema struct {
	Response   string
	Predictors []string // empty: all numeric columns except response and grouping
	Exclude    bool     // Predictors names columns to drop from the default set
	Grouping   string
}

// Resolve turns a Schema into the concrete ordered predictor list. Resolution
// happens once, before the engine runs; the engine itself never looks up
// columns by name again.
func (t *Table) Resolve(s Schema) ([]string, error) {
	if s.Response == "" {
		return nil, fmt.Errorf("response column not set")
	}
	if t.Column(s.Response) == nil {
		return nil, fmt.Errorf("response column %q not found or not numeric", s.Response)
	}
	if s.Grouping != "" && !t.HasColumn(s.Grouping) {
		return nil, fmt.Errorf("grouping column %q not found", s.Grouping)
	}

	var predictors []string
	if len(s.Predictors) == 0 || s.Exclude {
		drop := map[string]bool{s.Response: true, s.Grouping: true}
		if s.Exclude {
			for _, name := range s.Predictors {
				if !t.HasColumn(name) {
					return nil, fmt.Errorf("excluded column %q not found", name)
				}
				drop[name] = true
			}
		}
		for _, name := range t.NumericColumns() {
			if !drop[name] {
				predictors = append(predictors, name)
			}
		}
	} else {
		seen := make(map[string]bool, len(s.Predictors))
		for _, name := range s.Predictors {
			if t.Column(name) == nil {
				return nil, fmt.Errorf("predictor column %q not found or not numeric", name)
			}
			if name == s.Response {
				return nil, fmt.Errorf("response %q cannot be a predictor", name)
			}
			if seen[name] {
				return nil, fmt.Errorf("predictor %q listed twice", name)
			}
			seen[name] = true
			predictors = append(predictors, name)
		}
	}

	if len(predictors) < 2 {
		return nil, fmt.Errorf("need at least 2 predictors, resolved %d", len(predictors))
	}
	return predictors, nil
}

// Group is one partition of a table, keyed by a grouping column value.
type Group struct {
	Key   string
	Table *Table
}

// SplitBy partitions the table by the values of a grouping column. Group
// order follows first appearance in the data, so grouped output is
// deterministic regardless of completion order downstream.
func (t *Table) SplitBy(column string) ([]Group, error) {
	keys, err := t.groupKeys(column)
	if err != nil {
		return nil, err
	}

	order := make([]string, 0)
	rowsByKey := make(map[string][]int)
	for i, key := range keys {
		if _, ok := rowsByKey[key]; !ok {
			order = append(order, key)
		}
		rowsByKey[key] = append(rowsByKey[key], i)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{Key: key, Table: t.subset(rowsByKey[key], column)})
	}
	return groups, nil
}

func (t *Table) groupKeys(column string) ([]string, error) {
	if lab := t.Labels(column); lab != nil {
		return lab, nil
	}
	num := t.Column(column)
	if num == nil {
		return nil, fmt.Errorf("grouping column %q not found", column)
	}
	keys := make([]string, len(num))
	for i, v := range num {
		if math.IsNaN(v) {
			keys[i] = "NA"
			continue
		}
		keys[i] = fmt.Sprintf("%g", v)
	}
	return keys, nil
}

func (t *Table) subset(rows []int, skip string) *Table {
	sub := New(len(rows))
	for _, name := range t.order {
		if name == skip {
			continue
		}
		if col, ok := t.numeric[name]; ok {
			vals := make([]float64, len(rows))
			for i, r := range rows {
				vals[i] = col[r]
			}
			sub.order = append(sub.order, name)
			sub.numeric[name] = vals
			continue
		}
		lab := t.labels[name]
		vals := make([]string, len(rows))
		for i, r := range rows {
			vals[i] = lab[r]
		}
		sub.order = append(sub.order, name)
		sub.labels[name] = vals
	}
	return sub
}
