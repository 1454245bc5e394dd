package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/pathcoef/internal/ksweep"
	"github.com/san-kum/pathcoef/internal/runner"
)

// Store persists analysis runs under a base directory, one directory per run
// holding metadata.json plus CSV tables for effects, sweep, pruning and
// ladder output.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type GroupSummary struct {
	Key             string   `json:"key,omitempty"`
	Predictors      []string `json:"predictors"`
	R2              float64  `json:"r2"`
	ResidualEffect  float64  `json:"residual_effect"`
	ConditionNumber string   `json:"condition_number"`
	Determinant     float64  `json:"determinant"`
	WeightVar       string   `json:"weight_var"`
	Selected        []string `json:"selected,omitempty"`
	Error           string   `json:"error,omitempty"`
}

type RunMetadata struct {
	ID         string         `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	Data       string         `json:"data"`
	Response   string         `json:"response"`
	Grouping   string         `json:"grouping,omitempty"`
	Correction *float64       `json:"correction,omitempty"`
	MaxVIF     float64        `json:"max_vif"`
	Missing    string         `json:"missing"`
	Groups     []GroupSummary `json:"groups"`
}

func (s *Store) Save(dataPath string, res *runner.Result, opts runner.Options) (string, error) {
	runID := fmt.Sprintf("path_%d", time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Timestamp:  time.Now(),
		Data:       dataPath,
		Response:   opts.Response,
		Grouping:   opts.Grouping,
		Correction: opts.Correction,
		MaxVIF:     opts.MaxVIF,
		Missing:    opts.Policy.String(),
	}
	for _, e := range entries(res) {
		g := GroupSummary{Key: e.key}
		if e.err != nil {
			g.Error = e.err.Error()
		}
		if a := e.analysis; a != nil {
			g.Predictors = a.Predictors
			g.Selected = a.Selected
			if a.Diagnostics != nil {
				g.ConditionNumber = strconv.FormatFloat(a.Diagnostics.ConditionNumber, 'g', -1, 64)
				g.Determinant = a.Diagnostics.Determinant
				g.WeightVar = a.Diagnostics.WeightVar
			}
			if a.Path != nil {
				g.R2 = a.Path.R2
				g.ResidualEffect = a.Path.Residual
			}
		}
		meta.Groups = append(meta.Groups, g)
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := s.writeEffects(runDir, res); err != nil {
		return "", err
	}
	if err := s.writeSweep(runDir, res); err != nil {
		return "", err
	}
	if err := s.writeSelection(runDir, res); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// SweepGroup is one stored k-sweep table, keyed by group ("" for ungrouped
// runs).
type SweepGroup struct {
	Key   string
	Table *ksweep.Table
}

// LoadSweep reads sweep.csv back into per-group tables, preserving stored
// group order.
func (s *Store) LoadSweep(runID string) ([]SweepGroup, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "sweep.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("run %s has no sweep data", runID)
	}

	predictors := records[0][2:]
	groups := make([]SweepGroup, 0)
	byKey := make(map[string]*ksweep.Table)
	for _, rec := range records[1:] {
		key := rec[0]
		t, ok := byKey[key]
		if !ok {
			t = &ksweep.Table{Predictors: predictors}
			byKey[key] = t
			groups = append(groups, SweepGroup{Key: key, Table: t})
		}

		k, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("run %s: bad k %q", runID, rec[1])
		}
		direct := make([]float64, len(predictors))
		for i, cell := range rec[2:] {
			direct[i], _ = strconv.ParseFloat(cell, 64)
		}
		t.Points = append(t.Points, ksweep.Point{K: k, Direct: direct})
	}

	for i, g := range groups {
		groups[i].Table = byKey[g.Key]
	}
	return groups, nil
}

func (s *Store) writeEffects(runDir string, res *runner.Result) error {
	rows := [][]string{{"group", "predictor", "via", "effect"}}
	for _, e := range entries(res) {
		a := e.analysis
		if a == nil || a.Path == nil {
			continue
		}
		key := e.key
		for i, pi := range a.Predictors {
			for j, pj := range a.Predictors {
				rows = append(rows, []string{key, pi, pj, formatFloat(a.Path.Effects[i][j])})
			}
		}
	}
	if len(rows) == 1 {
		return nil
	}
	return writeCSV(filepath.Join(runDir, "effects.csv"), rows)
}

func (s *Store) writeSweep(runDir string, res *runner.Result) error {
	var header []string
	rows := make([][]string, 0)
	for _, e := range entries(res) {
		a := e.analysis
		if a == nil || a.Sweep == nil {
			continue
		}
		key := e.key
		if header == nil {
			header = append([]string{"group", "k"}, a.Sweep.Predictors...)
		}
		for _, p := range a.Sweep.Points {
			row := []string{key, formatFloat(p.K)}
			for _, v := range p.Direct {
				row = append(row, formatFloat(v))
			}
			rows = append(rows, row)
		}
	}
	if header == nil {
		return nil
	}
	return writeCSV(filepath.Join(runDir, "sweep.csv"), append([][]string{header}, rows...))
}

func (s *Store) writeSelection(runDir string, res *runner.Result) error {
	prune := [][]string{{"group", "iteration", "removed", "vif", "max_vif_after", "remaining"}}
	ladder := [][]string{{"group", "step", "predictors", "r2", "residual", "max_vif", "condition_number", "dropped"}}
	for _, e := range entries(res) {
		a := e.analysis
		if a == nil || a.Pruning == nil {
			continue
		}
		key := e.key
		for i, rec := range a.Pruning.Steps {
			prune = append(prune, []string{
				key, strconv.Itoa(i + 1), rec.Removed,
				formatFloat(rec.VIF), formatFloat(rec.MaxVIFAfter), strconv.Itoa(rec.Remaining),
			})
		}
		for i, step := range a.Ladder {
			ladder = append(ladder, []string{
				key, strconv.Itoa(i + 1), strings.Join(step.Predictors, ";"),
				formatFloat(step.Path.R2), formatFloat(step.Path.Residual),
				formatFloat(step.MaxVIF), formatFloat(step.Diagnostics.ConditionNumber),
				step.Dropped,
			})
		}
	}
	if len(prune) > 1 {
		if err := writeCSV(filepath.Join(runDir, "prune.csv"), prune); err != nil {
			return err
		}
	}
	if len(ladder) > 1 {
		if err := writeCSV(filepath.Join(runDir, "ladder.csv"), ladder); err != nil {
			return err
		}
	}
	return nil
}

type entry struct {
	key      string
	analysis *runner.Analysis
	err      error
}

func entries(res *runner.Result) []entry {
	if len(res.Groups) == 0 {
		return []entry{{analysis: res.Analysis}}
	}
	out := make([]entry, 0, len(res.Groups))
	for _, g := range res.Groups {
		out = append(out, entry{key: g.Key, analysis: g.Analysis, err: g.Err})
	}
	return out
}

func writeJSON(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()
	return w.WriteAll(rows)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
