package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/pathcoef/internal/corr"
	"github.com/san-kum/pathcoef/internal/runner"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.KGridSize != DefaultKGridSize {
		t.Errorf("expected grid size %d, got %d", DefaultKGridSize, cfg.KGridSize)
	}
	if cfg.MaxVIF != DefaultMaxVIF {
		t.Errorf("expected max VIF %f, got %f", DefaultMaxVIF, cfg.MaxVIF)
	}
	if cfg.Missing != DefaultMissing {
		t.Errorf("expected missing policy %q, got %q", DefaultMissing, cfg.Missing)
	}
	if cfg.Correction != nil {
		t.Error("default correction should be unset")
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	k := 0.05
	cfg := DefaultConfig()
	cfg.Data = "trial.csv"
	cfg.Response = "yield"
	cfg.Predictors = []string{"height", "tillers"}
	cfg.Exclude = true
	cfg.GroupBy = "site"
	cfg.Correction = &k
	cfg.KGridSize = 25
	cfg.RunSelection = true
	cfg.MaxVIF = 5
	cfg.Missing = "listwise"

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Data != cfg.Data || loaded.Response != cfg.Response {
		t.Errorf("data/response mismatch: %+v", loaded)
	}
	if len(loaded.Predictors) != 2 || loaded.Predictors[0] != "height" {
		t.Errorf("predictors mismatch: %v", loaded.Predictors)
	}
	if !loaded.Exclude || loaded.GroupBy != "site" {
		t.Errorf("exclude/group mismatch: %+v", loaded)
	}
	if loaded.Correction == nil || *loaded.Correction != k {
		t.Errorf("correction mismatch: %v", loaded.Correction)
	}
	if loaded.KGridSize != 25 || loaded.MaxVIF != 5 {
		t.Errorf("numeric fields mismatch: %+v", loaded)
	}
	if !loaded.RunSelection || loaded.Missing != "listwise" {
		t.Errorf("selection/missing mismatch: %+v", loaded)
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("response: y\n"), 0644); err != nil {
		t.Fatal(err)
	}

	// a sparse file still comes back with usable defaults
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.KGridSize != DefaultKGridSize {
		t.Errorf("expected default grid size, got %d", loaded.KGridSize)
	}
	if loaded.Missing != DefaultMissing {
		t.Errorf("expected default missing policy, got %q", loaded.Missing)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestOptionsConversion(t *testing.T) {
	k := 0.2
	cfg := &Config{
		Response:     "y",
		Predictors:   []string{"a", "b"},
		GroupBy:      "site",
		Correction:   &k,
		KGridSize:    11,
		RunSelection: true,
		MaxVIF:       8,
		Missing:      "listwise",
	}

	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}
	if opts.Response != "y" || opts.Grouping != "site" {
		t.Errorf("response/grouping mismatch: %+v", opts)
	}
	if opts.Correction == nil || *opts.Correction != k {
		t.Errorf("correction mismatch: %v", opts.Correction)
	}
	if opts.KGridSize != 11 || opts.MaxVIF != 8 {
		t.Errorf("numeric options mismatch: %+v", opts)
	}
	if opts.Policy != corr.Listwise {
		t.Errorf("expected listwise policy, got %v", opts.Policy)
	}
	if !opts.RunSelection {
		t.Error("run_selection should carry over")
	}
}

func TestOptionsZeroFieldsKeepDefaults(t *testing.T) {
	cfg := &Config{Response: "y", Missing: "pairwise"}

	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}
	if opts.KGridSize != DefaultKGridSize {
		t.Errorf("expected default grid size, got %d", opts.KGridSize)
	}
	if opts.MaxVIF != DefaultMaxVIF {
		t.Errorf("expected default max VIF, got %f", opts.MaxVIF)
	}
}

func TestOptionsUnknownPolicy(t *testing.T) {
	cfg := &Config{Response: "y", Missing: "sometimes"}

	_, err := cfg.Options()
	var invalid *runner.InvalidConfigError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidConfigError, got %v", err)
	}
	if invalid.Field != "missing" {
		t.Errorf("expected field missing, got %s", invalid.Field)
	}
}
