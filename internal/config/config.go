package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/pathcoef/internal/corr"
	"github.com/san-kum/pathcoef/internal/ksweep"
	"github.com/san-kum/pathcoef/internal/runner"
)

const (
	DefaultKGridSize = ksweep.DefaultGridSize
	DefaultMaxVIF    = 10.0
	DefaultMissing   = "pairwise"
)

// Config is the yaml form of an analysis configuration.
type Config struct {
	Data         string   `yaml:"data"`
	Response     string   `yaml:"response"`
	Predictors   []string `yaml:"predictors"`
	Exclude      bool     `yaml:"exclude"`
	GroupBy      string   `yaml:"group_by"`
	Correction   *float64 `yaml:"correction"`
	KGridSize    int      `yaml:"k_grid_size"`
	RunSelection bool     `yaml:"run_selection"`
	MaxVIF       float64  `yaml:"max_vif"`
	Missing      string   `yaml:"missing"`
}

func DefaultConfig() *Config {
	return &Config{
		KGridSize: DefaultKGridSize,
		MaxVIF:    DefaultMaxVIF,
		Missing:   DefaultMissing,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Options converts the file form into runner options.
func (c *Config) Options() (runner.Options, error) {
	policy, err := corr.ParsePolicy(c.Missing)
	if err != nil {
		return runner.Options{}, &runner.InvalidConfigError{Field: "missing", Reason: err.Error()}
	}

	opts := runner.DefaultOptions()
	opts.Response = c.Response
	opts.Predictors = c.Predictors
	opts.Exclude = c.Exclude
	opts.Grouping = c.GroupBy
	opts.Correction = c.Correction
	opts.RunSelection = c.RunSelection
	opts.Policy = policy
	if c.KGridSize > 0 {
		opts.KGridSize = c.KGridSize
	}
	if c.MaxVIF > 0 {
		opts.MaxVIF = c.MaxVIF
	}
	return opts, nil
}
