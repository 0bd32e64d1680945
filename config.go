package cadyn

import (
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Sweep modes.
const (
	ModeCatalog  = "catalog"  // items from a rule/filter catalog file
	ModeEnsemble = "ensemble" // randomly generated items
)

// SweepConfig is the full description of a batch run.
type SweepConfig struct {
	Mode     string         `yaml:"mode"`
	Catalog  string         `yaml:"catalog"`
	OutDir   string         `yaml:"out_dir"`
	JobIndex string         `yaml:"job_index"` // env var name or literal; overrides Ensemble.Job when set
	LogLevel string         `yaml:"log_level"`
	Batch    BatchConfig    `yaml:"batch"`
	Ensemble EnsembleConfig `yaml:"ensemble"`
}

// DefaultSweepConfig returns a catalog sweep over saved.rt writing to /tmp.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Mode:     ModeCatalog,
		Catalog:  "saved.rt",
		OutDir:   os.TempDir(),
		LogLevel: "info",
		Batch:    DefaultBatchConfig(),
		Ensemble: DefaultEnsembleConfig(),
	}
}

// LoadSweepConfig decodes a YAML file over the defaults, so omitted keys
// keep their default values.
func LoadSweepConfig(path string) (SweepConfig, error) {
	cfg := DefaultSweepConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, ioError(err, "read %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &Error{Kind: ErrConfiguration, Msg: path + ": " + err.Error()}
	}
	return cfg, nil
}

// Level parses LogLevel; an empty value means info.
func (c SweepConfig) Level() (slog.Level, error) {
	var lvl slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, configErrorf("log level %q: %v", c.LogLevel, err)
	}
	return lvl, nil
}

// Resolve applies JobIndex to the ensemble and validates the result.
func (c SweepConfig) Resolve() (SweepConfig, error) {
	if c.JobIndex != "" {
		j, err := JobIndex(c.JobIndex)
		if err != nil {
			return c, err
		}
		c.Ensemble.Job = j
	}
	return c, c.Validate()
}

// Validate checks the mode-specific settings.
func (c SweepConfig) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.OutDir == "" {
		return configErrorf("output directory not set")
	}
	switch c.Mode {
	case ModeCatalog:
		if c.Catalog == "" {
			return configErrorf("catalog mode needs a catalog file")
		}
	case ModeEnsemble:
		if err := c.Ensemble.Validate(); err != nil {
			return err
		}
	default:
		return configErrorf("unknown mode %q", c.Mode)
	}
	return c.Batch.Validate()
}

// RunSweep builds the work items for cfg, runs them and writes the output
// files, returning their paths.
func RunSweep(cfg SweepConfig, diag *Diagnostics) ([]string, error) {
	cfg, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}
	log := diag.Logger()

	switch cfg.Mode {
	case ModeCatalog:
		c, err := LoadCatalog(cfg.Catalog, diag)
		if err != nil {
			return nil, err
		}
		items := ItemsFromCatalog(c)
		if len(items) == 0 {
			return nil, &Error{Kind: ErrMalformedInput, Msg: "no rule/filter pairs in " + cfg.Catalog}
		}
		res, err := RunBatch(items, cfg.Batch, diag)
		if err != nil {
			return nil, err
		}
		logStatistics(log, res)
		return WriteProfiles(cfg.OutDir, res.Profiles)

	default:
		flam, _ := cfg.Ensemble.FilterLambda()
		log.Info("ensemble job", "job", cfg.Ensemble.Job, "filter_lambda", flam)
		items, err := GenerateEnsemble(cfg.Ensemble)
		if err != nil {
			return nil, err
		}
		res, err := RunBatch(items, cfg.Batch, diag)
		if err != nil {
			return nil, err
		}
		logStatistics(log, res)
		path, err := SaveEnsembleReport(cfg.OutDir, cfg.Ensemble, cfg.Batch, res.Profiles)
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	}
}

func logStatistics(log *slog.Logger, res *BatchResult) {
	st := res.Statistics()
	log.Info("item timings", "mean", st.Mean, "stddev", st.Stddev, "p50", st.P50, "p95", st.P95, "p99", st.P99)
}
