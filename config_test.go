package cadyn

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallBatch() BatchConfig {
	return BatchConfig{
		Threads:        2,
		EntropyMaxLen:  6,
		EntropyAdvance: 1,
		DDMaxLen:       5,
		DDAdvance:      0,
		DDLag:          1,
	}
}

// TestLoadSweepConfig overlays YAML on the defaults.
func TestLoadSweepConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode: ensemble
out_dir: /tmp/out
job_index: "3"
batch:
  threads: 2
  entropy_max_len: 8
ensemble:
  size: 4
  filter_resolution: 5
`), 0o644))

	cfg, err := LoadSweepConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ModeEnsemble, cfg.Mode)
	assert.Equal(t, 2, cfg.Batch.Threads)
	assert.Equal(t, 8, cfg.Batch.EntropyMaxLen)
	assert.Equal(t, DefaultBatchConfig().DDMaxLen, cfg.Batch.DDMaxLen, "omitted keys keep defaults")
	assert.Equal(t, 5, cfg.Ensemble.RuleBreadth)

	cfg, err = cfg.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Ensemble.Job)
	flam, err := cfg.Ensemble.FilterLambda()
	require.NoError(t, err)
	assert.InDelta(t, 0.75, flam, 1e-12)
}

// TestLoadSweepConfig_Errors separates IO from configuration failures.
func TestLoadSweepConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadSweepConfig(filepath.Join(dir, "none.yaml"))
	assert.ErrorIs(t, err, ErrIO)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("batch: [1, 2"), 0o644))
	_, err = LoadSweepConfig(bad)
	assert.ErrorIs(t, err, ErrConfiguration)
}

// TestSweepConfig_Validate rejects inconsistent settings.
func TestSweepConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SweepConfig)
	}{
		{"unknown mode", func(c *SweepConfig) { c.Mode = "grid" }},
		{"no catalog", func(c *SweepConfig) { c.Catalog = "" }},
		{"no out dir", func(c *SweepConfig) { c.OutDir = "" }},
		{"bad level", func(c *SweepConfig) { c.LogLevel = "loud" }},
		{"zero threads", func(c *SweepConfig) { c.Batch.Threads = 0 }},
		{"dd too long", func(c *SweepConfig) { c.Batch.DDMaxLen = 17 }},
		{"no advance", func(c *SweepConfig) { c.Batch.EntropyAdvance = 0 }},
		{"job out of range", func(c *SweepConfig) { c.Mode = ModeEnsemble; c.Ensemble.Job = 11 }},
		{"lambda range", func(c *SweepConfig) { c.Mode = ModeEnsemble; c.Ensemble.FilterLambdaMin = 0.95 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSweepConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrConfiguration)
		})
	}
	assert.NoError(t, DefaultSweepConfig().Validate())
}

// TestJobIndex reads an environment variable or a literal.
func TestJobIndex(t *testing.T) {
	t.Setenv("CADYN_TEST_JOBINDEX", " 7 ")
	j, err := JobIndex("CADYN_TEST_JOBINDEX")
	require.NoError(t, err)
	assert.Equal(t, 7, j)

	j, err = JobIndex("4")
	require.NoError(t, err)
	assert.Equal(t, 4, j)

	_, err = JobIndex("CADYN_TEST_UNSET_VARIABLE")
	assert.ErrorIs(t, err, ErrMalformedInput)
}

// TestRunSweep_Ensemble writes one consolidated report.
func TestRunSweep_Ensemble(t *testing.T) {
	cfg := DefaultSweepConfig()
	cfg.Mode = ModeEnsemble
	cfg.OutDir = t.TempDir()
	cfg.Batch = smallBatch()
	cfg.Ensemble.Size = 3
	cfg.Ensemble.RuleBreadth = 3
	cfg.Ensemble.FilterBreadth = 3
	cfg.Ensemble.RuleSeed = 1
	cfg.Ensemble.FilterSeed = 2
	cfg.JobIndex = "2"

	paths, err := RunSweep(cfg, nil)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, "caddr_2.dat", filepath.Base(paths[0]))

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, "# rule    size    =  3 (lambda  = 0.600000)\n"), text)
	assert.Contains(t, text, "# sample  size    = 3\n")
	assert.Equal(t, 3, strings.Count(text, "# rule id = "))
}

// TestRunSweep_Catalog writes one file per pair.
func TestRunSweep_Catalog(t *testing.T) {
	dir := t.TempDir()
	catalog := filepath.Join(dir, "saved.rt")
	require.NoError(t, os.WriteFile(catalog, []byte("8E 96E8\n8E 17\n"), 0o644))

	cfg := DefaultSweepConfig()
	cfg.Catalog = catalog
	cfg.OutDir = dir
	cfg.Batch = smallBatch()

	paths, err := RunSweep(cfg, nil)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "cadd_8E_96E8.dat"), paths[0])
	assert.Equal(t, filepath.Join(dir, "cadd_8E_17.dat"), paths[1])

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, smallBatch().rowLen())

	require.NoError(t, os.WriteFile(catalog, []byte("# nothing\n8E\n"), 0o644))
	_, err = RunSweep(cfg, nil)
	assert.ErrorIs(t, err, ErrMalformedInput)
}
