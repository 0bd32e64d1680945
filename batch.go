package cadyn

import (
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// WorkItem is one (rule, filter) pair of a sweep.
type WorkItem struct {
	Index  int
	Rule   *Rule
	Filter *Rule
}

// Profile holds the per-length measures of one work item. Entry m of each
// slice is the rate in bits per cell at sequence length m, NaN where the
// length is below the breadth or above the configured maximum.
type Profile struct {
	Rule          *Rule
	Filter        *Rule
	RuleEntropy   []float64
	FilterEntropy []float64
	DD            []float64
	Elapsed       time.Duration
}

// BatchConfig controls a sweep.
type BatchConfig struct {
	Threads        int `yaml:"threads"`         // Worker count
	EntropyMaxLen  int `yaml:"entropy_max_len"` // Longest sequence for rule and filter entropy
	EntropyAdvance int `yaml:"entropy_advance"` // Rule steps before entropy (at least 1)
	DDMaxLen       int `yaml:"dd_max_len"`      // Longest sequence for dynamical dependence
	DDAdvance      int `yaml:"dd_advance"`      // Rule steps before the first filter sample
	DDLag          int `yaml:"dd_lag"`          // Rule steps between the two filter samples
}

// DefaultBatchConfig returns the sweep defaults, one worker per CPU.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		Threads:        runtime.NumCPU(),
		EntropyMaxLen:  20,
		EntropyAdvance: 1,
		DDMaxLen:       14,
		DDAdvance:      0,
		DDLag:          1,
	}
}

// Validate checks ranges before any work is scheduled.
func (c BatchConfig) Validate() error {
	switch {
	case c.Threads < 1:
		return configErrorf("threads %d must be positive", c.Threads)
	case c.EntropyMaxLen < 0 || c.EntropyMaxLen > MaxSequenceLength:
		return configErrorf("entropy length %d outside [0,%d]", c.EntropyMaxLen, MaxSequenceLength)
	case c.EntropyAdvance < 1:
		return configErrorf("entropy advance %d must be at least 1", c.EntropyAdvance)
	case c.DDMaxLen < 0 || 2*c.DDMaxLen > MaxSequenceLength:
		return configErrorf("dependence length %d outside [0,%d]", c.DDMaxLen, MaxSequenceLength/2)
	case c.DDAdvance < 0:
		return configErrorf("dependence advance %d is negative", c.DDAdvance)
	case c.DDLag < 1:
		return configErrorf("dependence lag %d must be at least 1", c.DDLag)
	}
	return nil
}

func (c BatchConfig) rowLen() int { return max(c.EntropyMaxLen, c.DDMaxLen) + 1 }

// BatchResult is the joined output of RunBatch. Profiles is in item order.
type BatchResult struct {
	Profiles []Profile
	Shares   [][]int
	Elapsed  time.Duration
}

// Statistics summarizes per-item compute time.
func (r *BatchResult) Statistics() Statistics {
	return CalculateStatistics(lo.Map(r.Profiles, func(p Profile, _ int) time.Duration { return p.Elapsed }))
}

// Partition splits item indices 0..n-1 into at most threads contiguous
// shares of ceil(n/threads); the last share may be smaller.
func Partition(n, threads int) [][]int {
	if n <= 0 || threads < 1 {
		return nil
	}
	size := (n + threads - 1) / threads
	return lo.Chunk(lo.Range(n), size)
}

// RunBatch computes a Profile for every item on a fixed pool of workers.
// Memory is checked up front; each worker owns its scratch histograms and
// writes only its own slots of the result, so the join is the only
// synchronization besides diagnostics.
func RunBatch(items []WorkItem, cfg BatchConfig, diag *Diagnostics) (*BatchResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := diag.Logger()
	res := &BatchResult{Profiles: make([]Profile, len(items))}
	if len(items) == 0 {
		return res, nil
	}

	rb := lo.Max(lo.Map(items, func(it WorkItem, _ int) int { return it.Rule.Breadth }))
	fb := lo.Max(lo.Map(items, func(it WorkItem, _ int) int { return it.Filter.Breadth }))
	need := SweepMemory(cfg, len(items), rb, fb)
	log.Info("memory pre-flight", "required", FormatBytes(need))
	if err := CheckMemory(need); err != nil {
		return nil, err
	}

	res.Shares = Partition(len(items), cfg.Threads)
	log.Info("starting batch", "items", len(items), "workers", len(res.Shares))

	start := time.Now()
	var g errgroup.Group
	for w, share := range res.Shares {
		g.Go(func() error {
			return runShare(w+1, share, items, cfg, res.Profiles, diag)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)
	log.Info("batch finished", "elapsed", res.Elapsed)
	return res, nil
}

func runShare(worker int, share []int, items []WorkItem, cfg BatchConfig, out []Profile, diag *Diagnostics) error {
	log := diag.Logger()
	log.Info("worker started", "worker", worker, "items", len(share))
	start := time.Now()

	scratch, err := NewScratch(cfg.EntropyMaxLen, cfg.DDMaxLen)
	if err != nil {
		return err
	}
	for j, idx := range share {
		p, err := ComputeProfile(items[idx], cfg, scratch)
		if err != nil {
			return fmt.Errorf("worker %d item %d: %w", worker, idx, err)
		}
		out[idx] = p
		diag.Block(func(w io.Writer) {
			fmt.Fprintf(w, "\tworker %2d : item %2d of %2d : rule id = %s, filter id = %s\n",
				worker, j+1, len(share), p.Rule.ID(), p.Filter.ID())
			fmt.Fprintf(w, "\tworker %2d : rule entropy ≈ %8.6f, filter entropy ≈ %8.6f, DD ≈ %8.6f\n",
				worker, p.RuleEntropy[cfg.EntropyMaxLen], p.FilterEntropy[cfg.EntropyMaxLen], p.DD[cfg.DDMaxLen])
		})
	}
	log.Info("worker finished", "worker", worker, "elapsed", time.Since(start))
	return nil
}

// ComputeProfile measures one item. scratch may be nil.
func ComputeProfile(item WorkItem, cfg BatchConfig, scratch *Scratch) (Profile, error) {
	start := time.Now()
	n := cfg.rowLen()
	p := Profile{
		Rule:          item.Rule,
		Filter:        item.Filter,
		RuleEntropy:   nanSlice(n),
		FilterEntropy: nanSlice(n),
		DD:            nanSlice(n),
	}
	for m := item.Rule.Breadth; m <= cfg.EntropyMaxLen; m++ {
		h, err := RuleEntropy(item.Rule, m, cfg.EntropyAdvance, scratch)
		if err != nil {
			return Profile{}, err
		}
		p.RuleEntropy[m] = h / float64(m)
	}
	for m := item.Filter.Breadth; m <= cfg.EntropyMaxLen; m++ {
		h, err := RuleEntropy(item.Filter, m, cfg.EntropyAdvance, scratch)
		if err != nil {
			return Profile{}, err
		}
		p.FilterEntropy[m] = h / float64(m)
	}
	for m := max(item.Rule.Breadth, item.Filter.Breadth); m <= cfg.DDMaxLen; m++ {
		d, err := DynamicalDependence(item.Rule, item.Filter, m, cfg.DDAdvance, cfg.DDLag, scratch)
		if err != nil {
			return Profile{}, err
		}
		p.DD[m] = d / float64(m)
	}
	p.Elapsed = time.Since(start)
	return p, nil
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// ItemsFromCatalog returns one item per (rule, filter) pair, rules in
// catalog order and filters in each rule's filter order.
func ItemsFromCatalog(c *Catalog) []WorkItem {
	var items []WorkItem
	for _, id := range c.IDs() {
		filters := c.Filters(id, false)
		if filters == nil {
			continue
		}
		for _, fid := range filters.IDs() {
			items = append(items, WorkItem{Index: len(items), Rule: c.Rule(id), Filter: filters.Rule(fid)})
		}
	}
	return items
}

// EnsembleConfig describes a random sweep: Size rules at one lambda, each
// paired with a random filter whose lambda is picked by the job index from
// an evenly spaced range.
type EnsembleConfig struct {
	Size             int     `yaml:"size"`
	RuleBreadth      int     `yaml:"rule_breadth"`
	RuleLambda       float64 `yaml:"rule_lambda"`
	RuleSeed         uint64  `yaml:"rule_seed"`
	FilterBreadth    int     `yaml:"filter_breadth"`
	FilterLambdaMin  float64 `yaml:"filter_lambda_min"`
	FilterLambdaMax  float64 `yaml:"filter_lambda_max"`
	FilterResolution int     `yaml:"filter_resolution"`
	FilterSeed       uint64  `yaml:"filter_seed"`
	Job              int     `yaml:"job"`
}

// DefaultEnsembleConfig returns the ensemble defaults for job 1.
func DefaultEnsembleConfig() EnsembleConfig {
	return EnsembleConfig{
		Size:             40,
		RuleBreadth:      5,
		RuleLambda:       0.6,
		FilterBreadth:    5,
		FilterLambdaMin:  0.6,
		FilterLambdaMax:  0.9,
		FilterResolution: 10,
		Job:              1,
	}
}

// Validate checks the ensemble parameters, including the job index.
func (c EnsembleConfig) Validate() error {
	if c.Size < 1 {
		return configErrorf("ensemble size %d must be positive", c.Size)
	}
	if c.RuleLambda < 0 || c.RuleLambda > 1 {
		return configErrorf("rule lambda %g outside [0,1]", c.RuleLambda)
	}
	if c.FilterLambdaMin < 0 || c.FilterLambdaMax > 1 || c.FilterLambdaMin > c.FilterLambdaMax {
		return configErrorf("filter lambda range [%g,%g] invalid", c.FilterLambdaMin, c.FilterLambdaMax)
	}
	_, err := c.FilterLambda()
	return err
}

// FilterLambda is the filter density selected by the job index.
func (c EnsembleConfig) FilterLambda() (float64, error) {
	return FilterLambdaForJob(c.Job, c.FilterResolution, c.FilterLambdaMin, c.FilterLambdaMax)
}

// GenerateEnsemble draws the rules and filters of an ensemble sweep from two
// independent sources, so the rule set is reproducible across jobs.
func GenerateEnsemble(cfg EnsembleConfig) ([]WorkItem, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	flam, _ := cfg.FilterLambda()
	rsrc := NewSource(cfg.RuleSeed)
	fsrc := NewSource(cfg.FilterSeed)
	items := make([]WorkItem, cfg.Size)
	for i := range items {
		r, err := RandomRule(cfg.RuleBreadth, cfg.RuleLambda, rsrc)
		if err != nil {
			return nil, err
		}
		f, err := RandomRule(cfg.FilterBreadth, flam, fsrc)
		if err != nil {
			return nil, err
		}
		items[i] = WorkItem{Index: i, Rule: r, Filter: f}
	}
	return items, nil
}

// JobIndex resolves a job index: if arg names a set environment variable
// its value is used, otherwise arg itself is parsed.
func JobIndex(arg string) (int, error) {
	v := arg
	if env, ok := os.LookupEnv(arg); ok {
		v = env
	}
	j, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, &Error{Kind: ErrMalformedInput, Msg: fmt.Sprintf("job index %q is not an integer", v)}
	}
	return j, nil
}

// FilterLambdaForJob maps job j in [1,res] onto res evenly spaced values
// from low to high inclusive.
func FilterLambdaForJob(j, res int, low, high float64) (float64, error) {
	if res < 1 || j < 1 || j > res {
		return 0, configErrorf("job index %d outside [1,%d]", j, res)
	}
	if res == 1 {
		return low, nil
	}
	return low + float64(j-1)*(high-low)/float64(res-1), nil
}

// Statistics contains percentile compute times.
type Statistics struct {
	Mean   time.Duration
	Stddev time.Duration
	P50    time.Duration
	P95    time.Duration
	P99    time.Duration
}

// CalculateStatistics computes mean, deviation and percentiles.
func CalculateStatistics(durations []time.Duration) Statistics {
	if len(durations) == 0 {
		return Statistics{}
	}
	sorted := slices.Clone(durations)
	slices.Sort(sorted)

	mean := lo.Sum(sorted) / time.Duration(len(sorted))
	var variance float64
	for _, d := range sorted {
		diff := float64(d - mean)
		variance += diff * diff
	}
	return Statistics{
		Mean:   mean,
		Stddev: time.Duration(math.Sqrt(variance / float64(len(sorted)))),
		P50:    sorted[len(sorted)*50/100],
		P95:    sorted[len(sorted)*95/100],
		P99:    sorted[len(sorted)*99/100],
	}
}
