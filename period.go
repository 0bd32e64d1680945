package cadyn

// PeriodConfig controls cycle detection on a single-row trajectory.
type PeriodConfig struct {
	FastForward int // Steps discarded before the reference row is taken
	MaxPeriod   int // Steps examined after the reference row
}

// DefaultPeriodConfig returns the exploration defaults.
func DefaultPeriodConfig() PeriodConfig {
	return PeriodConfig{
		FastForward: 1000000,
		MaxPeriod:   100000,
	}
}

// Validate rejects negative fast-forward and non-positive budgets.
func (c PeriodConfig) Validate() error {
	if c.FastForward < 0 {
		return configErrorf("fast-forward %d is negative", c.FastForward)
	}
	if c.MaxPeriod < 1 {
		return configErrorf("max period %d must be positive", c.MaxPeriod)
	}
	return nil
}

// PeriodResult reports a detected cycle. Rotation is the left rotation that
// maps the row after Period steps back onto the reference row; a non-zero
// rotation means the pattern recurs shifted.
type PeriodResult struct {
	Found    bool
	Period   int
	Rotation int
}

// DetectPeriod iterates a copy of row under rule. After the fast-forward
// phase the current row becomes the reference; each later step is tested
// for rotation-equivalence with it until a match or MaxPeriod steps.
func DetectPeriod(row Row, rule *Rule, cfg PeriodConfig) (PeriodResult, error) {
	if err := cfg.Validate(); err != nil {
		return PeriodResult{}, err
	}
	cur := row.Copy()
	Evolve(cur, rule, cfg.FastForward)
	ref := cur.Copy()

	next := NewRow(len(cur))
	buf := NewRow(len(cur))
	for i := 1; i <= cfg.MaxPeriod; i++ {
		rule.Step(next, cur)
		if rot := ref.EquivalentInto(next, buf); rot >= 0 {
			return PeriodResult{Found: true, Period: i, Rotation: rot}, nil
		}
		cur, next = next, cur
	}
	return PeriodResult{}, nil
}
