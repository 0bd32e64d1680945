// Package cadyn simulates one-dimensional, two-state cellular automata on a
// ring and measures their complexity.
//
// # Overview
//
// Cells are packed 64 to a Word; a Row is a ring of m = 64n cells and a CA
// is a stack of rows, one per time step, in a single contiguous buffer.
// A Rule of breadth B maps the window of cells i..i+B-1 (cell i in the
// least significant bit) to the new value of cell i.
//
// The package components:
//
//   - word, row     - packed bit vectors: rotate, reverse, popcount, random fill
//   - rule          - lookup tables, hex ids, density-targeted generation
//   - catalog       - duplicate-free rule lists with nested filter lists
//   - evolve        - the row kernel, multi-step runs, untwist, particle counts
//   - period        - cycle detection up to rotation
//   - spectral      - DFT and Wiener–Khinchin power spectra, autocovariance
//   - information   - auto-MI, sequence entropy, dynamical dependence
//   - batch         - worker-pool sweeps over rule/filter pairs
//   - persist       - the rule-id text format
//
// # Quick Start
//
// Evolve a random rule and look at the last row's spectrum:
//
//	src := cadyn.NewSource(1)
//	rule, _ := cadyn.RandomRule(5, 0.6, src)
//
//	ca, _ := cadyn.NewCA(512, 4) // 512 steps of a 256-cell ring
//	ca.Row(0).Randomize(src)
//	ca.Run(rule, cadyn.DefaultUntwist(rule.Breadth))
//
//	tabs, _ := cadyn.SharedTrigTables(ca.Width())
//	power := make([]float64, tabs.Bins())
//	cadyn.PowerSpectrum(ca.Row(ca.Rows-1), tabs, power)
//
// # Sequence entropy and dynamical dependence
//
// RuleEntropy enumerates all 2^m ring sequences of length m, applies the
// rule, and returns the entropy of the image histogram. DynamicalDependence
// samples a filter rule's output u before and v after a lag and returns
//
//	H(u,v) − H(u) = H(v | u)
//
// the uncertainty left in the filtered future given the filtered present.
// Both are exponential in m; joint histograms take 8·2^(2m) bytes, so sweeps
// check available memory before starting.
//
// # Batch sweeps
//
//	cfg := cadyn.DefaultBatchConfig()
//	items := cadyn.ItemsFromCatalog(catalog)
//	res, err := cadyn.RunBatch(items, cfg, cadyn.NewDiagnostics(os.Stderr, slog.LevelInfo))
//
// Work is split into Threads contiguous shares; each worker owns its scratch
// histograms and writes only its own result slots. Status lines go through
// Diagnostics, whose Block method emits several lines as one write.
//
// # Testing
//
// assertions.go provides helpers for the package's numerical properties:
//
//	cadyn.AssertSpectraAgree(t, row, cadyn.DefaultAssertionConfig())
//	cadyn.AssertInversionInvolution(t, rule)
//	cadyn.AssertIDRoundTrip(t, rule)
//
// # See Also
//
//   - examples/sweep - command-line batch runner
package cadyn
