package cadyn

import (
	"errors"
	"math"
	"testing"
)

// AssertionConfig contains tolerances for the numerical properties below.
type AssertionConfig struct {
	// Relative tolerance between the direct-DFT and autocovariance spectra
	SpectralTolerance float64

	// Absolute tolerance for entropy comparisons, in bits
	EntropyTolerance float64
}

// DefaultAssertionConfig returns the tolerances used by the package tests.
func DefaultAssertionConfig() AssertionConfig {
	return AssertionConfig{
		SpectralTolerance: 1e-9,
		EntropyTolerance:  1e-12,
	}
}

// AssertSpectraAgree verifies that the direct DFT and the Wiener–Khinchin
// route give the same power spectrum for row.
//
// Property:
//
//	|P_dft(k) − P_ac(k)| ≤ tol · max_k P_dft(k)
func AssertSpectraAgree(t testing.TB, row Row, cfg AssertionConfig) {
	t.Helper()

	tabs, err := SharedTrigTables(row.Cells())
	if err != nil {
		t.Fatalf("Failed to build trig tables: %v", err)
	}
	q := tabs.Bins()
	direct := make([]float64, q)
	viaAC := make([]float64, q)
	PowerSpectrum(row, tabs, direct)
	PowerFromAutocovariance(Autocovariance(row), tabs, viaAC)

	scale := 1.0
	for _, p := range direct {
		scale = math.Max(scale, math.Abs(p))
	}
	for k := range direct {
		if d := math.Abs(direct[k] - viaAC[k]); d > cfg.SpectralTolerance*scale {
			t.Errorf("Spectra disagree at bin %d: dft=%.12g ac=%.12g (|Δ|=%.3g)", k, direct[k], viaAC[k], d)
		}
	}
	t.Logf("✓ Spectra agree over %d bins (m=%d)", q, tabs.M)
}

// AssertRotationInverse verifies rotate_right(rotate_left(row, b), b) == row.
func AssertRotationInverse(t testing.TB, row Row, b int) {
	t.Helper()

	left := NewRow(len(row))
	back := NewRow(len(row))
	row.RotateLeft(left, b)
	left.RotateRight(back, b)
	if !back.Equal(row) {
		t.Errorf("Rotation by %d is not inverted:\n  in:  %s\n  out: %s", b, row, back)
	}
	if got := row.Equivalent(left); got < 0 {
		t.Errorf("Rotated row not recognised as equivalent (b=%d)", b)
	}
}

// AssertInversionInvolution verifies invert(invert(T)) == T and
// lambda(invert(T)) == 1 − lambda(T).
func AssertInversionInvolution(t testing.TB, rule *Rule) {
	t.Helper()

	inv := rule.Clone()
	inv.Invert()
	if got, want := inv.Lambda(), 1-rule.Lambda(); math.Abs(got-want) > 1e-15 {
		t.Errorf("Inverted lambda = %.6f, want %.6f", got, want)
	}
	inv.Invert()
	if !inv.Equal(rule) {
		t.Errorf("Double inversion changed rule %s to %s", rule.ID(), inv.ID())
	}
}

// AssertIDRoundTrip verifies that decoding a rule's id reproduces the rule.
func AssertIDRoundTrip(t testing.TB, rule *Rule) {
	t.Helper()

	back, err := DecodeID(rule.Breadth, rule.ID())
	if err != nil {
		t.Fatalf("DecodeID(%d, %q): %v", rule.Breadth, rule.ID(), err)
	}
	if !back.Equal(rule) {
		t.Errorf("Round trip of breadth-%d id %q produced %q", rule.Breadth, rule.ID(), back.ID())
	}
}

// AssertMalformed verifies that err is a malformed-input error of kind want.
func AssertMalformed(t testing.TB, err, want error) {
	t.Helper()

	if !errors.Is(err, want) {
		t.Errorf("Expected %v, got %v", want, err)
	}
	if !errors.Is(err, ErrMalformedInput) {
		t.Errorf("Expected malformed input, got %v", err)
	}
}
