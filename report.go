package cadyn

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ProfileFileName is the per-item output name used in catalog mode.
func ProfileFileName(p Profile) string {
	return fmt.Sprintf("cadd_%s_%s.dat", p.Rule.ID(), p.Filter.ID())
}

// EnsembleFileName is the consolidated output name for an ensemble job.
func EnsembleFileName(job int) string {
	return fmt.Sprintf("caddr_%d.dat", job)
}

// WriteProfile writes one record: a header naming both ids, then one line
// per sequence length with the rule entropy, filter entropy and DD rates.
func WriteProfile(w io.Writer, p Profile) error {
	if _, err := fmt.Fprintf(w, "# rule id = %s, filter id = %s\n", p.Rule.ID(), p.Filter.ID()); err != nil {
		return err
	}
	return writeProfileRows(w, p)
}

func writeProfileRows(w io.Writer, p Profile) error {
	for m := range p.RuleEntropy {
		if _, err := fmt.Fprintf(w, "%4d\t%8.6f\t%8.6f\t%8.6f\n", m, p.RuleEntropy[m], p.FilterEntropy[m], p.DD[m]); err != nil {
			return err
		}
	}
	return nil
}

// WriteProfiles writes each profile to its own file under dir and returns
// the paths written.
func WriteProfiles(dir string, profiles []Profile) ([]string, error) {
	paths := make([]string, 0, len(profiles))
	for _, p := range profiles {
		path := filepath.Join(dir, ProfileFileName(p))
		if err := writeFile(path, func(w io.Writer) error { return writeProfileRows(w, p) }); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteEnsembleReport writes a parameter header followed by every profile,
// separated by blank lines.
func WriteEnsembleReport(w io.Writer, ens EnsembleConfig, cfg BatchConfig, profiles []Profile) error {
	flam, err := ens.FilterLambda()
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# rule    size    = %2d (lambda  = %8.6f)\n", ens.RuleBreadth, ens.RuleLambda)
	fmt.Fprintf(bw, "# filter  size    = %2d (lambda  = %8.6f)\n", ens.FilterBreadth, flam)
	fmt.Fprintf(bw, "# entropy seqlen  = %2d (advance = %d)\n", cfg.EntropyMaxLen, cfg.EntropyAdvance)
	fmt.Fprintf(bw, "# dynind  seqlen  = %2d (advance = %d, lag = %d)\n", cfg.DDMaxLen, cfg.DDAdvance, cfg.DDLag)
	fmt.Fprintf(bw, "# sample  size    = %d\n\n", len(profiles))
	for _, p := range profiles {
		if err := WriteProfile(bw, p); err != nil {
			return err
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// SaveEnsembleReport writes the report to EnsembleFileName(ens.Job) under
// dir and returns its path.
func SaveEnsembleReport(dir string, ens EnsembleConfig, cfg BatchConfig, profiles []Profile) (string, error) {
	path := filepath.Join(dir, EnsembleFileName(ens.Job))
	err := writeFile(path, func(w io.Writer) error { return WriteEnsembleReport(w, ens, cfg, profiles) })
	return path, err
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return ioError(err, "open %s", path)
	}
	bw := bufio.NewWriter(f)
	if err := fn(bw); err != nil {
		f.Close()
		return ioError(err, "write %s", path)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return ioError(err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		return ioError(err, "close %s", path)
	}
	return nil
}
