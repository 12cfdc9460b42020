package bench

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
)

// Result returns the result for s, or nil if s did not run.
func (r *Report) Result(s Strategy) *Result {
	for i := range r.Results {
		if r.Results[i].Strategy == s {
			return &r.Results[i]
		}
	}
	return nil
}

// Speedup returns how many times faster s ran than the scalar strategy, or 0
// if either did not run or took no measurable time.
func (r *Report) Speedup(s Strategy) float64 {
	base, other := r.Result(StrategyScalar), r.Result(s)
	if base == nil || other == nil || other.Duration <= 0 {
		return 0
	}
	return float64(base.Duration) / float64(other.Duration)
}

// WriteText renders the report as an aligned table.
func (r *Report) WriteText(w io.Writer) error {
	matrixBytes := uint64(r.Count) * uint64(r.Dimensions) * 4
	if _, err := fmt.Fprintf(w, "run %s: %s candidates × %d dims (%s), seed %d\n",
		r.RunID, humanize.Comma(int64(r.Count)), r.Dimensions, humanize.IBytes(matrixBytes), r.Seed); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STRATEGY\tDURATION\tPER CANDIDATE\tSPEEDUP\tCHECKSUM")
	for _, res := range r.Results {
		per := time.Duration(0)
		if r.Count > 0 {
			per = res.Duration / time.Duration(r.Count)
		}
		speedup := "-"
		if x := r.Speedup(res.Strategy); x > 0 {
			speedup = fmt.Sprintf("%.2fx", x)
		}
		fmt.Fprintf(tw, "%s\t%v\t%v\t%s\t%.6f\n", res.Strategy, res.Duration, per, speedup, res.Checksum)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if r.MaxRelError > 0 {
		_, err := fmt.Fprintf(w, "max relative error vs scalar: %.3g\n", r.MaxRelError)
		return err
	}
	return nil
}
