package scenario

import (
	"fmt"
	"io"
	"time"
)

// Result records the outcome of one scenario.
type Result struct {
	Name      string
	Passed    bool
	Skipped   bool
	Err       error // nil when passed
	Duration  time.Duration
	Unmatched []string
}

// Report records the outcome of a suite run.
type Report struct {
	Suite    string
	Results  []Result
	Duration time.Duration
}

// Counts returns the number of passed, failed and skipped scenarios.
func (r *Report) Counts() (passed, failed, skipped int) {
	for _, res := range r.Results {
		switch {
		case res.Skipped:
			skipped++
		case res.Passed:
			passed++
		default:
			failed++
		}
	}
	return passed, failed, skipped
}

// Passed reports whether every scenario that ran passed.
func (r *Report) Passed() bool {
	_, failed, skipped := r.Counts()
	return failed == 0 && skipped == 0
}

// Print writes a human-readable summary to w.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintf(w, "\n%s\n", r.Suite)
	for _, res := range r.Results {
		status := "PASS"
		switch {
		case res.Skipped:
			status = "SKIP"
		case !res.Passed:
			status = "FAIL"
		}
		fmt.Fprintf(w, "  %s  %s (%v)\n", status, res.Name, res.Duration.Round(time.Millisecond))
		if res.Err != nil && !res.Skipped {
			fmt.Fprintf(w, "        %v\n", res.Err)
		}
		if !res.Passed && len(res.Unmatched) > 0 {
			fmt.Fprintf(w, "        unmatched requests: %v\n", res.Unmatched)
		}
	}
	passed, failed, skipped := r.Counts()
	fmt.Fprintf(w, "\n%d passed, %d failed, %d skipped in %v\n", passed, failed, skipped, r.Duration.Round(time.Millisecond))
}
