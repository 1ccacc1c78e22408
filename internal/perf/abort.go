package perf

import "fmt"

// A run needs a minimum sample size before the failure-rate guard may
// trigger, so one failing warm-up request cannot kill it instantly.
const minAbortSamples = 20

func abortDecision(total, failed int, threshold float64) (bool, string) {
	if threshold <= 0 || total < minAbortSamples {
		return false, ""
	}
	rate := float64(failed) / float64(total)
	if rate >= threshold {
		return true, fmt.Sprintf("failure rate %.1f%% exceeded threshold %.1f%%", rate*100, threshold*100)
	}
	return false, ""
}
