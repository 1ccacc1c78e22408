package perf

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Summary is derived from the complete raw iteration set after the run
// ends, never updated incrementally, so it can always be recomputed from
// Report.Iterations and agree with it.
type Summary struct {
	Count   int
	Success int
	Failure int

	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
	P50  time.Duration
	P90  time.Duration
	P99  time.Duration

	// AchievedRate is completed iterations per second of wall clock.
	AchievedRate float64
	Elapsed      time.Duration

	// Cancelled marks a run stopped by the caller rather than by reaching
	// its iteration or duration limit.
	Cancelled bool

	// AbortReason is set when the failure-rate guard stopped the run.
	AbortReason string
}

func summarize(iterations []Iteration, elapsed time.Duration, cancelled bool) Summary {
	s := Summary{Count: len(iterations), Elapsed: elapsed, Cancelled: cancelled}
	if len(iterations) == 0 {
		return s
	}

	hist := hdrhistogram.New(1, 60_000_000, 3)
	for _, it := range iterations {
		if it.Failed() {
			s.Failure++
		} else {
			s.Success++
		}
		us := it.Duration.Microseconds()
		if us < 1 {
			us = 1
		}
		_ = hist.RecordValue(us)
	}

	s.Min = time.Duration(hist.Min()) * time.Microsecond
	s.Max = time.Duration(hist.Max()) * time.Microsecond
	s.Mean = time.Duration(hist.Mean()) * time.Microsecond
	s.P50 = time.Duration(hist.ValueAtQuantile(50)) * time.Microsecond
	s.P90 = time.Duration(hist.ValueAtQuantile(90)) * time.Microsecond
	s.P99 = time.Duration(hist.ValueAtQuantile(99)) * time.Microsecond

	if elapsed > 0 {
		s.AchievedRate = float64(len(iterations)) / elapsed.Seconds()
	}
	return s
}
