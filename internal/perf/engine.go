// Package perf drives one item through the execution pipeline repeatedly
// across a bounded worker pool, recording per-iteration latency and status
// and aggregating them once at the end.
package perf

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"apitest/internal/pipeline"
)

// Config shapes one performance run. At least one of Iterations and
// Duration must be set; when both are, whichever limit hits first wins.
type Config struct {
	Iterations  int
	Duration    time.Duration
	Concurrency int
	Rate        float64

	// AbortFailureRate stops the run early once the observed failure rate
	// reaches this fraction (0 disables the guard). The decision waits for
	// a minimum sample size.
	AbortFailureRate float64
}

var errNoStopCondition = errors.New("perf: either iterations or duration must be set")

// Iteration is the raw record of one pipeline execution.
type Iteration struct {
	Index     int
	Status    int
	Err       string
	Duration  time.Duration
	Timestamp time.Time
}

// Failed reports whether the iteration counts against the run: any phase
// error, or a server answer of 400 and above.
func (it Iteration) Failed() bool {
	return it.Err != "" || it.Status >= 400
}

// Report carries the full raw record set plus the derived summary.
type Report struct {
	Iterations []Iteration
	Summary    Summary
}

// Engine runs Item through Pipeline per Config. The pipeline's variable
// store is the only state iterations share.
type Engine struct {
	Pipeline *pipeline.Pipeline
	Item     pipeline.Item
	Config   Config
}

// Run executes the performance test. Cancelling ctx stops new iterations
// promptly; iterations already dispatched finish within the transport
// timeout, and everything recorded up to that point is still aggregated.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	if err := e.Item.Validate(); err != nil {
		return nil, err
	}
	cfg := e.Config
	if cfg.Iterations <= 0 && cfg.Duration <= 0 {
		return nil, errNoStopCondition
	}

	workers := cfg.Concurrency
	if workers < 1 {
		workers = 1
	}
	if cfg.Iterations > 0 && workers > cfg.Iterations {
		workers = cfg.Iterations
	}

	base := ctx
	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		base, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}
	runCtx, stopRun := context.WithCancel(base)
	defer stopRun()

	// Pacing is best effort: every worker still holds a pool slot while it
	// waits, so the concurrency bound always wins over the target rate.
	var limiter *rate.Limiter
	if cfg.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}

	var issued int64
	reserveSlot := func() (int, bool) {
		n := atomic.AddInt64(&issued, 1)
		if cfg.Iterations > 0 && n > int64(cfg.Iterations) {
			return 0, false
		}
		return int(n - 1), true
	}

	var mu sync.Mutex
	iterations := make([]Iteration, 0, cfg.Iterations)
	failures := 0
	abortReason := ""

	start := time.Now()
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if runCtx.Err() != nil {
					return
				}
				idx, ok := reserveSlot()
				if !ok {
					return
				}
				if limiter != nil {
					if err := limiter.Wait(runCtx); err != nil {
						return
					}
				}
				record := e.runOnce(idx)
				mu.Lock()
				iterations = append(iterations, record)
				if record.Failed() {
					failures++
				}
				if abortReason == "" {
					if abort, reason := abortDecision(len(iterations), failures, cfg.AbortFailureRate); abort {
						abortReason = reason
						stopRun()
					}
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	sort.Slice(iterations, func(a, b int) bool { return iterations[a].Index < iterations[b].Index })

	summary := summarize(iterations, elapsed, ctx.Err() != nil)
	summary.AbortReason = abortReason
	return &Report{Iterations: iterations, Summary: summary}, nil
}

// runOnce executes the item once. The iteration gets a detached context so
// an in-flight dispatch is bounded by the transport timeout rather than cut
// off mid-exchange when the run stops.
func (e *Engine) runOnce(idx int) Iteration {
	rec := Iteration{Index: idx, Timestamp: time.Now()}
	started := time.Now()
	result, err := e.Pipeline.Execute(context.Background(), e.Item)
	rec.Duration = time.Since(started)
	if err != nil {
		rec.Err = err.Error()
		return rec
	}
	if result.Response != nil {
		rec.Status = result.Response.StatusCode
	}
	if result.Err != nil {
		rec.Err = result.Err.Error()
	} else if len(result.Diagnostics) > 0 {
		rec.Err = result.Diagnostics[0].String()
	}
	return rec
}
