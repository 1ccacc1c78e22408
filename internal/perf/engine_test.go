package perf

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apitest/internal/envstore"
	"apitest/internal/httpclient"
	"apitest/internal/pipeline"
	"apitest/internal/scriptexec"
)

func newEngine(url string, cfg Config) *Engine {
	client := httpclient.New()
	p := pipeline.New(client, &scriptexec.Runner{Client: client}, envstore.New())
	return &Engine{
		Pipeline: p,
		Item:     pipeline.Item{Name: "target", Method: "GET", URL: url},
		Config:   cfg,
	}
}

func TestFixedIterationRun(t *testing.T) {
	var inFlight, peak int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		cur := atomic.AddInt64(&inFlight, 1)
		for {
			old := atomic.LoadInt64(&peak)
			if cur <= old || atomic.CompareAndSwapInt64(&peak, old, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	eng := newEngine(srv.URL, Config{Iterations: 100, Concurrency: 10})
	report, err := eng.Run(context.Background())
	require.NoError(t, err)

	s := report.Summary
	assert.Equal(t, 100, s.Count)
	assert.Equal(t, 100, s.Success)
	assert.Zero(t, s.Failure)
	assert.False(t, s.Cancelled)
	assert.Len(t, report.Iterations, 100)

	// Every slot was issued exactly once.
	seen := make(map[int]bool, 100)
	for _, it := range report.Iterations {
		assert.False(t, seen[it.Index])
		seen[it.Index] = true
		assert.Equal(t, 200, it.Status)
		assert.False(t, it.Timestamp.IsZero())
	}

	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(10))
	assert.Greater(t, atomic.LoadInt64(&peak), int64(1))

	assert.GreaterOrEqual(t, s.Min, 4*time.Millisecond)
	assert.LessOrEqual(t, s.Min, s.Max)
	assert.GreaterOrEqual(t, s.Mean, s.Min)
	assert.LessOrEqual(t, s.Mean, s.Max)
	assert.GreaterOrEqual(t, s.P99, s.P50)
	assert.Greater(t, s.AchievedRate, 0.0)
}

func TestDurationBoundedRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(2 * time.Millisecond)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	eng := newEngine(srv.URL, Config{Duration: 150 * time.Millisecond, Concurrency: 4})
	start := time.Now()
	report, err := eng.Run(context.Background())
	require.NoError(t, err)

	assert.Greater(t, report.Summary.Count, 0)
	assert.False(t, report.Summary.Cancelled, "hitting the duration limit is a normal stop")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestCancellationKeepsPartialResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(2 * time.Millisecond)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	eng := newEngine(srv.URL, Config{Iterations: 100000, Concurrency: 4})
	report, err := eng.Run(ctx)
	require.NoError(t, err)

	assert.True(t, report.Summary.Cancelled)
	assert.Greater(t, report.Summary.Count, 0)
	assert.Less(t, report.Summary.Count, 100000)
	assert.Equal(t, report.Summary.Count, report.Summary.Success+report.Summary.Failure)
}

func TestRatePacing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	eng := newEngine(srv.URL, Config{Iterations: 10, Concurrency: 5, Rate: 50})
	start := time.Now()
	report, err := eng.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, report.Summary.Count)
	// 10 iterations at 50/s need at least ~180ms of pacing.
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
	assert.LessOrEqual(t, report.Summary.AchievedRate, 60.0)
}

func TestServerErrorsCountAsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	eng := newEngine(srv.URL, Config{Iterations: 20, Concurrency: 4})
	report, err := eng.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 20, report.Summary.Count)
	assert.Equal(t, 20, report.Summary.Failure)
	assert.Zero(t, report.Summary.Success)
	for _, it := range report.Iterations {
		assert.Equal(t, 500, it.Status)
		assert.True(t, it.Failed())
	}
}

func TestTransportErrorsCountAsFailures(t *testing.T) {
	eng := newEngine("http://127.0.0.1:1/", Config{Iterations: 5, Concurrency: 2})
	report, err := eng.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, report.Summary.Failure)
	for _, it := range report.Iterations {
		assert.Zero(t, it.Status)
		assert.NotEmpty(t, it.Err)
	}
}

func TestFailureRateGuardStopsRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	eng := newEngine(srv.URL, Config{Iterations: 5000, Concurrency: 4, AbortFailureRate: 0.5})
	report, err := eng.Run(context.Background())
	require.NoError(t, err)

	s := report.Summary
	assert.NotEmpty(t, s.AbortReason)
	assert.GreaterOrEqual(t, s.Count, minAbortSamples)
	assert.Less(t, s.Count, 5000)
	assert.False(t, s.Cancelled, "a guard stop is not a caller cancellation")
}

func TestAbortDecisionNeedsSamples(t *testing.T) {
	abort, reason := abortDecision(minAbortSamples-1, minAbortSamples-1, 0.1)
	assert.False(t, abort)
	assert.Empty(t, reason)

	abort, _ = abortDecision(100, 9, 0.1)
	assert.False(t, abort)

	abort, reason = abortDecision(100, 10, 0.1)
	assert.True(t, abort)
	assert.Contains(t, reason, "10.0%")

	abort, _ = abortDecision(1000, 1000, 0)
	assert.False(t, abort, "zero threshold disables the guard")
}

func TestRunRequiresStopCondition(t *testing.T) {
	eng := newEngine("http://example.com", Config{Concurrency: 2})
	_, err := eng.Run(context.Background())
	assert.ErrorIs(t, err, errNoStopCondition)
}

func TestRunValidatesItem(t *testing.T) {
	eng := newEngine("", Config{Iterations: 1})
	_, err := eng.Run(context.Background())
	var cerr *pipeline.ConfigError
	assert.ErrorAs(t, err, &cerr)
}

func TestSummaryAgreesWithRawRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("i") == "" {
			_, _ = w.Write([]byte("ok"))
		}
	}))
	defer srv.Close()

	eng := newEngine(srv.URL, Config{Iterations: 30, Concurrency: 3})
	report, err := eng.Run(context.Background())
	require.NoError(t, err)

	recomputed := summarize(report.Iterations, report.Summary.Elapsed, false)
	assert.Equal(t, report.Summary, recomputed)
}
