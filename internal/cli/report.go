package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"apitest/internal/perf"
	"apitest/internal/pipeline"
	"apitest/internal/scriptlog"
)

type reporter struct {
	w       io.Writer
	verbose bool

	green  func(a ...interface{}) string
	red    func(a ...interface{}) string
	yellow func(a ...interface{}) string
	cyan   func(a ...interface{}) string
	bold   func(a ...interface{}) string
}

func newReporter(w io.Writer, noColor, verbose bool) *reporter {
	if noColor {
		color.NoColor = true
	}
	return &reporter{
		w:       w,
		verbose: verbose,
		green:   color.New(color.FgGreen).SprintFunc(),
		red:     color.New(color.FgRed).SprintFunc(),
		yellow:  color.New(color.FgYellow).SprintFunc(),
		cyan:    color.New(color.FgCyan).SprintFunc(),
		bold:    color.New(color.Bold).SprintFunc(),
	}
}

// Collection prints one line per item plus a tally.
func (r *reporter) Collection(name string, results []*pipeline.Result) {
	if name != "" {
		fmt.Fprintf(r.w, "\n%s\n\n", r.bold(name))
	}

	passed, failed := 0, 0
	for _, result := range results {
		label := result.Item
		if label == "" {
			label = result.Request.Method + " " + result.Request.URL
		}

		switch {
		case result.Response != nil && !result.Failed():
			passed++
			fmt.Fprintf(r.w, "  %s %s %s %s\n",
				r.green("✓"), label,
				result.Response.Status,
				r.cyan(fmt.Sprintf("(%dms)", result.Response.DurationMs())))
		case result.Response != nil:
			failed++
			fmt.Fprintf(r.w, "  %s %s %s %s\n",
				r.red("✗"), label,
				result.Response.Status,
				r.cyan(fmt.Sprintf("(%dms)", result.Response.DurationMs())))
		default:
			failed++
			fmt.Fprintf(r.w, "  %s %s %s\n", r.red("✗"), label, r.red(fmt.Sprintf("(%v)", result.Err)))
		}

		for _, d := range result.Diagnostics {
			fmt.Fprintf(r.w, "    %s %s\n", r.red("→"), d.String())
		}
		if r.verbose && result.Response != nil {
			body := result.Response.BodyString()
			if len(body) > 400 {
				body = body[:400] + "..."
			}
			fmt.Fprintf(r.w, "    %s\n", body)
		}
		if r.verbose && len(result.Vars) > 0 {
			fmt.Fprintf(r.w, "    vars:\n")
			for k, v := range result.Vars {
				fmt.Fprintf(r.w, "      %s = %s\n", k, v)
			}
		}
	}

	fmt.Fprintf(r.w, "\nItems: ")
	if passed > 0 {
		fmt.Fprintf(r.w, "%s, ", r.green(fmt.Sprintf("%d passed", passed)))
	}
	if failed > 0 {
		fmt.Fprintf(r.w, "%s, ", r.red(fmt.Sprintf("%d failed", failed)))
	}
	fmt.Fprintf(r.w, "%d total\n", len(results))
}

// PerfReport prints the aggregate of a performance run.
func (r *reporter) PerfReport(item string, report *perf.Report) {
	s := report.Summary

	fmt.Fprintf(r.w, "\n%s\n\n", r.bold("Performance: "+item))
	if s.Cancelled {
		fmt.Fprintf(r.w, "  %s\n", r.yellow("cancelled, partial results"))
	}
	if s.AbortReason != "" {
		fmt.Fprintf(r.w, "  %s\n", r.yellow("aborted: "+s.AbortReason))
	}

	fmt.Fprintf(r.w, "  Iterations: %d (%s, %s)\n",
		s.Count,
		r.green(fmt.Sprintf("%d ok", s.Success)),
		r.red(fmt.Sprintf("%d failed", s.Failure)))
	fmt.Fprintf(r.w, "  Elapsed:    %v\n", s.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(r.w, "  Rate:       %.1f/s\n", s.AchievedRate)
	fmt.Fprintf(r.w, "  Latency:    min %v  mean %v  max %v\n", s.Min, s.Mean, s.Max)
	fmt.Fprintf(r.w, "              p50 %v  p90 %v  p99 %v\n", s.P50, s.P90, s.P99)

	if r.verbose {
		for _, it := range report.Iterations {
			if it.Failed() {
				fmt.Fprintf(r.w, "  %s #%d status=%d %s\n", r.red("✗"), it.Index, it.Status, it.Err)
			}
		}
	}
}

// ScriptLogs dumps the session console buffer.
func (r *reporter) ScriptLogs(entries []scriptlog.Entry) {
	if len(entries) == 0 {
		return
	}
	fmt.Fprintf(r.w, "\n%s\n", r.bold("Script log"))
	for _, e := range entries {
		level := e.Level
		switch e.Level {
		case "warn":
			level = r.yellow(e.Level)
		case "error":
			level = r.red(e.Level)
		}
		fmt.Fprintf(r.w, "  [%s] %s: %s\n", level, e.Source, e.Message)
	}
}
