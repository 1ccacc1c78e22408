package cli

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"apitest/internal/config"
	"apitest/internal/perf"
	"apitest/internal/pipeline"
)

var (
	flagPerfItem        string
	flagPerfIterations  int
	flagPerfDuration    string
	flagPerfConcurrency int
	flagPerfRate        float64
	flagPerfAbortRate   float64
)

var perfCmd = &cobra.Command{
	Use:   "perf <collection.yaml>",
	Short: "Run one item repeatedly and report latency statistics",
	Long: `perf executes a single item of the collection across a bounded
worker pool. Defaults come from the collection's perf block; flags
override it. At least one of --iterations and --duration must end up
set.`,
	Args: cobra.ExactArgs(1),
	RunE: perfCommand,
}

func init() {
	perfCmd.Flags().StringVar(&flagPerfItem, "item", "", "item to run (default: perf block, else first item)")
	perfCmd.Flags().IntVarP(&flagPerfIterations, "iterations", "n", 0, "total iterations")
	perfCmd.Flags().StringVarP(&flagPerfDuration, "duration", "d", "", "wall-clock limit, e.g. 30s")
	perfCmd.Flags().IntVarP(&flagPerfConcurrency, "concurrency", "c", 0, "worker pool size")
	perfCmd.Flags().Float64Var(&flagPerfRate, "rate", 0, "target requests per second")
	perfCmd.Flags().Float64Var(&flagPerfAbortRate, "abort-failure-rate", 0, "stop when this fraction of iterations fail, e.g. 0.5")
}

func perfCommand(cmd *cobra.Command, args []string) error {
	c, session, err := buildSession(args[0])
	if err != nil {
		return err
	}

	cfg, item, err := resolvePerfConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	engine := &perf.Engine{Pipeline: session.pipeline, Item: item, Config: cfg}
	report, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	reporter := newReporter(os.Stdout, flagNoColor, flagVerbose)
	reporter.PerfReport(item.Name, report)
	if flagShowLogs {
		reporter.ScriptLogs(session.logs.Entries())
	}
	return nil
}

// resolvePerfConfig layers command flags over the collection's perf block.
func resolvePerfConfig(c *config.Collection) (perf.Config, pipeline.Item, error) {
	var cfg perf.Config
	itemName := flagPerfItem

	if c.Perf != nil {
		cfg.Iterations = c.Perf.Iterations
		cfg.Concurrency = c.Perf.Concurrency
		cfg.Rate = c.Perf.Rate
		cfg.AbortFailureRate = c.Perf.AbortFailureRate
		d, err := c.Perf.ParseDuration()
		if err != nil {
			return cfg, pipeline.Item{}, err
		}
		cfg.Duration = d
		if itemName == "" {
			itemName = c.Perf.Item
		}
	}

	if flagPerfIterations > 0 {
		cfg.Iterations = flagPerfIterations
	}
	if flagPerfDuration != "" {
		d, err := time.ParseDuration(flagPerfDuration)
		if err != nil {
			return cfg, pipeline.Item{}, fmt.Errorf("duration: %w", err)
		}
		cfg.Duration = d
	}
	if flagPerfConcurrency > 0 {
		cfg.Concurrency = flagPerfConcurrency
	}
	if flagPerfRate > 0 {
		cfg.Rate = flagPerfRate
	}
	if flagPerfAbortRate > 0 {
		cfg.AbortFailureRate = flagPerfAbortRate
	}

	if itemName == "" {
		return cfg, c.PipelineItems()[0], nil
	}
	item, err := c.Item(itemName)
	if err != nil {
		return cfg, pipeline.Item{}, err
	}
	return cfg, item, nil
}
