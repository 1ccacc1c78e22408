package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"apitest/internal/config"
	"apitest/internal/envstore"
	"apitest/internal/httpclient"
	"apitest/internal/pipeline"
	"apitest/internal/scriptexec"
	"apitest/internal/scriptlog"
)

var (
	flagTimeout  string
	flagWorkDir  string
	flagNoColor  bool
	flagVerbose  bool
	flagShowLogs bool
)

var runCmd = &cobra.Command{
	Use:   "run <collection.yaml>",
	Short: "Execute a collection's items in order",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommand,
}

func init() {
	for _, cmd := range []*cobra.Command{runCmd, perfCmd} {
		cmd.Flags().StringVar(&flagTimeout, "timeout", "30s", "default request timeout")
		cmd.Flags().StringVar(&flagWorkDir, "workdir", "", "directory script file access is confined to (default: collection directory)")
		cmd.Flags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
		cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "show response details")
		cmd.Flags().BoolVar(&flagShowLogs, "logs", false, "print the script console log after the run")
	}
}

func runCommand(cmd *cobra.Command, args []string) error {
	c, session, err := buildSession(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	results, runErr := session.pipeline.RunAll(ctx, c.PipelineItems())

	reporter := newReporter(os.Stdout, flagNoColor, flagVerbose)
	reporter.Collection(c.Name, results)
	if flagShowLogs {
		reporter.ScriptLogs(session.logs.Entries())
	}
	if runErr != nil {
		return runErr
	}

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d items failed", failed, len(results))
	}
	return nil
}

// session bundles the shared collaborators of one invocation.
type session struct {
	client   *httpclient.Client
	logs     *scriptlog.Buffer
	vars     *envstore.Store
	pipeline *pipeline.Pipeline
}

func buildSession(path string) (*config.Collection, *session, error) {
	c, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	timeout, err := time.ParseDuration(flagTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("timeout: %w", err)
	}

	workDir := flagWorkDir
	if workDir == "" {
		workDir = filepath.Dir(path)
	}

	client := httpclient.New(httpclient.WithTimeout(timeout))
	logs := scriptlog.New(1000)
	vars := envstore.New(c.Vars)
	runner := &scriptexec.Runner{
		Client:      client,
		Logs:        logs,
		WorkDir:     workDir,
		HTTPTimeout: timeout,
	}

	return c, &session{
		client:   client,
		logs:     logs,
		vars:     vars,
		pipeline: pipeline.New(client, runner, vars),
	}, nil
}
