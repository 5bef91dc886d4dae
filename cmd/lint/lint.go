package lint

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/pybridge-dev/pybridge/internal/linter"
	"github.com/pybridge-dev/pybridge/internal/process"
	"github.com/pybridge-dev/pybridge/internal/report"
	"github.com/pybridge-dev/pybridge/internal/workspace"
	"github.com/pybridge-dev/pybridge/pkg/shared"
	"github.com/pybridge-dev/pybridge/pkg/shared/config"
	"github.com/pybridge-dev/pybridge/pkg/shared/logger"
)

// RunOptionsLint holds the arguments for the lint command.
type RunOptionsLint struct {
	Linters []string
	Format  string
	Output  string
	Threads int
}

var (
	AppConfig        *config.Config
	lintOptions      RunOptionsLint
	exampleLintUsage = `  # Linting a file with every configured linter
  pybridge lint path/to/app.py

  # Linting with specific linters only
  pybridge lint --linter pylint --linter pycodestyle path/to/app.py

  # Linting with three linters running concurrently, writing SARIF to a file
  pybridge lint -j 3 --format sarif --output findings.sarif path/to/app.py`
)

var LintCmd = &cobra.Command{
	Use:                   "lint [--linter/-l NAME] [--format/-f FORMAT] [--output/-o PATH] [-j THREADS_NUMBER, default=1] TARGET",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleLintUsage,
	Short:                 "Runs the configured linters against a Python file and reports their findings",
	RunE:                  runLintCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runLintCommand executes the lint command.
func runLintCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	logger := logger.NewLogger(AppConfig, "core-lint")

	if err := validateLintArgs(AppConfig, &lintOptions, args); err != nil {
		logger.Error("invalid lint arguments", "error", err)
		return err
	}

	target := args[0]
	names := selectLinters(AppConfig, lintOptions.Linters)
	if len(names) == 0 {
		logger.Warn("no linters configured, nothing to do")
		return writeReport(logger, target, nil)
	}

	workDir := workspace.DetectRoot(target, logger)
	pipeline := linter.NewPipeline(AppConfig, process.NewRunner(logger), logger)

	var mu sync.Mutex
	findings := make(map[string][]linter.LintMessage, len(names))

	ctx := cmd.Context()
	shared.ForEveryStringWithBoundedGoroutines(lintOptions.Threads, names, func(i int, name string) {
		logger.Info("Goroutine started", "#", i+1, "linter", name)

		messages := pipeline.Run(ctx, name, target, workDir)

		mu.Lock()
		findings[name] = messages
		mu.Unlock()
		logger.Info("Lint finished", "#", i+1, "linter", name, "findings", len(messages))
	})

	logger.Debug("All goroutines are finished.")
	logger.Info("lint command completed", "summary", report.Summary(findings))
	return writeReport(logger, target, findings)
}

// selectLinters resolves the requested linter names, defaulting to every
// configured linter in stable order.
func selectLinters(cfg *config.Config, requested []string) []string {
	if len(requested) > 0 {
		return requested
	}
	names := make([]string, 0, len(cfg.Linters))
	for name := range cfg.Linters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// writeReport renders the findings to stdout or the requested output file.
func writeReport(log hclog.Logger, target string, findings map[string][]linter.LintMessage) error {
	var out io.Writer = os.Stdout
	if lintOptions.Output != "" {
		file, err := os.OpenFile(lintOptions.Output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			log.Error("failed to open output file", "path", lintOptions.Output, "error", err)
			return fmt.Errorf("failed to open output file %q: %w", lintOptions.Output, err)
		}
		defer file.Close()
		out = file
	}

	return report.Write(out, lintOptions.Format, target, findings, severityOverrides(AppConfig))
}

// severityOverrides collects the per-linter severity mapping tables.
func severityOverrides(cfg *config.Config) map[string]map[string]string {
	overrides := make(map[string]map[string]string)
	for name, settings := range cfg.Linters {
		if len(settings.Severities) > 0 {
			overrides[name] = settings.Severities
		}
	}
	return overrides
}

func init() {
	LintCmd.Flags().StringSliceVarP(&lintOptions.Linters, "linter", "l", nil, "Name of a configured linter to run; repeatable. Default is every configured linter.")
	LintCmd.Flags().StringVarP(&lintOptions.Format, "format", "f", report.FormatText, "Output format (text, json, sarif).")
	LintCmd.Flags().StringVarP(&lintOptions.Output, "output", "o", "", "Path to write the report to instead of stdout.")
	LintCmd.Flags().IntVarP(&lintOptions.Threads, "threads", "j", 1, "Number of concurrent linter runs.")
	LintCmd.Flags().BoolP("help", "h", false, "Show help for the lint command.")
}
