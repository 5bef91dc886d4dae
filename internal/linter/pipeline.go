package linter

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/pybridge-dev/pybridge/internal/process"
	"github.com/pybridge-dev/pybridge/pkg/shared/config"
	"github.com/pybridge-dev/pybridge/pkg/shared/errors"
)

// Pipeline drives linter invocations and turns their raw stdout into
// structured diagnostics.
type Pipeline struct {
	cfg    *config.Config
	runner *process.Runner
	logger hclog.Logger
}

// NewPipeline creates a new Pipeline instance.
func NewPipeline(cfg *config.Config, runner *process.Runner, logger hclog.Logger) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		runner: runner,
		logger: logger,
	}
}

// Run executes the named linter against the target and parses its output.
// A linter that is disabled, missing or broken yields an empty result: a
// single linter's failure must never block other linters or the editor.
// Cancellation terminates the subprocess; whatever output was captured
// before the cut-off is still parsed and returned.
func (p *Pipeline) Run(ctx context.Context, name, target, workDir string) []LintMessage {
	if !config.IsLinterEnabled(p.cfg, name) {
		p.logger.Debug("linter disabled, skipping", "linter", name)
		return nil
	}
	settings, ok := config.LinterSettings(p.cfg, name)
	if !ok {
		p.logger.Debug("linter not configured, skipping", "linter", name)
		return nil
	}

	parser, err := NewParser(name, settings.Pattern, settings.ColumnOffset)
	if err != nil {
		p.logger.Error("invalid linter pattern", "linter", name, "error", err)
		return nil
	}

	runID := uuid.NewString()
	execution := process.Execution{
		Path: settings.Path,
		Args: append(append([]string{}, settings.Args...), target),
		Dir:  workDir,
	}
	p.logger.Info("running linter", "linter", name, "run", runID, "path", execution.Path, "args", execution.Args)

	result, err := p.runner.Run(ctx, execution)
	if err != nil {
		// Execution failure (missing binary, cancellation) is swallowed:
		// the run yields no further diagnostics and other linters are
		// unaffected. Partial output captured before a cancellation is
		// still parsed below.
		p.logger.Error("linter execution failed", "linter", name, "run", runID,
			"error", errors.NewSpawnError(execution.Path, err))
		if result == nil || ctx.Err() == nil {
			return nil
		}
	}
	p.logger.Trace("linter raw output", "linter", name, "run", runID, "stdout", result.Stdout, "stderr", result.Stderr, "exit", result.ExitCode)

	return p.parseOutput(parser, name, runID, settings.MaxMessages, result.Stdout)
}

// parseOutput splits stdout into lines and parses each one, accumulating up
// to maxMessages results. Lines are not trimmed so column offsets computed
// against raw line content stay correct. A line that fails to parse is
// logged and skipped; it never aborts the batch.
func (p *Pipeline) parseOutput(parser *Parser, name, runID string, maxMessages int, stdout string) []LintMessage {
	var messages []LintMessage

	for _, line := range strings.Split(stdout, "\n") {
		if maxMessages > 0 && len(messages) >= maxMessages {
			p.logger.Warn("message limit reached, remaining output ignored", "linter", name, "run", runID, "limit", maxMessages)
			break
		}
		if strings.TrimSuffix(line, "\r") == "" {
			continue
		}

		message, err := parser.Parse(line)
		if err != nil {
			p.logger.Debug("skipping unparseable line", "linter", name, "run", runID, "error", err)
			continue
		}
		messages = append(messages, *message)
	}

	return messages
}
