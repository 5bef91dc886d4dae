package process

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"github.com/hashicorp/go-hclog"
)

// Execution describes one subprocess invocation. It is immutable per run and
// never reused.
type Execution struct {
	Path string   // Resolved executable path
	Args []string // Final argument list
	Dir  string   // Working directory; empty means inherit
	Env  []string // Extra environment entries; nil means inherit only
}

// Result holds the captured output of a finished subprocess. Stdout and
// stderr are kept separate so diagnostic parsing is never polluted by
// warnings the tool prints on stderr.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes external tools.
type Runner struct {
	logger hclog.Logger
}

// NewRunner creates a new Runner instance.
func NewRunner(logger hclog.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run executes the subprocess to completion, bound to the given context.
// Cancelling the context terminates the process. A nonzero exit status is
// not an error here: linters exit nonzero whenever they have findings. Only
// a failure to execute at all (missing binary, permission problem) is
// reported as an error.
func (r *Runner) Run(ctx context.Context, execution Execution) (*Result, error) {
	cmd := exec.CommandContext(ctx, execution.Path, execution.Args...)
	cmd.Dir = execution.Dir
	if execution.Env != nil {
		cmd.Env = execution.Env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("running subprocess", "path", execution.Path, "args", execution.Args, "dir", execution.Dir)

	err := cmd.Run()
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}
		return nil, err
	}

	return result, nil
}
