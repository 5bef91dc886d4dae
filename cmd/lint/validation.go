package lint

import (
	"fmt"
	"os"

	"github.com/pybridge-dev/pybridge/internal/report"
	"github.com/pybridge-dev/pybridge/pkg/shared"
	"github.com/pybridge-dev/pybridge/pkg/shared/config"
	"github.com/pybridge-dev/pybridge/pkg/shared/files"
)

// validateLintArgs validates the arguments provided to the lint command.
func validateLintArgs(cfg *config.Config, options *RunOptionsLint, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one target file or directory must be specified")
	}

	expandedPath, err := files.ExpandPath(args[0])
	if err != nil {
		return fmt.Errorf("failed to expand path %q: %w", args[0], err)
	}
	if _, err := os.Stat(expandedPath); err != nil {
		return fmt.Errorf("failed to validate target %q: %w", expandedPath, err)
	}

	if !shared.IsInList(options.Format, report.Formats) {
		return fmt.Errorf("unknown format: %v", options.Format)
	}

	if options.Threads <= 0 {
		return fmt.Errorf("the 'threads' flag must be a positive integer")
	}

	for _, name := range options.Linters {
		if _, ok := cfg.Linters[name]; !ok {
			return fmt.Errorf("linter %q is not configured", name)
		}
	}

	return nil
}
