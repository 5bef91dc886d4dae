package refactor

import (
	"fmt"

	"github.com/pybridge-dev/pybridge/pkg/shared/files"
)

// validateRefactorArgs validates the arguments shared by the refactor
// subcommands. Selection bounds are only checked for the extract operations.
func validateRefactorArgs(options *RunOptionsRefactor, needsSelection bool) error {
	if options.File == "" {
		return fmt.Errorf("the 'file' flag must be specified")
	}

	expandedPath, err := files.ExpandPath(options.File)
	if err != nil {
		return fmt.Errorf("failed to expand path %q: %w", options.File, err)
	}
	if err := files.ValidatePath(expandedPath); err != nil {
		return fmt.Errorf("failed to validate file %q: %w", expandedPath, err)
	}
	options.File = expandedPath

	if options.Name == "" {
		return fmt.Errorf("the 'name' flag must be specified")
	}

	if !needsSelection {
		return nil
	}

	if options.StartLine < 0 || options.StartChar < 0 || options.EndLine < 0 || options.EndChar < 0 {
		return fmt.Errorf("selection positions must not be negative")
	}
	if options.EndLine < options.StartLine {
		return fmt.Errorf("selection end line %d is before start line %d", options.EndLine, options.StartLine)
	}
	if options.EndLine == options.StartLine && options.EndChar <= options.StartChar {
		return fmt.Errorf("selection is empty")
	}

	return nil
}
