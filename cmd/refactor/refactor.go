package refactor

import (
	"errors"
	"fmt"

	"github.com/sourcegraph/go-lsp"
	"github.com/spf13/cobra"

	"github.com/pybridge-dev/pybridge/internal/process"
	"github.com/pybridge-dev/pybridge/internal/refactor"
	"github.com/pybridge-dev/pybridge/pkg/shared/config"
	sharederrors "github.com/pybridge-dev/pybridge/pkg/shared/errors"
	"github.com/pybridge-dev/pybridge/pkg/shared/logger"
)

// RunOptionsRefactor holds the arguments shared by the refactor subcommands.
type RunOptionsRefactor struct {
	File      string
	Name      string
	Parent    string
	StartLine int
	StartChar int
	EndLine   int
	EndChar   int
}

var (
	AppConfig            *config.Config
	refactorOptions      RunOptionsRefactor
	exampleRefactorUsage = `  # Adding an import for the os module
  pybridge refactor add-import --file app.py --name os

  # Adding an import for a name inside a package
  pybridge refactor add-import --file app.py --name path --parent os

  # Extracting the selected expression into a new variable
  pybridge refactor extract-variable --file app.py --name total --start-line 12 --start-char 11 --end-line 12 --end-char 34

  # Extracting the selected statements into a new method
  pybridge refactor extract-method --file app.py --name compute_total --start-line 10 --start-char 4 --end-line 14 --end-char 0`
)

var RefactorCmd = &cobra.Command{
	Use:                   "refactor [command]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleRefactorUsage,
	Short:                 "Applies automated refactorings to a Python file",
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func newAddImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                   "add-import --file/-F PATH --name/-n NAME [--parent/-p MODULE]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Inserts an import statement for the given name",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefactorCommand(cmd, "add-import", func(ops *refactor.Operations) (*refactor.Result, error) {
				doc := refactor.Document{Path: refactorOptions.File}
				return ops.AddImport(cmd.Context(), doc, refactorOptions.Name, refactorOptions.Parent)
			})
		},
	}
	cmd.Flags().StringVarP(&refactorOptions.Parent, "parent", "p", "", "Module the imported name lives in; empty for a plain import.")
	return cmd
}

func newExtractVariableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                   "extract-variable --file/-F PATH --name/-n NAME --start-line L --start-char C --end-line L --end-char C",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Replaces the selected expression with a new variable",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefactorCommand(cmd, "extract-variable", func(ops *refactor.Operations) (*refactor.Result, error) {
				doc := refactor.Document{Path: refactorOptions.File}
				return ops.ExtractVariable(cmd.Context(), doc, selectionRange(&refactorOptions), refactorOptions.Name)
			})
		},
	}
	addSelectionFlags(cmd)
	return cmd
}

func newExtractMethodCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                   "extract-method --file/-F PATH --name/-n NAME --start-line L --start-char C --end-line L --end-char C",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Moves the selected statements into a new method",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefactorCommand(cmd, "extract-method", func(ops *refactor.Operations) (*refactor.Result, error) {
				doc := refactor.Document{Path: refactorOptions.File}
				return ops.ExtractMethod(cmd.Context(), doc, selectionRange(&refactorOptions), refactorOptions.Name)
			})
		},
	}
	addSelectionFlags(cmd)
	return cmd
}

// runRefactorCommand validates the arguments, performs the operation and
// prints the resulting diff. Helper tracebacks stay in the log; the user sees
// a short generic notice.
func runRefactorCommand(cmd *cobra.Command, operation string, run func(*refactor.Operations) (*refactor.Result, error)) error {
	logger := logger.NewLogger(AppConfig, "core-refactor")

	needsSelection := operation != "add-import"
	if err := validateRefactorArgs(&refactorOptions, needsSelection); err != nil {
		logger.Error("invalid refactor arguments", "operation", operation, "error", err)
		return err
	}

	ops := refactor.NewOperations(AppConfig, process.NewRunner(logger), logger)
	result, err := run(ops)
	if err != nil {
		logger.Error("refactor command failed", "operation", operation, "file", refactorOptions.File, "error", err)
		return userFacingError(operation, err)
	}

	fmt.Fprint(cmd.OutOrStdout(), result.Diff)
	if result.Selection != nil {
		logger.Info("new identifier introduced",
			"name", refactorOptions.Name,
			"line", result.Selection.Start.Line,
			"character", result.Selection.Start.Character)
	}
	logger.Info("refactor command completed successfully", "operation", operation, "file", refactorOptions.File)
	return nil
}

// userFacingError maps internal failures to short actionable notices. The
// full detail is already in the log.
func userFacingError(operation string, err error) error {
	if sharederrors.IsDependencyMissing(err) {
		return fmt.Errorf("the rope library is not installed in the configured Python environment; install it with 'pip install rope'")
	}
	var cmdErr *sharederrors.CommandError
	if errors.As(err, &cmdErr) {
		if summary := cmdErr.Summary(); summary != "" {
			return fmt.Errorf("%s failed: %s", operation, summary)
		}
	}
	return fmt.Errorf("%s failed; run with PYBRIDGE_LOG_LEVEL=debug for details", operation)
}

func selectionRange(options *RunOptionsRefactor) lsp.Range {
	return lsp.Range{
		Start: lsp.Position{Line: options.StartLine, Character: options.StartChar},
		End:   lsp.Position{Line: options.EndLine, Character: options.EndChar},
	}
}

func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&refactorOptions.StartLine, "start-line", 0, "0-based line where the selection starts.")
	cmd.Flags().IntVar(&refactorOptions.StartChar, "start-char", 0, "0-based character where the selection starts.")
	cmd.Flags().IntVar(&refactorOptions.EndLine, "end-line", 0, "0-based line where the selection ends.")
	cmd.Flags().IntVar(&refactorOptions.EndChar, "end-char", 0, "0-based character where the selection ends.")
}

func init() {
	RefactorCmd.PersistentFlags().StringVarP(&refactorOptions.File, "file", "F", "", "Path to the Python file to refactor.")
	RefactorCmd.PersistentFlags().StringVarP(&refactorOptions.Name, "name", "n", "", "Name to import or to give the extracted variable or method.")
	RefactorCmd.AddCommand(newAddImportCmd())
	RefactorCmd.AddCommand(newExtractVariableCmd())
	RefactorCmd.AddCommand(newExtractMethodCmd())
}
