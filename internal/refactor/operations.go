package refactor

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/sourcegraph/go-lsp"

	"github.com/pybridge-dev/pybridge/internal/process"
	"github.com/pybridge-dev/pybridge/pkg/shared/config"
	"github.com/pybridge-dev/pybridge/pkg/shared/errors"
	"github.com/pybridge-dev/pybridge/pkg/shared/files"
)

// Operations exposes the three supported refactorings. Each call runs one
// fresh session against one fresh helper subprocess.
type Operations struct {
	cfg    *config.Config
	runner *process.Runner
	logger hclog.Logger
}

// NewOperations creates a new Operations instance.
func NewOperations(cfg *config.Config, runner *process.Runner, logger hclog.Logger) *Operations {
	return &Operations{
		cfg:    cfg,
		runner: runner,
		logger: logger,
	}
}

// Document is the target of a refactoring: a file path plus the editor's
// in-memory content. Empty Text means the on-disk content is current.
type Document struct {
	Path string
	Text string
}

// Result describes an applied refactoring.
type Result struct {
	Diff      string     // The unified diff the helper produced
	NewText   string     // Document content after applying the diff
	Selection *lsp.Range // Location of the introduced identifier, when found
}

// AddImport inserts an import for name (optionally qualified by a parent
// module) into the document.
func (o *Operations) AddImport(ctx context.Context, doc Document, name, parent string) (*Result, error) {
	text, err := o.prepareDocument(doc)
	if err != nil {
		return nil, err
	}
	if err := o.EnsureRefactorLibrary(ctx); err != nil {
		return nil, err
	}

	cmd := NewAddImportCommand(doc.Path, text, name, parent, o.cfg.Refactor.IndentSize)
	return o.execute(ctx, doc.Path, text, cmd, "")
}

// ExtractVariable replaces the selected expression with a new variable.
func (o *Operations) ExtractVariable(ctx context.Context, doc Document, selection lsp.Range, newName string) (*Result, error) {
	return o.extract(ctx, doc, selection, newName, NewExtractVariableCommand)
}

// ExtractMethod moves the selected statements into a new method.
func (o *Operations) ExtractMethod(ctx context.Context, doc Document, selection lsp.Range, newName string) (*Result, error) {
	return o.extract(ctx, doc, selection, newName, NewExtractMethodCommand)
}

func (o *Operations) extract(ctx context.Context, doc Document, selection lsp.Range, newName string,
	newCommand func(string, int, int, string, int) Command) (*Result, error) {
	text, err := o.prepareDocument(doc)
	if err != nil {
		return nil, err
	}
	if err := o.EnsureRefactorLibrary(ctx); err != nil {
		return nil, err
	}

	// Offsets are computed against the in-memory document, which after the
	// silent save above matches the file the helper reads from disk.
	start, err := WorkerOffset(text, selection.Start)
	if err != nil {
		return nil, fmt.Errorf("invalid selection start: %w", err)
	}
	end, err := WorkerOffset(text, selection.End)
	if err != nil {
		return nil, fmt.Errorf("invalid selection end: %w", err)
	}

	cmd := newCommand(doc.Path, start, end, newName, o.cfg.Refactor.IndentSize)
	return o.execute(ctx, doc.Path, text, cmd, newName)
}

// EnsureRefactorLibrary verifies the rope library is importable in the
// configured Python environment. Nothing is spawned beyond the probe when
// it is missing.
func (o *Operations) EnsureRefactorLibrary(ctx context.Context) error {
	result, err := o.runner.Run(ctx, process.Execution{
		Path: o.cfg.Refactor.PythonPath,
		Args: []string{"-c", "import rope"},
	})
	if err != nil {
		return errors.NewStartupError(err.Error(), "", false)
	}
	if result.ExitCode != 0 {
		return errors.NewStartupError("", result.Stderr, true)
	}
	return nil
}

// execute drives one fresh session through a single command, applies the
// returned diff and persists the result atomically.
func (o *Operations) execute(ctx context.Context, path, text string, cmd Command, newName string) (*Result, error) {
	session := NewSession(o.cfg.Refactor, o.runner, o.logger)
	defer session.Close()

	if err := session.Start(ctx); err != nil {
		return nil, err
	}
	diffText, err := session.Do(ctx, cmd)
	if err != nil {
		// Tracebacks go to the audit log only; callers show a generic notice.
		o.logger.Error("refactor command failed", "lookup", cmd.Lookup, "file", path, "error", err)
		return nil, err
	}
	o.logger.Debug("refactor diff received", "lookup", cmd.Lookup, "file", path, "bytes", len(diffText))

	edits, err := EditsFromDiff(text, diffText)
	if err != nil {
		return nil, errors.NewApplyError(path, err)
	}
	newText, err := ApplyEdits(text, edits)
	if err != nil {
		return nil, errors.NewApplyError(path, err)
	}
	if err := files.WriteFileAtomic(path, []byte(newText), 0644); err != nil {
		return nil, errors.NewApplyError(path, err)
	}

	result := &Result{
		Diff:    diffText,
		NewText: newText,
	}
	if newName != "" && len(edits) > 0 {
		result.Selection = findIdentifier(newText, edits[0].StartLine, newName)
	}
	return result, nil
}

// prepareDocument returns the current document text and silently persists
// in-memory modifications first: the helper reads from disk by path, so the
// buffer and the file must agree before the subprocess runs.
func (o *Operations) prepareDocument(doc Document) (string, error) {
	onDisk, err := os.ReadFile(doc.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read %q: %w", doc.Path, err)
	}
	if doc.Text == "" || doc.Text == string(onDisk) {
		return string(onDisk), nil
	}

	o.logger.Debug("persisting modified buffer before refactoring", "file", doc.Path)
	if err := files.WriteFileAtomic(doc.Path, []byte(doc.Text), 0644); err != nil {
		return "", fmt.Errorf("failed to persist buffer for %q: %w", doc.Path, err)
	}
	return doc.Text, nil
}

// findIdentifier scans forward from the first changed line for the newly
// introduced identifier and returns its range. Absence is not an error; it
// only means no post-apply selection is offered.
func findIdentifier(text string, fromLine int, name string) *lsp.Range {
	lines := strings.Split(text, "\n")
	if fromLine < 0 {
		fromLine = 0
	}
	for i := fromLine; i < len(lines); i++ {
		if col := strings.Index(lines[i], name); col >= 0 {
			return &lsp.Range{
				Start: lsp.Position{Line: i, Character: col},
				End:   lsp.Position{Line: i, Character: col + len(name)},
			}
		}
	}
	return nil
}
