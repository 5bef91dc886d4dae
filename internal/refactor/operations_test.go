package refactor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/sourcegraph/go-lsp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pybridge-dev/pybridge/internal/process"
	"github.com/pybridge-dev/pybridge/pkg/shared/config"
	sharederrors "github.com/pybridge-dev/pybridge/pkg/shared/errors"
)

// fakePython writes an executable that answers the library probe and
// otherwise hands the helper script to sh, standing in for a Python
// interpreter with rope installed.
func fakePython(t *testing.T, dir string, probeExit int) string {
	t.Helper()
	path := filepath.Join(dir, "python")
	script := "#!/bin/sh\n" +
		"if [ \"$1\" = \"-c\" ]; then\n"
	if probeExit == 0 {
		script += "  exit 0\n"
	} else {
		script += "  printf 'Traceback (most recent call last):\\\\nModuleNotFoundError: No module named rope\\n' >&2\n" +
			"  exit 1\n"
	}
	script += "fi\n" +
		"exec sh \"$1\"\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func newTestOperations(t *testing.T, helperScript string, probeExit int) (*Operations, string) {
	t.Helper()
	dir := t.TempDir()

	helperPath := filepath.Join(dir, "helper.sh")
	require.NoError(t, os.WriteFile(helperPath, []byte("#!/bin/sh\n"+helperScript), 0755))

	cfg := &config.Config{
		Refactor: config.Refactor{
			PythonPath: fakePython(t, dir, probeExit),
			ScriptPath: helperPath,
			IndentSize: 4,
			Timeout:    5 * time.Second,
		},
	}
	logger := hclog.NewNullLogger()
	return NewOperations(cfg, process.NewRunner(logger), logger), dir
}

const operationsSource = "import sys\n\ndef main():\n    print(len(sys.argv) * 2)\n"

// addImportHelper responds to any command with a diff inserting an import.
const addImportHelper = `
echo STARTED
read line
printf '{"id":"1","results":[{"diff":"--- a/target.py\\n+++ b/target.py\\n@@ -1,1 +1,2 @@\\n import sys\\n+import os\\n"}]}\n'
`

// extractHelper responds with a diff introducing a variable named doubled.
// It echoes no id, which the session accepts for either extract command.
const extractHelper = `
echo STARTED
read line
printf '{"results":[{"diff":"--- a/target.py\\n+++ b/target.py\\n@@ -3,2 +3,3 @@\\n def main():\\n-    print(len(sys.argv) * 2)\\n+    doubled = len(sys.argv) * 2\\n+    print(doubled)\\n"}]}\n'
`

func writeTarget(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "target.py")
	require.NoError(t, os.WriteFile(path, []byte(operationsSource), 0644))
	return path
}

func TestAddImportAppliesDiff(t *testing.T) {
	ops, dir := newTestOperations(t, addImportHelper, 0)
	target := writeTarget(t, dir)

	result, err := ops.AddImport(context.Background(), Document{Path: target}, "os", "")
	require.NoError(t, err)
	assert.Equal(t, "import sys\nimport os\n\ndef main():\n    print(len(sys.argv) * 2)\n", result.NewText)

	onDisk, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, result.NewText, string(onDisk))
}

func TestExtractVariableSelectsNewIdentifier(t *testing.T) {
	ops, dir := newTestOperations(t, extractHelper, 0)
	target := writeTarget(t, dir)

	selection := lsp.Range{
		Start: lsp.Position{Line: 3, Character: 10},
		End:   lsp.Position{Line: 3, Character: 27},
	}
	result, err := ops.ExtractVariable(context.Background(), Document{Path: target}, selection, "doubled")
	require.NoError(t, err)

	require.NotNil(t, result.Selection)
	assert.Equal(t, 3, result.Selection.Start.Line)
	assert.Equal(t, 4, result.Selection.Start.Character)
	assert.Equal(t, 4+len("doubled"), result.Selection.End.Character)
}

func TestExtractMethodAppliesDiff(t *testing.T) {
	ops, dir := newTestOperations(t, extractHelper, 0)
	target := writeTarget(t, dir)

	selection := lsp.Range{
		Start: lsp.Position{Line: 3, Character: 4},
		End:   lsp.Position{Line: 3, Character: 29},
	}
	result, err := ops.ExtractMethod(context.Background(), Document{Path: target}, selection, "doubled")
	require.NoError(t, err)
	assert.Contains(t, result.NewText, "doubled = len(sys.argv) * 2")
}

func TestOperationsAbortWhenLibraryMissing(t *testing.T) {
	ops, dir := newTestOperations(t, addImportHelper, 1)
	target := writeTarget(t, dir)

	_, err := ops.AddImport(context.Background(), Document{Path: target}, "os", "")
	require.Error(t, err)
	assert.True(t, sharederrors.IsDependencyMissing(err))

	// The document was not touched.
	onDisk, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, operationsSource, string(onDisk))
}

func TestOperationsPersistDirtyBufferFirst(t *testing.T) {
	ops, dir := newTestOperations(t, addImportHelper, 0)
	target := writeTarget(t, dir)

	// The in-memory buffer differs from disk; the silent save must land
	// before the helper reads the file.
	result, err := ops.AddImport(context.Background(), Document{Path: target, Text: operationsSource}, "os", "")
	require.NoError(t, err)
	assert.Contains(t, result.NewText, "import os")
}

func TestOperationsCommandFailureLeavesDocumentUnmodified(t *testing.T) {
	helper := `
echo STARTED
read line
printf '{"message":"selection is not an expression","traceback":"Traceback (most recent call last):\\\\nRefactoringError: bad selection","type":"RefactoringError"}\n' >&2
`
	ops, dir := newTestOperations(t, helper, 0)
	target := writeTarget(t, dir)

	selection := lsp.Range{
		Start: lsp.Position{Line: 0, Character: 0},
		End:   lsp.Position{Line: 0, Character: 6},
	}
	_, err := ops.ExtractVariable(context.Background(), Document{Path: target}, selection, "x")
	require.Error(t, err)

	var cmdErr *sharederrors.CommandError
	require.ErrorAs(t, err, &cmdErr)

	onDisk, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, operationsSource, string(onDisk))
}
