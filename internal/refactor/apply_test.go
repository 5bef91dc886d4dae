package refactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const applyOriginal = "import sys\n\ndef main():\n    print(len(sys.argv) * 2)\n"

func TestApplyDiffReplacement(t *testing.T) {
	diffText := "--- a/example.py\n" +
		"+++ b/example.py\n" +
		"@@ -1,4 +1,5 @@\n" +
		" import sys\n" +
		" \n" +
		" def main():\n" +
		"-    print(len(sys.argv) * 2)\n" +
		"+    doubled = len(sys.argv) * 2\n" +
		"+    print(doubled)\n"

	got, err := ApplyDiff(applyOriginal, diffText)
	require.NoError(t, err)
	assert.Equal(t, "import sys\n\ndef main():\n    doubled = len(sys.argv) * 2\n    print(doubled)\n", got)
}

func TestApplyDiffInsertion(t *testing.T) {
	diffText := "--- a/example.py\n" +
		"+++ b/example.py\n" +
		"@@ -1,1 +1,2 @@\n" +
		" import sys\n" +
		"+import os\n"

	got, err := ApplyDiff(applyOriginal, diffText)
	require.NoError(t, err)
	assert.Equal(t, "import sys\nimport os\n\ndef main():\n    print(len(sys.argv) * 2)\n", got)
}

func TestApplyDiffContextMismatch(t *testing.T) {
	diffText := "--- a/example.py\n" +
		"+++ b/example.py\n" +
		"@@ -1,1 +1,2 @@\n" +
		" import json\n" +
		"+import os\n"

	_, err := ApplyDiff(applyOriginal, diffText)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatch")
}

func TestApplyDiffDeletedLineMismatch(t *testing.T) {
	diffText := "--- a/example.py\n" +
		"+++ b/example.py\n" +
		"@@ -1,1 +1,1 @@\n" +
		"-import json\n" +
		"+import os\n"

	_, err := ApplyDiff(applyOriginal, diffText)
	assert.Error(t, err)
}

func TestApplyDiffUnparseable(t *testing.T) {
	_, err := ApplyDiff(applyOriginal, "this is not a diff")
	assert.Error(t, err)
}

func TestEditsFromDiffRanges(t *testing.T) {
	diffText := "--- a/example.py\n" +
		"+++ b/example.py\n" +
		"@@ -3,2 +3,3 @@\n" +
		" def main():\n" +
		"-    print(len(sys.argv) * 2)\n" +
		"+    doubled = len(sys.argv) * 2\n" +
		"+    print(doubled)\n"

	edits, err := EditsFromDiff(applyOriginal, diffText)
	require.NoError(t, err)
	require.Len(t, edits, 1)
	assert.Equal(t, 2, edits[0].StartLine)
	assert.Equal(t, 4, edits[0].EndLine)
	assert.Equal(t, []string{"def main():", "    doubled = len(sys.argv) * 2", "    print(doubled)"}, edits[0].Lines)
}

func TestApplyEditsAtomicity(t *testing.T) {
	edits := []Edit{
		{StartLine: 0, EndLine: 1, Lines: []string{"import json"}},
		{StartLine: 0, EndLine: 2, Lines: []string{"overlap"}},
	}
	_, err := ApplyEdits(applyOriginal, edits)
	assert.Error(t, err)
}
