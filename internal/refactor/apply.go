package refactor

import (
	"fmt"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// Edit is one line-range replacement derived from a diff hunk. StartLine is
// 0-based and EndLine exclusive, against the original document.
type Edit struct {
	StartLine int
	EndLine   int
	Lines     []string
}

// EditsFromDiff translates a unified diff into an ordered list of
// line-range replacements against the original document. Context and
// deleted lines are verified against the original; a mismatch rejects the
// whole diff so a stale patch is never half-applied.
func EditsFromDiff(original, diffText string) ([]Edit, error) {
	fileDiff, err := diff.ParseFileDiff([]byte(diffText))
	if err != nil {
		return nil, fmt.Errorf("failed to parse diff: %w", err)
	}

	originalLines := splitLines(original)
	var edits []Edit

	for _, hunk := range fileDiff.Hunks {
		edit := Edit{
			StartLine: int(hunk.OrigStartLine) - 1,
			EndLine:   int(hunk.OrigStartLine) - 1 + int(hunk.OrigLines),
		}
		if hunk.OrigLines == 0 {
			// A pure insertion anchors after the stated line.
			edit.StartLine = int(hunk.OrigStartLine)
			edit.EndLine = edit.StartLine
		}
		if edit.StartLine < 0 || edit.EndLine > len(originalLines) {
			return nil, fmt.Errorf("hunk range %d-%d is outside the document", edit.StartLine+1, edit.EndLine)
		}

		origCursor := edit.StartLine
		body := strings.Split(strings.TrimSuffix(string(hunk.Body), "\n"), "\n")
		for _, bodyLine := range body {
			if bodyLine == "" {
				// An empty body line stands for an empty context line.
				bodyLine = " "
			}
			marker, content := bodyLine[0], bodyLine[1:]
			switch marker {
			case ' ':
				if origCursor >= len(originalLines) || originalLines[origCursor] != content {
					return nil, fmt.Errorf("context mismatch at line %d", origCursor+1)
				}
				edit.Lines = append(edit.Lines, content)
				origCursor++
			case '-':
				if origCursor >= len(originalLines) || originalLines[origCursor] != content {
					return nil, fmt.Errorf("deleted line mismatch at line %d", origCursor+1)
				}
				origCursor++
			case '+':
				edit.Lines = append(edit.Lines, content)
			case '\\':
				// "\ No newline at end of file" applies to the previous
				// line; nothing to verify here.
			default:
				return nil, fmt.Errorf("unrecognized diff line %q", bodyLine)
			}
		}
		if origCursor != edit.EndLine {
			return nil, fmt.Errorf("hunk consumed %d original lines, header declares %d", origCursor-edit.StartLine, edit.EndLine-edit.StartLine)
		}
		edits = append(edits, edit)
	}

	return edits, nil
}

// ApplyEdits applies ordered non-overlapping edits to the original document
// and returns the new content. It either fully succeeds or leaves the
// caller's document untouched; there is no partial application.
func ApplyEdits(original string, edits []Edit) (string, error) {
	originalLines := splitLines(original)
	var result []string
	cursor := 0

	for _, edit := range edits {
		if edit.StartLine < cursor {
			return "", fmt.Errorf("overlapping edit at line %d", edit.StartLine+1)
		}
		if edit.EndLine > len(originalLines) {
			return "", fmt.Errorf("edit range %d-%d is outside the document", edit.StartLine+1, edit.EndLine)
		}
		result = append(result, originalLines[cursor:edit.StartLine]...)
		result = append(result, edit.Lines...)
		cursor = edit.EndLine
	}
	result = append(result, originalLines[cursor:]...)

	joined := strings.Join(result, "\n")
	if strings.HasSuffix(original, "\n") && !strings.HasSuffix(joined, "\n") {
		joined += "\n"
	}
	return joined, nil
}

// ApplyDiff is the one-shot convenience: translate the diff and apply it.
func ApplyDiff(original, diffText string) (string, error) {
	edits, err := EditsFromDiff(original, diffText)
	if err != nil {
		return "", err
	}
	return ApplyEdits(original, edits)
}

// splitLines breaks a document into lines without terminators. A trailing
// newline does not produce a phantom empty final line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
