package refactor

import (
	"fmt"
	"strings"

	"github.com/sourcegraph/go-lsp"
)

// Offset converts a 0-based editor position to a byte offset into text.
func Offset(text string, pos lsp.Position) (int, error) {
	if pos.Line < 0 || pos.Character < 0 {
		return 0, fmt.Errorf("position %d:%d is negative", pos.Line, pos.Character)
	}

	lines := strings.SplitAfter(text, "\n")
	if pos.Line >= len(lines) {
		return 0, fmt.Errorf("line %d is beyond the end of the document", pos.Line)
	}

	offset := 0
	for i := 0; i < pos.Line; i++ {
		offset += len(lines[i])
	}
	if pos.Character > len(lines[pos.Line]) {
		return 0, fmt.Errorf("character %d is beyond the end of line %d", pos.Character, pos.Line)
	}
	return offset + pos.Character, nil
}

// WorkerOffset converts a position to the byte offset the helper's text
// model expects. The helper normalizes line endings to a single character
// internally, so for documents with two-character endings the raw offset is
// adjusted downward by one per line ending preceding the position.
func WorkerOffset(text string, pos lsp.Position) (int, error) {
	offset, err := Offset(text, pos)
	if err != nil {
		return 0, err
	}
	return offset - strings.Count(text[:offset], "\r\n"), nil
}
