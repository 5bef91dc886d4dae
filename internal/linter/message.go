package linter

import (
	"strings"

	"github.com/sourcegraph/go-lsp"
)

// LintMessage is one diagnostic finding parsed from a linter's output.
// Messages are created per parsed line and discarded once surfaced; they are
// never persisted.
type LintMessage struct {
	Line     int    // 1-based source line
	Column   int    // 0 when the tool reported no usable column
	Code     string // Tool-specific rule identifier, e.g. E501
	Message  string // Free-text description
	Type     string // Severity category as reported by the tool
	Provider string // Name of the linter that produced the finding
	File     string // Set only for tools that report cross-file diagnostics
}

// Severity maps the reported type to an editor severity. The overrides table
// (from per-linter config) wins over the built-in mapping; anything
// unrecognized is reported as Information.
func (m LintMessage) Severity(overrides map[string]string) lsp.DiagnosticSeverity {
	category := strings.ToLower(m.Type)
	if overrides != nil {
		if mapped, ok := overrides[category]; ok {
			category = strings.ToLower(mapped)
		}
	}

	switch category {
	case "error", "fatal", "e", "f":
		return lsp.Error
	case "warning", "w":
		return lsp.Warning
	case "hint", "h":
		return lsp.Hint
	default:
		return lsp.Information
	}
}

// Diagnostic converts the message to an LSP diagnostic. Positions are
// 0-indexed on the wire while linters report 1-indexed lines.
func (m LintMessage) Diagnostic(overrides map[string]string) lsp.Diagnostic {
	line := m.Line - 1
	if line < 0 {
		line = 0
	}
	return lsp.Diagnostic{
		Range: lsp.Range{
			Start: lsp.Position{Line: line, Character: m.Column},
			End:   lsp.Position{Line: line, Character: m.Column},
		},
		Severity: m.Severity(overrides),
		Code:     m.Code,
		Source:   m.Provider,
		Message:  m.Message,
	}
}
