package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"
	"github.com/sourcegraph/go-lsp"

	"github.com/pybridge-dev/pybridge/internal/linter"
)

// Supported output formats.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatSarif = "sarif"
)

// Formats lists the accepted values for the format flag.
var Formats = []string{FormatText, FormatJSON, FormatSarif}

// jsonDiagnostic is the shape of a single finding in JSON output.
type jsonDiagnostic struct {
	Provider string `json:"provider"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// Write renders the findings grouped by provider in the requested format.
// The target path is used as the artifact location for findings that do not
// carry their own file.
func Write(w io.Writer, format, target string, findings map[string][]linter.LintMessage, severities map[string]map[string]string) error {
	switch format {
	case FormatText:
		return writeText(w, target, findings, severities)
	case FormatJSON:
		return writeJSON(w, target, findings, severities)
	case FormatSarif:
		return writeSarif(w, target, findings, severities)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// providers returns the provider names in stable order so output does not
// shuffle between runs.
func providers(findings map[string][]linter.LintMessage) []string {
	names := make([]string, 0, len(findings))
	for name := range findings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func messageFile(target string, message linter.LintMessage) string {
	if message.File != "" {
		return message.File
	}
	return target
}

func writeText(w io.Writer, target string, findings map[string][]linter.LintMessage, severities map[string]map[string]string) error {
	for _, provider := range providers(findings) {
		for _, message := range findings[provider] {
			level := severityName(message.Severity(severities[provider]))
			_, err := fmt.Fprintf(w, "%s:%d:%d: %s %s %s (%s)\n",
				messageFile(target, message), message.Line, message.Column,
				level, message.Code, message.Message, provider)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func writeJSON(w io.Writer, target string, findings map[string][]linter.LintMessage, severities map[string]map[string]string) error {
	diagnostics := []jsonDiagnostic{}
	for _, provider := range providers(findings) {
		for _, message := range findings[provider] {
			diagnostics = append(diagnostics, jsonDiagnostic{
				Provider: provider,
				File:     messageFile(target, message),
				Line:     message.Line,
				Column:   message.Column,
				Severity: severityName(message.Severity(severities[provider])),
				Code:     message.Code,
				Message:  message.Message,
			})
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(diagnostics)
}

func writeSarif(w io.Writer, target string, findings map[string][]linter.LintMessage, severities map[string]map[string]string) error {
	reportSarif, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("failed to create SARIF report: %w", err)
	}

	for _, provider := range providers(findings) {
		run := sarif.NewRunWithInformationURI(provider, "")
		for _, message := range findings[provider] {
			level := toSarifLevel(message.Severity(severities[provider]))
			rule := run.AddRule(message.Code).
				WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: level})

			location := sarif.NewLocation().WithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewArtifactLocation().WithUri(messageFile(target, message))).
					WithRegion(sarif.NewRegion().
						WithStartLine(message.Line).
						WithStartColumn(message.Column)),
			)

			result := sarif.NewRuleResult(rule.ID).
				WithMessage(sarif.NewTextMessage(message.Message)).
				WithLevel(level).
				WithLocations([]*sarif.Location{location})
			run.AddResult(result)
		}
		reportSarif.AddRun(run)
	}

	return reportSarif.PrettyWrite(w)
}

func severityName(severity lsp.DiagnosticSeverity) string {
	switch severity {
	case lsp.Error:
		return "error"
	case lsp.Warning:
		return "warning"
	case lsp.Hint:
		return "hint"
	default:
		return "information"
	}
}

func toSarifLevel(severity lsp.DiagnosticSeverity) string {
	switch severity {
	case lsp.Error:
		return "error"
	case lsp.Warning:
		return "warning"
	default:
		return "note"
	}
}

// Summary produces a one-line count per provider for logging.
func Summary(findings map[string][]linter.LintMessage) string {
	parts := make([]string, 0, len(findings))
	for _, provider := range providers(findings) {
		parts = append(parts, fmt.Sprintf("%s=%d", provider, len(findings[provider])))
	}
	if len(parts) == 0 {
		return "no findings"
	}
	return strings.Join(parts, " ")
}
