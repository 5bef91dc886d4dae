package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pybridge-dev/pybridge/internal/linter"
)

func sampleFindings() map[string][]linter.LintMessage {
	return map[string][]linter.LintMessage{
		"pylint": {
			{Line: 12, Column: 4, Code: "E0602", Message: "undefined variable 'x'", Type: "error", Provider: "pylint"},
			{Line: 30, Column: 0, Code: "W0611", Message: "unused import os", Type: "warning", Provider: "pylint"},
		},
		"pycodestyle": {
			{Line: 5, Column: 79, Code: "E501", Message: "line too long", Type: "error", Provider: "pycodestyle"},
		},
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, FormatText, "app.py", sampleFindings(), nil)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "app.py:12:4: error E0602 undefined variable 'x' (pylint)")
	assert.Contains(t, out, "app.py:5:79: error E501 line too long (pycodestyle)")
	assert.Contains(t, out, "warning W0611")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, FormatJSON, "app.py", sampleFindings(), nil)
	require.NoError(t, err)

	var diagnostics []jsonDiagnostic
	require.NoError(t, json.Unmarshal(buf.Bytes(), &diagnostics))
	require.Len(t, diagnostics, 3)

	// Providers come out in stable sorted order.
	assert.Equal(t, "pycodestyle", diagnostics[0].Provider)
	assert.Equal(t, "pylint", diagnostics[1].Provider)
	assert.Equal(t, "E0602", diagnostics[1].Code)
	assert.Equal(t, "error", diagnostics[1].Severity)
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, FormatJSON, "app.py", nil, nil)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", buf.String())
}

func TestWriteSarif(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, FormatSarif, "app.py", sampleFindings(), nil)
	require.NoError(t, err)

	var parsed struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name string `json:"name"`
				} `json:"driver"`
			} `json:"tool"`
			Results []struct {
				RuleID string `json:"ruleId"`
				Level  string `json:"level"`
			} `json:"results"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, "2.1.0", parsed.Version)
	require.Len(t, parsed.Runs, 2)
	assert.Equal(t, "pycodestyle", parsed.Runs[0].Tool.Driver.Name)
	require.NotEmpty(t, parsed.Runs[0].Results)
	assert.Equal(t, "E501", parsed.Runs[0].Results[0].RuleID)
	assert.Equal(t, "error", parsed.Runs[0].Results[0].Level)
}

func TestWriteSeverityOverrides(t *testing.T) {
	var buf bytes.Buffer
	overrides := map[string]map[string]string{
		"pycodestyle": {"error": "warning"},
	}
	err := Write(&buf, FormatText, "app.py", sampleFindings(), overrides)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "app.py:5:79: warning E501")
}

func TestWriteUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, "xml", "app.py", sampleFindings(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "pycodestyle=1 pylint=2", Summary(sampleFindings()))
	assert.Equal(t, "no findings", Summary(nil))
}
