package lint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pybridge-dev/pybridge/internal/report"
	"github.com/pybridge-dev/pybridge/pkg/shared/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Linters: map[string]config.Linter{
			"pylint":      {Path: "pylint"},
			"pycodestyle": {Path: "pycodestyle"},
		},
	}
}

func testTarget(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0644))
	return path
}

func TestValidateLintArgs(t *testing.T) {
	target := testTarget(t)

	tests := []struct {
		name    string
		options RunOptionsLint
		args    []string
		wantErr string
	}{
		{
			name:    "valid defaults",
			options: RunOptionsLint{Format: report.FormatText, Threads: 1},
			args:    []string{target},
		},
		{
			name:    "valid explicit linters",
			options: RunOptionsLint{Linters: []string{"pylint"}, Format: report.FormatSarif, Threads: 3},
			args:    []string{target},
		},
		{
			name:    "no target",
			options: RunOptionsLint{Format: report.FormatText, Threads: 1},
			args:    nil,
			wantErr: "exactly one target",
		},
		{
			name:    "too many targets",
			options: RunOptionsLint{Format: report.FormatText, Threads: 1},
			args:    []string{target, target},
			wantErr: "exactly one target",
		},
		{
			name:    "missing target",
			options: RunOptionsLint{Format: report.FormatText, Threads: 1},
			args:    []string{filepath.Join(t.TempDir(), "absent.py")},
			wantErr: "failed to validate target",
		},
		{
			name:    "unknown format",
			options: RunOptionsLint{Format: "xml", Threads: 1},
			args:    []string{target},
			wantErr: "unknown format",
		},
		{
			name:    "bad thread count",
			options: RunOptionsLint{Format: report.FormatText, Threads: 0},
			args:    []string{target},
			wantErr: "positive integer",
		},
		{
			name:    "unconfigured linter",
			options: RunOptionsLint{Linters: []string{"mypy"}, Format: report.FormatText, Threads: 1},
			args:    []string{target},
			wantErr: "not configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateLintArgs(testConfig(), &tt.options, tt.args)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSelectLinters(t *testing.T) {
	cfg := testConfig()

	assert.Equal(t, []string{"pycodestyle", "pylint"}, selectLinters(cfg, nil))
	assert.Equal(t, []string{"pylint"}, selectLinters(cfg, []string{"pylint"}))
}
