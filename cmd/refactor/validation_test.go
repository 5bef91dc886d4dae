package refactor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0644))
	return path
}

func TestValidateRefactorArgs(t *testing.T) {
	target := testFile(t)

	tests := []struct {
		name           string
		options        RunOptionsRefactor
		needsSelection bool
		wantErr        string
	}{
		{
			name:    "valid add-import",
			options: RunOptionsRefactor{File: target, Name: "os"},
		},
		{
			name:           "valid extract",
			options:        RunOptionsRefactor{File: target, Name: "total", StartLine: 2, StartChar: 4, EndLine: 2, EndChar: 20},
			needsSelection: true,
		},
		{
			name:           "valid multi line extract",
			options:        RunOptionsRefactor{File: target, Name: "helper", StartLine: 2, StartChar: 8, EndLine: 4, EndChar: 0},
			needsSelection: true,
		},
		{
			name:    "missing file flag",
			options: RunOptionsRefactor{Name: "os"},
			wantErr: "'file' flag",
		},
		{
			name:    "nonexistent file",
			options: RunOptionsRefactor{File: filepath.Join(t.TempDir(), "absent.py"), Name: "os"},
			wantErr: "failed to validate file",
		},
		{
			name:    "missing name flag",
			options: RunOptionsRefactor{File: target},
			wantErr: "'name' flag",
		},
		{
			name:           "negative selection",
			options:        RunOptionsRefactor{File: target, Name: "x", StartLine: -1, EndLine: 2, EndChar: 4},
			needsSelection: true,
			wantErr:        "must not be negative",
		},
		{
			name:           "end before start",
			options:        RunOptionsRefactor{File: target, Name: "x", StartLine: 5, EndLine: 2, EndChar: 4},
			needsSelection: true,
			wantErr:        "before start line",
		},
		{
			name:           "empty selection",
			options:        RunOptionsRefactor{File: target, Name: "x", StartLine: 2, StartChar: 4, EndLine: 2, EndChar: 4},
			needsSelection: true,
			wantErr:        "selection is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRefactorArgs(&tt.options, tt.needsSelection)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSelectionRange(t *testing.T) {
	options := RunOptionsRefactor{StartLine: 1, StartChar: 2, EndLine: 3, EndChar: 4}
	r := selectionRange(&options)
	assert.Equal(t, 1, r.Start.Line)
	assert.Equal(t, 2, r.Start.Character)
	assert.Equal(t, 3, r.End.Line)
	assert.Equal(t, 4, r.End.Character)
}
