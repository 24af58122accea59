package ui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatAuto, false},
		{"auto", FormatAuto, false},
		{"TERM", FormatTerminal, false},
		{"plain", FormatText, false},
		{"json", FormatJSON, false},
		{"pdf", FormatAuto, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.in != "" {
				again, err := ParseFormat(got.String())
				require.NoError(t, err)
				assert.Equal(t, got, again)
			}
		})
	}
}

func TestDetectFormat_NonTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.False(t, IsTerminal(f))
	assert.Equal(t, FormatText, DetectFormat(f))
	assert.Equal(t, FormatText, Resolve(FormatAuto, f))
	assert.Equal(t, FormatJSON, Resolve(FormatJSON, f))
}

func TestDetectFormat_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, FormatText, DetectFormat(os.Stdout))
}
