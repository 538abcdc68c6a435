package runner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Plain", "cd /tmp", "cd /tmp"},
		{"Bracketed Paste", "\x1b[200~x ls -la\x1b[201~", "x ls -la"},
		{"Color Codes", "\x1b[31mgpt\x1b[0m hello", "gpt hello"},
		{"Cursor Key", "l\x1b[A", "l"},
		{"OSC Title With BEL", "\x1b]0;title\x07cfg", "cfg"},
		{"OSC Title With ST", "\x1b]2;t\x1b\\help", "help"},
		{"Two Byte Escape", "\x1bOPlog", "Plog"},
		{"Whitespace Controls Separate Tokens", "cd\t/tmp\r\n", "cd /tmp  "},
		{"Bell Removed", "l\x07s", "ls"},
		{"Trailing Escape", "help\x1b", "help"},
		{"Unterminated CSI", "help\x1b[12", "help"},
		{"Unicode Kept", "cd ~/música", "cd ~/música"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeInput(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeInput_TokensSurvive(t *testing.T) {
	got, err := SanitizeInput("\x1b[200~x\tgit\x1b[1m status\x1b[0m\x1b[201~")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "git", "status"}, strings.Fields(got))
}

func TestSanitizeInput_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"NUL Inside Argument", "x cat a\x00b", ErrNullByte},
		{"Invalid UTF-8", "cd \xbd\xb2", ErrInvalidUTF8},
		{"Too Large", strings.Repeat("a", DefaultMaxInputSize+1), ErrInputTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SanitizeInput(tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSanitizeInput_LimitFromEnv(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "8")

	_, err := SanitizeInput("help log")
	require.NoError(t, err)

	_, err = SanitizeInput("cfg gpt.model")
	assert.ErrorIs(t, err, ErrInputTooLarge)
}

func TestSanitizeInput_BadEnvFallsBack(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "-3")
	_, err := SanitizeInput(strings.Repeat("a", DefaultMaxInputSize))
	assert.NoError(t, err)
}
