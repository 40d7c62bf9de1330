package icat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInlineImagesSupported(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		want    bool
	}{
		{name: "iTerm2", envVars: map[string]string{"TERM_PROGRAM": "iTerm.app"}, want: true},
		{name: "WezTerm", envVars: map[string]string{"TERM_PROGRAM": "WezTerm"}, want: true},
		{name: "VS Code", envVars: map[string]string{"TERM_PROGRAM": "vscode", "TERM_PROGRAM_VERSION": "1.90.0"}, want: true},
		{name: "VS Code without version", envVars: map[string]string{"TERM_PROGRAM": "vscode"}, want: false},
		{name: "iTerm2 over ssh", envVars: map[string]string{"LC_TERMINAL": "iTerm2"}, want: true},
		{name: "iTerm2 session", envVars: map[string]string{"ITERM_SESSION_ID": "w0t0p0:1234"}, want: true},
		{name: "mintty", envVars: map[string]string{"TERM": "mintty"}, want: true},
		{name: "Apple Terminal", envVars: map[string]string{"TERM_PROGRAM": "Apple_Terminal"}, want: false},
		{name: "plain xterm", envVars: map[string]string{"TERM": "xterm-256color"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getenv := func(key string) string { return tt.envVars[key] }
			assert.Equal(t, tt.want, inlineImagesSupported(getenv))
		})
	}
}

func TestInspect(t *testing.T) {
	info := Inspect(TransportConfig{
		Term:     "screen-256color",
		Resolver: func() (string, bool) { return "/dev/pts/9", true },
	})
	assert.Equal(t, ModeMultiplexer, info.Mode)
	assert.Equal(t, TargetTTY, info.Target)
	assert.Equal(t, "/dev/pts/9", info.TTY)
	assert.Equal(t, "screen-256color", info.Term)

	info = Inspect(TransportConfig{
		Term:        "xterm-256color",
		ForceStdout: true,
		Resolver:    func() (string, bool) { return "/dev/pts/9", true },
	})
	assert.Equal(t, ModePlain, info.Mode)
	assert.Equal(t, TargetStdout, info.Target)
	assert.Empty(t, info.TTY)
}
