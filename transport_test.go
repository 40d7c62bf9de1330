package icat

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectMode(t *testing.T) {
	tests := []struct {
		term string
		want Mode
	}{
		{term: "tmux-256color", want: ModeMultiplexer},
		{term: "tmux", want: ModeMultiplexer},
		{term: "screen", want: ModeMultiplexer},
		{term: "screen.xterm-256color", want: ModeMultiplexer},
		{term: "xterm-256color", want: ModePlain},
		{term: "xterm-tmux", want: ModePlain},
		{term: "TMUX", want: ModePlain},
		{term: "", want: ModePlain},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectMode(tt.term))
		})
	}
}

func TestFrameDelimiters(t *testing.T) {
	tests := []struct {
		mode  Mode
		open  string
		close string
	}{
		{mode: ModePlain, open: "\x1b]", close: "\x07"},
		{mode: ModeMultiplexer, open: "\x1bPtmux;\x1b\x1b]", close: "\x1b\x1b\\\x1b\\"},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			var buf bytes.Buffer
			tr := NewTransport(&buf, tt.mode)
			require.NoError(t, tr.OpenFrame())
			require.NoError(t, tr.Write("1337;FileEnd"))
			require.NoError(t, tr.CloseFrame())
			require.NoError(t, tr.Flush())
			assert.Equal(t, tt.open+"1337;FileEnd"+tt.close, buf.String())
		})
	}
}

func TestOpenTransportFallsBackToStdout(t *testing.T) {
	tests := []struct {
		name     string
		resolver TTYResolver
	}{
		{
			name:     "no controlling terminal",
			resolver: func() (string, bool) { return "", false },
		},
		{
			name:     "open fails",
			resolver: func() (string, bool) { return filepath.Join(t.TempDir(), "missing", "tty"), true },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tr := OpenTransport(context.Background(), TransportConfig{
				Term:     "xterm-256color",
				Stdout:   &buf,
				Resolver: tt.resolver,
			})
			assert.Equal(t, TargetStdout, tr.Target())
			assert.Equal(t, ModePlain, tr.Mode())

			require.NoError(t, tr.Write("hello"))
			require.NoError(t, tr.Close())
			assert.Equal(t, "hello", buf.String())
		})
	}
}

func TestOpenTransportUsesTTY(t *testing.T) {
	dev := filepath.Join(t.TempDir(), "tty")
	require.NoError(t, os.WriteFile(dev, nil, 0o600))

	var stdout bytes.Buffer
	tr := OpenTransport(context.Background(), TransportConfig{
		Term:     "tmux-256color",
		Stdout:   &stdout,
		Resolver: func() (string, bool) { return dev, true },
	})
	defer tr.Close()

	assert.Equal(t, TargetTTY, tr.Target())
	assert.Equal(t, ModeMultiplexer, tr.Mode())

	require.NoError(t, tr.OpenFrame())

	// written through without an explicit Flush
	got, err := os.ReadFile(dev)
	require.NoError(t, err)
	assert.Equal(t, tmuxOSCStart, string(got))
	assert.Empty(t, stdout.String())
}

func TestOpenTransportForceFlags(t *testing.T) {
	dev := filepath.Join(t.TempDir(), "tty")
	require.NoError(t, os.WriteFile(dev, nil, 0o600))

	var stdout bytes.Buffer
	tr := OpenTransport(context.Background(), TransportConfig{
		Term:             "xterm-256color",
		ForceMultiplexer: true,
		ForceStdout:      true,
		Stdout:           &stdout,
		Resolver:         func() (string, bool) { return dev, true },
	})
	assert.Equal(t, TargetStdout, tr.Target())
	assert.Equal(t, ModeMultiplexer, tr.Mode())
	assert.False(t, tr.PassthroughEnabled())

	require.NoError(t, tr.CloseFrame())
	require.NoError(t, tr.Close())
	assert.Equal(t, tmuxOSCEnd, stdout.String())
}
