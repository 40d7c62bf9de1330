package icat

import (
	"context"
	"os/exec"
	"strings"
)

// Mode selects how escape sequences are framed on the wire.
type Mode int

const (
	// ModePlain writes bare OSC sequences.
	ModePlain Mode = iota
	// ModeMultiplexer wraps every OSC sequence in a DCS passthrough so that
	// tmux or GNU screen forwards it to the outer terminal.
	ModeMultiplexer
)

func (m Mode) String() string {
	if m == ModeMultiplexer {
		return "multiplexer"
	}
	return "plain"
}

const (
	oscStart = "\x1b]"
	oscEnd   = "\a"

	// tmux passthrough format: \ePtmux;\e{sequence with ESC doubled}\e\\
	tmuxOSCStart = "\x1bPtmux;\x1b\x1b]"
	tmuxOSCEnd   = "\x1b\x1b\\\x1b\\"
)

// DetectMode derives the framing mode from a $TERM value.
func DetectMode(term string) Mode {
	if strings.HasPrefix(term, "screen") || strings.HasPrefix(term, "tmux") {
		return ModeMultiplexer
	}
	return ModePlain
}

// delimiters returns the opening and closing bytes of one frame.
func (m Mode) delimiters() (start, end string) {
	if m == ModeMultiplexer {
		return tmuxOSCStart, tmuxOSCEnd
	}
	return oscStart, oscEnd
}

// enableTmuxPassthrough turns on allow-passthrough for the current pane,
// required by tmux 3.3+ to forward graphics sequences.
func enableTmuxPassthrough(ctx context.Context) bool {
	// -p flag sets the option for the current pane only
	cmd := exec.CommandContext(ctx, "tmux", "set", "-p", "allow-passthrough", "on")

	// silence outputs
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	return cmd.Run() == nil
}
