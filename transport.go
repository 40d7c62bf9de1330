package icat

import (
	"bufio"
	"context"
	"io"
	"os"

	"golang.org/x/term"
)

// Target is where a Transport physically writes.
type Target int

const (
	// TargetStdout writes to the standard output stream (or any io.Writer).
	TargetStdout Target = iota
	// TargetTTY writes to the controlling terminal device, flushing every write.
	TargetTTY
)

func (t Target) String() string {
	if t == TargetTTY {
		return "tty"
	}
	return "stdout"
}

// ttyDevice is the controlling terminal on unix systems.
const ttyDevice = "/dev/tty"

// TTYResolver returns the path of the controlling terminal, if there is one.
type TTYResolver func() (string, bool)

// ResolveTTY reports the controlling terminal when any of the standard
// streams is attached to one.
func ResolveTTY() (string, bool) {
	for _, f := range []*os.File{os.Stdin, os.Stdout, os.Stderr} {
		if f != nil && term.IsTerminal(int(f.Fd())) {
			return ttyDevice, true
		}
	}
	return "", false
}

// TransportConfig holds everything needed to pick a Mode and a Target.
type TransportConfig struct {
	// Term is the value of $TERM.
	Term string
	// ForceMultiplexer wraps frames for tmux regardless of Term.
	ForceMultiplexer bool
	// AllowPassthrough runs `tmux set -p allow-passthrough on` once when in
	// multiplexer mode.
	AllowPassthrough bool
	// ForceStdout skips the controlling terminal entirely.
	ForceStdout bool
	// Stdout is the fallback writer; os.Stdout when nil.
	Stdout io.Writer
	// Resolver locates the controlling terminal; ResolveTTY when nil.
	Resolver TTYResolver
}

// Mode returns the framing mode the config selects.
func (c TransportConfig) Mode() Mode {
	if c.ForceMultiplexer {
		return ModeMultiplexer
	}
	return DetectMode(c.Term)
}

// Transport frames escape sequences and writes them to a single sink.
// Mode and Target are fixed for the lifetime of a Transport.
type Transport struct {
	mode   Mode
	target Target
	start  string
	end    string

	w   *bufio.Writer
	tty *os.File

	passthrough bool
}

// NewTransport returns a Transport writing to w with the given mode.
func NewTransport(w io.Writer, mode Mode) *Transport {
	start, end := mode.delimiters()
	return &Transport{
		mode:   mode,
		target: TargetStdout,
		start:  start,
		end:    end,
		w:      bufio.NewWriter(w),
	}
}

// OpenTransport selects the mode and target described by cfg. Failing to
// resolve or open the controlling terminal is not an error: the transport
// falls back to cfg.Stdout so output can still be piped.
func OpenTransport(ctx context.Context, cfg TransportConfig) *Transport {
	stdout := cfg.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	t := NewTransport(stdout, cfg.Mode())

	if !cfg.ForceStdout {
		resolve := cfg.Resolver
		if resolve == nil {
			resolve = ResolveTTY
		}
		if path, ok := resolve(); ok {
			if f, err := os.OpenFile(path, os.O_WRONLY, 0); err == nil {
				t.tty = f
				t.target = TargetTTY
				t.w = bufio.NewWriter(f)
			}
		}
	}

	if t.mode == ModeMultiplexer && cfg.AllowPassthrough {
		t.passthrough = enableTmuxPassthrough(ctx)
	}

	return t
}

// Mode returns the framing mode.
func (t *Transport) Mode() Mode { return t.mode }

// Target returns the sink kind.
func (t *Transport) Target() Target { return t.target }

// PassthroughEnabled reports whether tmux allow-passthrough was switched on.
func (t *Transport) PassthroughEnabled() bool { return t.passthrough }

// OpenFrame writes the OSC introducer, wrapped for the multiplexer if needed.
func (t *Transport) OpenFrame() error {
	return t.Write(t.start)
}

// CloseFrame writes the OSC terminator, wrapped for the multiplexer if needed.
func (t *Transport) CloseFrame() error {
	return t.Write(t.end)
}

// Write appends raw text to the sink. Writes to the TTY device are flushed
// immediately.
func (t *Transport) Write(s string) error {
	if _, err := t.w.WriteString(s); err != nil {
		return err
	}
	if t.target == TargetTTY {
		return t.w.Flush()
	}
	return nil
}

// Flush pushes any buffered bytes to the sink.
func (t *Transport) Flush() error {
	return t.w.Flush()
}

// Close flushes and releases the TTY device if one was opened.
func (t *Transport) Close() error {
	err := t.w.Flush()
	if t.tty != nil {
		if cerr := t.tty.Close(); err == nil {
			err = cerr
		}
		t.tty = nil
	}
	return err
}
