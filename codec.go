package icat

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Codec converts between raw bytes and standard, padded base64 text.
type Codec interface {
	// Name identifies the strategy in logs.
	Name() string
	// Available reports whether the strategy can run on this system.
	Available() bool
	Encode(data []byte) (string, error)
	Decode(text string) ([]byte, error)
}

// DefaultCodecs returns the codec strategies in order of preference.
func DefaultCodecs() []Codec {
	return []Codec{StdCodec{}, &ExecCodec{}}
}

// SelectCodec returns the first available candidate.
func SelectCodec(candidates ...Codec) (Codec, error) {
	var names []string
	for _, c := range candidates {
		if c.Available() {
			return c, nil
		}
		names = append(names, c.Name())
	}
	return nil, fmt.Errorf("%w: no base64 codec available (tried %s)", ErrMissingDependency, strings.Join(names, ", "))
}

// Base64 encoder pool to reuse encoding buffers
var base64EncoderPool = sync.Pool{
	New: func() any {
		buf := make([]byte, 0, 4096)
		return &buf
	},
}

// StdCodec encodes in-process with encoding/base64.
type StdCodec struct{}

func (StdCodec) Name() string    { return "encoding/base64" }
func (StdCodec) Available() bool { return true }

// Encode provides base64 encoding with buffer reuse.
func (StdCodec) Encode(data []byte) (string, error) {
	bufPtr := base64EncoderPool.Get().(*[]byte)
	defer base64EncoderPool.Put(bufPtr)

	encodedLen := base64.StdEncoding.EncodedLen(len(data))
	if cap(*bufPtr) < encodedLen {
		*bufPtr = make([]byte, encodedLen)
	} else {
		*bufPtr = (*bufPtr)[:encodedLen]
	}

	base64.StdEncoding.Encode(*bufPtr, data)

	// Return as string (this copies, but avoids multiple allocations)
	return string(*bufPtr), nil
}

func (StdCodec) Decode(text string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(text)
}

// ExecCodec shells out to an external base64 tool, staging its input in a
// temporary file that is removed before each call returns. The file is fed
// on stdin and the decode flag is probed, since GNU takes -d while older
// BSD and macOS builds only take -D.
type ExecCodec struct {
	// Path of the tool; "base64" looked up in $PATH when empty.
	Path string
	// Timeout bounds a single invocation; 30s when zero.
	Timeout time.Duration

	probe      sync.Once
	decodeFlag string
}

// decodeFlags are tried in order against a known input.
var decodeFlags = []string{"-d", "-D", "--decode"}

func (c *ExecCodec) Name() string { return "exec:" + c.tool() }

// Available reports whether the tool exists and accepts one of the known
// decode flags.
func (c *ExecCodec) Available() bool {
	if _, err := exec.LookPath(c.tool()); err != nil {
		return false
	}
	return c.flag() != ""
}

func (c *ExecCodec) flag() string {
	c.probe.Do(func() {
		for _, f := range decodeFlags {
			out, err := c.run([]byte("QQ=="), f)
			if err == nil && strings.TrimSpace(string(out)) == "A" {
				c.decodeFlag = f
				return
			}
		}
	})
	return c.decodeFlag
}

func (c *ExecCodec) Encode(data []byte) (string, error) {
	out, err := c.run(data)
	if err != nil {
		return "", err
	}
	// GNU wraps its output at 76 columns
	return strings.Join(strings.Fields(string(out)), ""), nil
}

func (c *ExecCodec) Decode(text string) ([]byte, error) {
	f := c.flag()
	if f == "" {
		return nil, fmt.Errorf("%w: %s has no usable decode flag", ErrMissingDependency, c.tool())
	}
	return c.run([]byte(text), f)
}

func (c *ExecCodec) tool() string {
	if c.Path != "" {
		return c.Path
	}
	return "base64"
}

func (c *ExecCodec) run(input []byte, args ...string) ([]byte, error) {
	f, err := os.CreateTemp("", "icat-*.b64")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	if _, err := f.Write(input); err != nil {
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind temp file: %w", err)
	}

	timeout := c.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.tool(), args...)
	cmd.Stdin = f
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %w: %s", c.tool(), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// Payload is the base64 text of an image together with its decoded length,
// which the protocol sends in the size= field.
type Payload struct {
	Text string
	Size int
}

// NewPayload encodes data with codec. Size is taken from decoding the text
// back; it is only estimated from the text when that fails.
func NewPayload(codec Codec, data []byte) (Payload, error) {
	text, err := codec.Encode(data)
	if err != nil {
		return Payload{}, fmt.Errorf("failed to encode image: %w", err)
	}
	return Payload{Text: text, Size: decodedSize(codec, text)}, nil
}

func decodedSize(codec Codec, text string) int {
	if raw, err := codec.Decode(text); err == nil {
		return len(raw)
	}
	return estimateDecodedLen(text)
}

// estimateDecodedLen computes the decoded length from padded base64 text.
func estimateDecodedLen(text string) int {
	n := len(text) / 4 * 3
	switch {
	case strings.HasSuffix(text, "=="):
		n -= 2
	case strings.HasSuffix(text, "="):
		n--
	}
	return max(n, 0)
}
