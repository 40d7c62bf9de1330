package icat

import (
	"fmt"
	"strings"
)

// FilePartSize is the number of base64 characters carried by each FilePart
// frame of a multipart transfer.
const FilePartSize = 200

// Encoder serialises images into the iTerm2 inline images protocol
// (OSC 1337) and writes them through a Transport.
//
// An Encoder is not safe for concurrent use: frames of two images written
// to the same Transport at once would interleave and corrupt both.
type Encoder struct {
	t     *Transport
	codec Codec
}

// NewEncoder returns an Encoder writing to t. The codec is used to encode the
// filename carried in the name= field.
func NewEncoder(t *Transport, codec Codec) *Encoder {
	return &Encoder{t: t, codec: codec}
}

// Encode writes one complete image transfer followed by a newline, and the
// filename when d.PrintFilename is set. It returns the first write error.
func (e *Encoder) Encode(p Payload, d DisplayDirectives) error {
	params, err := e.params(p, d)
	if err != nil {
		return err
	}

	w := &frameWriter{t: e.t}

	if d.Legacy {
		// Format: \033]1337;File=[parameters]:[base64 data]\007
		w.frame("1337;File=", params, ":", p.Text)
	} else {
		w.frame("1337;MultipartFile=", params)
		for i := 0; i < len(p.Text); i += FilePartSize {
			end := min(i+FilePartSize, len(p.Text))
			w.frame("1337;FilePart=", p.Text[i:end])
		}
		w.frame("1337;FileEnd")
	}

	w.write("\n")
	if d.PrintFilename && d.Filename != "" {
		w.write(d.Filename)
		w.write("\n")
	}

	if w.err != nil {
		return w.err
	}
	return e.t.Flush()
}

// params builds the key=value list shared by File= and MultipartFile=.
func (e *Encoder) params(p Payload, d DisplayDirectives) (string, error) {
	var params []string

	params = append(params, "inline="+boolParam(d.Inline))
	params = append(params, fmt.Sprintf("size=%d", p.Size))

	// the name may contain ';' so it travels base64 encoded
	if d.Filename != "" {
		name, err := e.codec.Encode([]byte(d.Filename))
		if err != nil {
			return "", fmt.Errorf("failed to encode filename: %w", err)
		}
		params = append(params, "name="+name)
	}
	if d.Width.IsSet() {
		params = append(params, "width="+string(d.Width))
	}
	if d.Height.IsSet() {
		params = append(params, "height="+string(d.Height))
	}
	if d.PreserveAspectRatio != AspectUnset {
		params = append(params, "preserveAspectRatio="+boolParam(d.PreserveAspectRatio == AspectPreserve))
	}
	if d.Type != "" {
		params = append(params, "type="+d.Type)
	}

	return strings.Join(params, ";"), nil
}

func boolParam(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// frameWriter keeps the first error so a transfer can be written without
// checking every call.
type frameWriter struct {
	t   *Transport
	err error
}

func (w *frameWriter) write(s string) {
	if w.err != nil {
		return
	}
	w.err = w.t.Write(s)
}

func (w *frameWriter) frame(parts ...string) {
	if w.err != nil {
		return
	}
	if w.err = w.t.OpenFrame(); w.err != nil {
		return
	}
	for _, p := range parts {
		w.write(p)
	}
	if w.err == nil {
		w.err = w.t.CloseFrame()
	}
}
