package icat

import (
	"fmt"
	"regexp"
)

// SizeSpec is a width or height as understood by the inline image protocol:
// "auto", N (character cells), Npx (pixels) or N% (percent of the session).
type SizeSpec string

// SizeAuto lets the terminal pick the dimension from the image itself.
const SizeAuto SizeSpec = "auto"

var sizeSpecRe = regexp.MustCompile(`^(auto|[0-9]+(px|%)?)$`)

// ParseSizeSpec validates s. The empty string means "not set" and is accepted.
func ParseSizeSpec(s string) (SizeSpec, error) {
	if s == "" {
		return "", nil
	}
	if !sizeSpecRe.MatchString(s) {
		return "", fmt.Errorf("%w: %q (want N, Npx, N%% or auto)", ErrInvalidSizeSpec, s)
	}
	return SizeSpec(s), nil
}

// IsSet reports whether the size was given.
func (s SizeSpec) IsSet() bool {
	return s != ""
}

// AspectRatio is the tri-state preserveAspectRatio directive.
type AspectRatio int

const (
	// AspectUnset leaves the field out so the terminal uses its default.
	AspectUnset AspectRatio = iota
	// AspectStretch sends preserveAspectRatio=0.
	AspectStretch
	// AspectPreserve sends preserveAspectRatio=1.
	AspectPreserve
)

func (a AspectRatio) String() string {
	switch a {
	case AspectStretch:
		return "stretch"
	case AspectPreserve:
		return "preserve"
	default:
		return "unset"
	}
}

// DisplayDirectives controls how a single image is presented by the terminal.
// The zero value is a non-inline, multipart transfer with no optional fields.
type DisplayDirectives struct {
	Inline              bool
	Filename            string
	PrintFilename       bool
	Width               SizeSpec
	Height              SizeSpec
	PreserveAspectRatio AspectRatio
	Type                string
	Legacy              bool
}

// WithFilename returns a copy of d naming the image.
func (d DisplayDirectives) WithFilename(name string) DisplayDirectives {
	d.Filename = name
	return d
}
