package cmd

import (
	"strconv"

	icat "github.com/vito-c/nvim-icat"
)

// aspectFlag is a boolean flag writing val into a shared tri-state. -r and
// -s share one destination, so whichever appears last on the command line
// wins.
type aspectFlag struct {
	dst *icat.AspectRatio
	val icat.AspectRatio
}

func (f *aspectFlag) String() string {
	if f.dst == nil {
		return "false"
	}
	return strconv.FormatBool(*f.dst == f.val)
}

func (f *aspectFlag) Set(s string) error {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	switch {
	case b:
		*f.dst = f.val
	case *f.dst == f.val:
		*f.dst = icat.AspectUnset
	}
	return nil
}

func (f *aspectFlag) Type() string {
	return "bool"
}
