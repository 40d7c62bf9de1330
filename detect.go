package icat

import (
	"os"
	"strings"
)

// InlineImagesSupported checks the environment for a terminal known to
// implement the iTerm2 inline images protocol. It is a heuristic: unknown
// terminals may still render the image.
func InlineImagesSupported() bool {
	return inlineImagesSupported(os.Getenv)
}

func inlineImagesSupported(getenv func(string) string) bool {
	termProgram := getenv("TERM_PROGRAM")

	switch {
	case termProgram == "iTerm.app":
		return true
	case termProgram == "vscode" && getenv("TERM_PROGRAM_VERSION") != "":
		return true
	case termProgram == "WezTerm":
		return true
	case termProgram == "mintty":
		return true
	case termProgram == "rio":
		return true
	case termProgram == "WarpTerminal":
		return true
	case strings.Contains(strings.ToLower(getenv("LC_TERMINAL")), "iterm"):
		return true
	case getenv("ITERM_SESSION_ID") != "":
		return true
	case getenv("TERM") == "mintty":
		return true
	}

	return false
}

// Info summarises how images would be delivered in the current environment.
type Info struct {
	Term        string
	TermProgram string
	Mode        Mode
	Target      Target
	TTY         string
	Supported   bool
}

// Inspect reports the mode and target cfg would select without opening the
// terminal device.
func Inspect(cfg TransportConfig) Info {
	info := Info{
		Term:        cfg.Term,
		TermProgram: os.Getenv("TERM_PROGRAM"),
		Mode:        cfg.Mode(),
		Target:      TargetStdout,
		Supported:   InlineImagesSupported(),
	}
	if cfg.ForceStdout {
		return info
	}
	resolve := cfg.Resolver
	if resolve == nil {
		resolve = ResolveTTY
	}
	if path, ok := resolve(); ok {
		info.TTY = path
		info.Target = TargetTTY
	}
	return info
}
