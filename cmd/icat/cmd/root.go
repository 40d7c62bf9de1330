/*
Copyright © 2024 vito-c

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	clihander "github.com/apex/log/handlers/cli"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	icat "github.com/vito-c/nvim-icat"
	"github.com/vito-c/nvim-icat/internal/config"
)

func init() {
	log.SetHandler(clihander.Default)
}

type options struct {
	verbose bool
	detect  bool
	config  string

	legacy     bool
	print      bool
	urls       []string
	width      string
	height     string
	aspect     icat.AspectRatio
	fileType   string
	tmux       bool
	passthru   bool
	stdoutOnly bool

	// resolved in PreRunE
	directives icat.DisplayDirectives
	codec      icat.Codec
	codecs     []icat.Codec
}

// NewRootCmd returns the icat command.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{codecs: icat.DefaultCodecs()})
}

func newRootCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "icat [flags] [FILE|URL ...]",
		Short: "Display images inline in your terminal.",
		Long: `Display images inline using the iTerm2 inline images protocol.

Images are read from files, http(s) URLs, or stdin when no source is given.
Sizes are N (character cells), Npx (pixels), N% (percent of the session) or auto.`,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if o.verbose {
				log.SetLevel(log.DebugLevel)
			}
			return o.resolve(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&o.verbose, "verbose", "V", false, "Enable verbose logging")
	flags.BoolVar(&o.detect, "detect", false, "Print terminal and transport information and exit")
	flags.StringVar(&o.config, "config", "", "Config file (default "+config.DefaultPath()+")")
	flags.BoolVarP(&o.legacy, "legacy", "l", false, "Send each image as a single File= sequence")
	flags.BoolVarP(&o.print, "print", "p", false, "Print the filename or URL after each image")
	flags.StringArrayVarP(&o.urls, "url", "u", nil, "Fetch an image from URL (repeatable)")
	flags.StringVarP(&o.width, "width", "W", "", "Width: N, Npx, N% or auto")
	flags.StringVarP(&o.height, "height", "H", "", "Height: N, Npx, N% or auto")
	flags.VarP(&aspectFlag{dst: &o.aspect, val: icat.AspectPreserve}, "preserve-aspect-ratio", "r", "Preserve the aspect ratio when both width and height are given")
	flags.VarP(&aspectFlag{dst: &o.aspect, val: icat.AspectStretch}, "stretch", "s", "Stretch to the given width and height (opposite of -r)")
	flags.Lookup("preserve-aspect-ratio").NoOptDefVal = "true"
	flags.Lookup("stretch").NoOptDefVal = "true"
	flags.StringVarP(&o.fileType, "type", "t", "", "File type hint, a MIME type or extension")
	flags.BoolVar(&o.tmux, "tmux", false, "Force tmux passthrough framing")
	flags.BoolVar(&o.passthru, "allow-passthrough", false, "Enable tmux allow-passthrough for the current pane")
	flags.BoolVar(&o.stdoutOnly, "stdout", false, "Write to stdout instead of the terminal device")

	return cmd
}

// resolve merges the config file under the flags and validates everything
// that could fail before the first frame is written.
func (o *options) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(o.config)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("legacy") {
		o.legacy = cfg.Legacy
	}
	if !flags.Changed("print") {
		o.print = cfg.Print
	}
	if !flags.Changed("width") {
		o.width = cfg.Width
	}
	if !flags.Changed("height") {
		o.height = cfg.Height
	}
	if !flags.Changed("preserve-aspect-ratio") && !flags.Changed("stretch") && cfg.PreserveAspectRatio != nil {
		o.aspect = icat.AspectStretch
		if *cfg.PreserveAspectRatio {
			o.aspect = icat.AspectPreserve
		}
	}
	if !flags.Changed("type") {
		o.fileType = cfg.Type
	}
	if !flags.Changed("tmux") {
		o.tmux = cfg.Tmux
	}
	if !flags.Changed("allow-passthrough") {
		o.passthru = cfg.AllowPassthrough
	}
	if !flags.Changed("stdout") {
		o.stdoutOnly = cfg.Stdout
	}

	width, err := icat.ParseSizeSpec(o.width)
	if err != nil {
		return fmt.Errorf("--width: %w", err)
	}
	height, err := icat.ParseSizeSpec(o.height)
	if err != nil {
		return fmt.Errorf("--height: %w", err)
	}

	o.directives = icat.DisplayDirectives{
		Inline:              true,
		PrintFilename:       o.print,
		Width:               width,
		Height:              height,
		PreserveAspectRatio: o.aspect,
		Type:                o.fileType,
		Legacy:              o.legacy,
	}

	o.codec, err = icat.SelectCodec(o.codecs...)
	if err != nil {
		return err
	}
	log.WithField("codec", o.codec.Name()).Debug("Selected base64 codec")

	return nil
}

func (o *options) transportConfig(cmd *cobra.Command) icat.TransportConfig {
	return icat.TransportConfig{
		Term:             os.Getenv("TERM"),
		ForceMultiplexer: o.tmux,
		AllowPassthrough: o.passthru,
		ForceStdout:      o.stdoutOnly,
		Stdout:           cmd.OutOrStdout(),
	}
}

func (o *options) run(cmd *cobra.Command, args []string) error {
	if o.detect {
		printInfo(cmd.OutOrStdout(), icat.Inspect(o.transportConfig(cmd)))
		return nil
	}

	sources, err := o.sources(cmd, args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	t := icat.OpenTransport(ctx, o.transportConfig(cmd))
	defer t.Close()

	log.WithFields(log.Fields{
		"mode":        t.Mode(),
		"target":      t.Target(),
		"passthrough": t.PassthroughEnabled(),
	}).Debug("Opened transport")
	if !icat.InlineImagesSupported() {
		log.Debug("Terminal not recognised as supporting inline images, sending anyway")
	}

	enc := icat.NewEncoder(t, o.codec)

	shown := 0
	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}
		data, err := src.Read(ctx)
		if err != nil {
			log.WithError(err).WithField("source", src.Name()).Error("Failed to read image")
			continue
		}
		if err := o.show(enc, src.Name(), data); err != nil {
			return err
		}
		shown++
	}

	if shown == 0 {
		return icat.ErrNoImageProduced
	}
	return nil
}

func (o *options) show(enc *icat.Encoder, name string, data []byte) error {
	entry := log.WithFields(log.Fields{
		"source": name,
		"size":   humanize.Bytes(uint64(len(data))),
	})
	if info, err := icat.Describe(data); err == nil {
		entry = entry.WithField("image", info.String())
	}
	entry.Debug("Encoding image")

	payload, err := icat.NewPayload(o.codec, data)
	if err != nil {
		return err
	}

	return enc.Encode(payload, o.directives.WithFilename(name))
}

// sources lists positional arguments then --url values; with neither, a
// piped stdin is read.
func (o *options) sources(cmd *cobra.Command, args []string) ([]icat.Source, error) {
	var sources []icat.Source
	for _, arg := range args {
		sources = append(sources, icat.ParseSource(arg))
	}
	for _, u := range o.urls {
		sources = append(sources, icat.NewURLSource(u, nil))
	}
	if len(sources) > 0 {
		return sources, nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return nil, fmt.Errorf("%w: no file or URL given and stdin is a terminal", icat.ErrNoImageProduced)
	}
	return []icat.Source{icat.From("", in)}, nil
}

func printInfo(w io.Writer, info icat.Info) {
	fmt.Fprintf(w, "TERM:          %s\n", info.Term)
	fmt.Fprintf(w, "TERM_PROGRAM:  %s\n", info.TermProgram)
	fmt.Fprintf(w, "Mode:          %s\n", info.Mode)
	fmt.Fprintf(w, "Target:        %s\n", info.Target)
	if info.TTY != "" {
		fmt.Fprintf(w, "TTY:           %s\n", info.TTY)
	}
	fmt.Fprintf(w, "Inline images: %v\n", info.Supported)
}

// interruptContext is cancelled by the first SIGINT or SIGTERM, which also
// restores default signal handling so that a second one terminates a process
// blocked in a write.
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ctx, stop
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	ctx, stop := interruptContext(context.Background())
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		log.Error(err.Error())
		stop()
		os.Exit(1)
	}
}
