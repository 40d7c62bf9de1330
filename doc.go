/*
Package icat displays images inline in terminal emulators that implement the
iTerm2 inline images protocol (OSC 1337), such as iTerm2, WezTerm, mintty and
VS Code.

An image travels as base64 text inside escape sequences. Two wire variants are
supported:

  - Multipart (default): a MultipartFile header frame, one FilePart frame per
    200 base64 characters, and a closing FileEnd frame. Small frames keep
    terminals from choking on very long sequences.
  - Legacy: a single File frame carrying the header and the whole payload.

When $TERM starts with "screen" or "tmux" every frame is wrapped in a DCS
passthrough so the multiplexer forwards it to the outer terminal.

Basic Usage:

	codec, err := icat.SelectCodec(icat.DefaultCodecs()...)
	if err != nil {
	    log.Fatal(err)
	}

	t := icat.OpenTransport(ctx, icat.TransportConfig{Term: os.Getenv("TERM")})
	defer t.Close()

	data, err := icat.FileSource("image.png").Read(ctx)
	if err != nil {
	    log.Fatal(err)
	}

	payload, err := icat.NewPayload(codec, data)
	if err != nil {
	    log.Fatal(err)
	}

	enc := icat.NewEncoder(t, codec)
	err = enc.Encode(payload, icat.DisplayDirectives{
	    Inline:              true,
	    Filename:            "image.png",
	    Width:               "40",
	    PreserveAspectRatio: icat.AspectPreserve,
	})

The Transport writes to the controlling terminal when there is one and falls
back to standard output otherwise, so output can still be piped or captured.
*/
package icat
