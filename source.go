package icat

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const userAgent = "icat (https://github.com/vito-c/nvim-icat)"

// MaxURLSize caps the body read from a URLSource.
const MaxURLSize = 256 << 20

// Source yields the raw bytes of one image.
type Source interface {
	// Name is the filename or URL shown to the user; empty for stdin.
	Name() string
	Read(ctx context.Context) ([]byte, error)
}

// ParseSource returns a URLSource for http(s) arguments and a FileSource
// otherwise.
func ParseSource(arg string) Source {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return NewURLSource(arg, nil)
	}
	return FileSource(arg)
}

// FileSource reads an image from a local path.
type FileSource string

func (s FileSource) Name() string { return string(s) }

func (s FileSource) Read(ctx context.Context) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: path cannot be empty", ErrSourceUnavailable)
	}
	data, err := readContext(ctx, func() ([]byte, error) { return os.ReadFile(string(s)) })
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open file: %w", ErrSourceUnavailable, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrSourceUnavailable, s)
	}
	return data, nil
}

// URLSource fetches an image over HTTP.
type URLSource struct {
	url    string
	client *http.Client
	limit  int64
}

// NewURLSource returns a source for url. A nil client gets a 30s timeout.
func NewURLSource(url string, client *http.Client) *URLSource {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &URLSource{url: url, client: client, limit: MaxURLSize}
}

func (s *URLSource) Name() string { return s.url }

func (s *URLSource) Read(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrSourceUnavailable, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: execute request: %w", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrSourceUnavailable, s.url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %w", ErrSourceUnavailable, err)
	}
	if int64(len(data)) > s.limit {
		return nil, fmt.Errorf("%w: %s is larger than %s", ErrSourceUnavailable, s.url, humanize.IBytes(uint64(s.limit)))
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s returned an empty body", ErrSourceUnavailable, s.url)
	}
	return data, nil
}

// ReaderSource reads an image from an io.Reader such as stdin.
type ReaderSource struct {
	name string
	r    io.Reader
}

// From returns a source reading all of r.
func From(name string, r io.Reader) *ReaderSource {
	return &ReaderSource{name: name, r: r}
}

func (s *ReaderSource) Name() string { return s.name }

func (s *ReaderSource) Read(ctx context.Context) ([]byte, error) {
	if s.r == nil {
		return nil, fmt.Errorf("%w: no reader configured", ErrSourceUnavailable)
	}
	data, err := readContext(ctx, func() ([]byte, error) { return io.ReadAll(s.r) })
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read: %w", ErrSourceUnavailable, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrSourceUnavailable)
	}
	return data, nil
}

// readContext runs read until it returns or ctx is done. A blocked read
// (a FIFO with no writer, a stalled pipe) cannot be interrupted, so it is
// abandoned and left to finish on its own.
func readContext(ctx context.Context, read func() ([]byte, error)) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := read()
		done <- result{data, err}
	}()
	select {
	case r := <-done:
		return r.data, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ImageInfo describes decoded image headers.
type ImageInfo struct {
	Format string
	Width  int
	Height int
}

func (i ImageInfo) String() string {
	return fmt.Sprintf("%s %dx%d", i.Format, i.Width, i.Height)
}

// Describe reads the image header of data. The terminal decodes the image
// itself, so callers treat a failure as informational only.
func Describe(data []byte) (ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, fmt.Errorf("failed to decode image config: %w", err)
	}
	return ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}
