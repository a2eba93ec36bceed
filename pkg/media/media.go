// Package media turns selected image files into inline data URLs.
//
// Reads run in their own goroutine and report through a channel so the
// editing session is never blocked while a large file is consumed. No type
// or size validation is performed: whatever is read is embedded.
package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/syllabus/internal/logging"
	"github.com/gabriel-vasile/mimetype"
)

// File is a selected file. Name is used for logging only.
type File interface {
	io.Reader
	Name() string
}

// Result is the outcome of a single ingestion. Exactly one of DataURL and
// Err is set.
type Result struct {
	DataURL string
	Err     error
}

// Ingestor reads files and encodes them as data URLs.
type Ingestor struct {
	logger *slog.Logger
}

// Option configures the Ingestor.
type Option func(*Ingestor)

// WithLogger configures a logger for read failures.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Ingestor) {
		i.logger = logger
	}
}

// NewIngestor creates an Ingestor.
func NewIngestor(opts ...Option) *Ingestor {
	i := &Ingestor{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Ingest reads f in a new goroutine. The returned channel receives exactly
// one Result and is then closed. Cancelling ctx abandons the read; the
// result then carries ctx.Err().
func (i *Ingestor) Ingest(ctx context.Context, f File) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)

		data, err := io.ReadAll(f)
		if err != nil {
			i.logger.Warn("Failed to read media file", "file", f.Name(), "err", err)
			out <- Result{Err: fmt.Errorf("failed to read %s: %w", f.Name(), err)}
			return
		}
		if err := ctx.Err(); err != nil {
			out <- Result{Err: err}
			return
		}

		url := EncodeDataURL(data)
		i.logger.Debug("Media file encoded", "file", f.Name(), "bytes", len(data))
		out <- Result{DataURL: url}
	}()
	return out
}

// Await blocks until the ingestion finishes or ctx is done.
func Await(ctx context.Context, ch <-chan Result) Result {
	select {
	case r, ok := <-ch:
		if !ok {
			return Result{Err: io.ErrUnexpectedEOF}
		}
		return r
	case <-ctx.Done():
		return Result{Err: ctx.Err()}
	}
}

// EncodeDataURL returns data as "data:<mime>;base64,<payload>", the mime
// type being sniffed from the content.
func EncodeDataURL(data []byte) string {
	mime := strings.ReplaceAll(mimetype.Detect(data).String(), " ", "")

	var sb strings.Builder
	sb.Grow(len("data:;base64,") + len(mime) + base64.StdEncoding.EncodedLen(len(data)))
	sb.WriteString("data:")
	sb.WriteString(mime)
	sb.WriteString(";base64,")
	sb.WriteString(base64.StdEncoding.EncodeToString(data))
	return sb.String()
}

// NamedReader adapts an io.Reader with a name to File.
type NamedReader struct {
	io.Reader
	FileName string
}

// Name returns the file name.
func (n NamedReader) Name() string { return n.FileName }
