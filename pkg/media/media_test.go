package media_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/syllabus/pkg/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Smallest valid PNG header the sniffer recognises.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestEncodeDataURL(t *testing.T) {
	url := media.EncodeDataURL(pngHeader)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"), url)

	payload := strings.TrimPrefix(url, "data:image/png;base64,")
	decoded, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, decoded)
}

func TestEncodeDataURL_NoValidation(t *testing.T) {
	url := media.EncodeDataURL([]byte("plain text is accepted too"))
	assert.True(t, strings.HasPrefix(url, "data:text/plain;charset=utf-8;base64,"), url)
}

func TestIngest(t *testing.T) {
	ing := media.NewIngestor()
	ctx := context.Background()

	ch := ing.Ingest(ctx, media.NamedReader{Reader: bytes.NewReader(pngHeader), FileName: "a.png"})
	res := media.Await(ctx, ch)

	require.NoError(t, res.Err)
	assert.Equal(t, media.EncodeDataURL(pngHeader), res.DataURL)

	_, open := <-ch
	assert.False(t, open, "channel is closed after the result")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestIngest_ReadFailure(t *testing.T) {
	ctx := context.Background()
	res := media.Await(ctx, media.NewIngestor().Ingest(ctx, media.NamedReader{Reader: failingReader{}, FileName: "b.png"}))

	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "disk on fire")
	assert.Empty(t, res.DataURL)
}

type blockingReader struct{ release chan struct{} }

func (b blockingReader) Read(p []byte) (int, error) {
	<-b.release
	return 0, errors.New("closed")
}

func TestAwait_ContextCancelled(t *testing.T) {
	r := blockingReader{release: make(chan struct{})}
	defer close(r.release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res := media.Await(ctx, media.NewIngestor().Ingest(ctx, media.NamedReader{Reader: r, FileName: "slow.png"}))
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
}
