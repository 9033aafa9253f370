package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	notePath := filepath.Join(dir, "lecture.txt")
	require.NoError(t, os.WriteFile(notePath, []byte("hello"), 0o600))

	tests := []struct {
		name   string
		source string
		want   Kind
	}{
		{"https url", "https://example.com/post", KindWeb},
		{"http url", "http://example.com", KindWeb},
		{"pdf path", "/tmp/slides.PDF", KindPDF},
		{"existing file", notePath, KindFile},
		{"missing file falls back to text", filepath.Join(dir, "nope.txt"), KindText},
		{"literal text", "Photosynthesis converts light into chemical energy.", KindText},
		{"multiline text", "line one\nline two", KindText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.source))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a b c", Normalize("  a\n\tb \n\n c  "))
	assert.Equal(t, "", Normalize(" \n\t "))
}

func TestIngestLiteralTextSingleChunk(t *testing.T) {
	in := NewIngester(NewRouter(nil, nil), 800000, 8000)

	res, err := in.Ingest(context.Background(), []string{"Neural   networks\nlearn\trepresentations."})
	require.NoError(t, err)

	require.Len(t, res.Documents, 1)
	assert.Equal(t, "Neural networks learn representations.", res.Documents[0].Content)
	assert.Equal(t, 0, res.Documents[0].Metadata["chunk_id"])
	assert.Equal(t, map[string]any{"num_chunks": 1}, res.Meta)
}

func TestIngestChunksAreOrderedAndAligned(t *testing.T) {
	in := NewIngester(NewRouter(nil, nil), 40, 5)
	text := strings.Repeat("gradient descent minimizes loss ", 20)

	res, err := in.Ingest(context.Background(), []string{text})
	require.NoError(t, err)

	require.Greater(t, len(res.Documents), 1)
	assert.Equal(t, len(res.Documents), res.Meta["num_chunks"])
	for i, d := range res.Documents {
		assert.Equal(t, i, d.Metadata["chunk_id"])
		assert.LessOrEqual(t, len(d.Content), 40)
	}
}

func TestIngestJoinsMultipleSources(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "part2.txt")
	require.NoError(t, os.WriteFile(p, []byte("second\npart"), 0o600))

	in := NewIngester(NewRouter(nil, nil, WithLocalFiles("")), 1000, 0)
	res, err := in.Ingest(context.Background(), []string{"first part", p})
	require.NoError(t, err)

	assert.Equal(t, "first part second part", res.Documents[0].Content)
	assert.Equal(t, "first part\n"+p, res.Source)
}

func TestRouterLocalFiles(t *testing.T) {
	dir := t.TempDir()
	inside := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(inside, []byte("lecture notes"), 0o600))

	other := t.TempDir()
	outside := filepath.Join(other, "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("top secret"), 0o600))

	tests := []struct {
		name    string
		opts    []RouterOption
		source  string
		want    string
		wantErr error
	}{
		{"disabled treats existing path as text", nil, outside, outside, nil},
		{"disabled treats pdf path as text", nil, filepath.Join(other, "slides.pdf"), filepath.Join(other, "slides.pdf"), nil},
		{"enabled reads any path", []RouterOption{WithLocalFiles("")}, outside, "top secret", nil},
		{"base dir reads inside", []RouterOption{WithLocalFiles(dir)}, inside, "lecture notes", nil},
		{"base dir rejects outside", []RouterOption{WithLocalFiles(dir)}, outside, "", ErrOutsideBaseDir},
		{"base dir rejects traversal", []RouterOption{WithLocalFiles(dir)}, filepath.Join(dir, "..", filepath.Base(other), "secret.txt"), "", ErrOutsideBaseDir},
		{"base dir rejects pdf outside", []RouterOption{WithLocalFiles(dir)}, filepath.Join(other, "slides.pdf"), "", ErrOutsideBaseDir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := NewRouter(nil, nil, tt.opts...).Extract(context.Background(), tt.source)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				var exErr *ExtractionError
				assert.True(t, errors.As(err, &exErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestIngestDoesNotReadLocalFilesByDefault(t *testing.T) {
	p := filepath.Join(t.TempDir(), "passwd")
	require.NoError(t, os.WriteFile(p, []byte("root:x:0:0"), 0o600))

	res, err := NewIngester(NewRouter(nil, nil), 1000, 0).Ingest(context.Background(), []string{p})
	require.NoError(t, err)

	assert.Equal(t, p, res.Documents[0].Content)
	assert.NotContains(t, res.Documents[0].Content, "root:x")
}

func TestIngestEmptyContentFails(t *testing.T) {
	in := NewIngester(NewRouter(nil, nil), 1000, 0)

	_, err := in.Ingest(context.Background(), []string{"   \n\t"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyContent))

	var exErr *ExtractionError
	assert.True(t, errors.As(err, &exErr))
}

func TestIngestSourcePreviewTruncated(t *testing.T) {
	in := NewIngester(NewRouter(nil, nil), 100000, 0)
	long := strings.Repeat("x", 900)

	res, err := in.Ingest(context.Background(), []string{long})
	require.NoError(t, err)
	assert.Len(t, res.Documents[0].Metadata["source"], 501)
}

func TestWebExtractorConvertsHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body><h1>Entropy</h1><p>A measure of <b>disorder</b>.</p></body></html>`))
	}))
	defer srv.Close()

	router := NewRouter(NewWebExtractor(NewPDFExtractor()), NewPDFExtractor())
	text, err := router.Extract(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, text, "# Entropy")
	assert.Contains(t, text, "**disorder**")
}

func TestWebExtractorHTTPErrorIsExtractionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	router := NewRouter(NewWebExtractor(nil), nil)
	_, err := router.Extract(context.Background(), srv.URL)

	var exErr *ExtractionError
	require.True(t, errors.As(err, &exErr))
	assert.Equal(t, KindWeb, exErr.Kind)
}

func TestTextFromContentStream(t *testing.T) {
	stream := []byte("BT\n/F1 12 Tf\n(Hello) Tj\n0 -14 Td\n[(Wor) -20 (ld)] TJ\nET\n")
	assert.Equal(t, "Hello World", textFromContentStream(stream))
}
