package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideBaseDir rejects a local path that resolves outside the router's base directory.
var ErrOutsideBaseDir = errors.New("path outside allowed base directory")

// Kind classifies an input source.
type Kind string

const (
	KindWeb  Kind = "web"
	KindPDF  Kind = "pdf"
	KindFile Kind = "file"
	KindText Kind = "text"
)

// ExtractionError reports a source that could not be turned into text.
type ExtractionError struct {
	Source string
	Kind   Kind
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s source %q: %v", e.Kind, truncate(e.Source, 80), e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Extractor turns a single source into raw text.
type Extractor interface {
	Extract(ctx context.Context, source string) (string, error)
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(ctx context.Context, source string) (string, error)

func (f ExtractorFunc) Extract(ctx context.Context, source string) (string, error) {
	return f(ctx, source)
}

// Detect picks the source kind: URLs first, then .pdf paths, then
// existing files, and anything else is literal text.
func Detect(source string) Kind {
	switch {
	case isURL(source):
		return KindWeb
	case strings.HasSuffix(strings.ToLower(source), ".pdf"):
		return KindPDF
	case isFile(source):
		return KindFile
	default:
		return KindText
	}
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http")
}

func isFile(source string) bool {
	// Literal notes routinely exceed any sane path length.
	if source == "" || len(source) > 4096 || strings.ContainsRune(source, '\n') {
		return false
	}
	info, err := os.Stat(source)
	return err == nil && !info.IsDir()
}

// Router dispatches each source to the extractor for its kind. Local paths
// are only read when the router was built WithLocalFiles; otherwise every
// non-URL source is literal text.
type Router struct {
	extractors map[Kind]Extractor
	localFiles bool
	baseDir    string
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithLocalFiles lets the router read .pdf and plain file paths from disk.
// A non-empty baseDir limits reads to paths that resolve under it.
func WithLocalFiles(baseDir string) RouterOption {
	return func(r *Router) {
		r.localFiles = true
		if baseDir != "" {
			r.baseDir = resolvePath(baseDir)
		}
	}
}

func NewRouter(web, pdf Extractor, opts ...RouterOption) *Router {
	r := &Router{extractors: map[Kind]Extractor{
		KindWeb:  web,
		KindPDF:  pdf,
		KindFile: ExtractorFunc(extractFile),
		KindText: ExtractorFunc(func(_ context.Context, source string) (string, error) { return source, nil }),
	}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Router) detect(source string) Kind {
	if r.localFiles {
		return Detect(source)
	}
	if isURL(source) {
		return KindWeb
	}
	return KindText
}

func (r *Router) Extract(ctx context.Context, source string) (string, error) {
	kind := r.detect(source)
	if (kind == KindPDF || kind == KindFile) && r.baseDir != "" && !within(r.baseDir, source) {
		return "", &ExtractionError{Source: source, Kind: kind, Err: ErrOutsideBaseDir}
	}
	ex, ok := r.extractors[kind]
	if !ok || ex == nil {
		return "", &ExtractionError{Source: source, Kind: kind, Err: fmt.Errorf("no extractor registered")}
	}
	text, err := ex.Extract(ctx, source)
	if err != nil {
		return "", &ExtractionError{Source: source, Kind: kind, Err: err}
	}
	return text, nil
}

func resolvePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

func within(base, path string) bool {
	rel, err := filepath.Rel(base, resolvePath(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func extractFile(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
