package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"notes-intelligence-be/pkg/pipeline"

	"github.com/tmc/langchaingo/textsplitter"
)

// ErrEmptyContent is returned when every source extracted to blank text.
var ErrEmptyContent = errors.New("ingested content is empty")

const sourcePreviewLen = 501

// Result is the outcome of ingesting one or more sources.
type Result struct {
	Source    string
	Documents []pipeline.Document
	Meta      map[string]any
}

// Ingester extracts, normalizes and chunks sources into ordered documents.
type Ingester struct {
	extractor Extractor
	splitter  textsplitter.TextSplitter
}

func NewIngester(extractor Extractor, chunkSize, chunkOverlap int) *Ingester {
	return &Ingester{
		extractor: extractor,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
			textsplitter.WithSeparators([]string{"\n\n", "\n", " ", ""}),
		),
	}
}

// Ingest joins all sources with newlines, collapses whitespace and splits
// the result into chunks numbered from zero.
func (in *Ingester) Ingest(ctx context.Context, sources []string) (*Result, error) {
	if len(sources) == 0 {
		return nil, &ExtractionError{Kind: KindText, Err: fmt.Errorf("no input source given")}
	}

	texts := make([]string, 0, len(sources))
	for _, src := range sources {
		text, err := in.extractor.Extract(ctx, src)
		if err != nil {
			return nil, err
		}
		texts = append(texts, text)
	}

	clean := Normalize(strings.Join(texts, "\n"))
	if clean == "" {
		return nil, &ExtractionError{Source: strings.Join(sources, ", "), Kind: KindText, Err: ErrEmptyContent}
	}

	chunks, err := in.splitter.SplitText(clean)
	if err != nil {
		return nil, fmt.Errorf("split text: %w", err)
	}

	joined := strings.Join(sources, "\n")
	preview := truncate(joined, sourcePreviewLen)
	docs := make([]pipeline.Document, 0, len(chunks))
	for i, chunk := range chunks {
		docs = append(docs, pipeline.Document{
			Content: chunk,
			Metadata: map[string]any{
				"source":   preview,
				"chunk_id": i,
			},
		})
	}

	return &Result{
		Source:    joined,
		Documents: docs,
		Meta:      map[string]any{"num_chunks": len(docs)},
	}, nil
}

// Normalize turns newlines and tabs into spaces and collapses runs of whitespace.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
