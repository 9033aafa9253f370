// Package concepts extracts key concepts from note chunks.
package concepts

import (
	"context"
	"fmt"
	"strings"

	"notes-intelligence-be/pkg/pipeline"
)

// Extractor proposes keyword candidates per chunk and reranks them.
type Extractor struct {
	keywords *KeywordExtractor
	ranker   Ranker
}

func NewExtractor(keywords *KeywordExtractor, ranker Ranker) *Extractor {
	return &Extractor{keywords: keywords, ranker: ranker}
}

// Extract annotates each document with a "concepts" metadata list and
// returns the deduplicated union across documents in first-seen order.
func (e *Extractor) Extract(ctx context.Context, docs []pipeline.Document) ([]pipeline.Document, []string, error) {
	out := make([]pipeline.Document, 0, len(docs))
	seen := map[string]struct{}{}
	var union []string

	for i, doc := range docs {
		text := strings.Join(strings.Fields(doc.Content), " ")
		ranked, err := e.ranker.Rank(ctx, text, e.keywords.Candidates(text))
		if err != nil {
			return nil, nil, fmt.Errorf("rank concepts for chunk %d: %w", i, err)
		}
		if ranked == nil {
			ranked = []string{}
		}

		meta := make(map[string]any, len(doc.Metadata)+1)
		for k, v := range doc.Metadata {
			meta[k] = v
		}
		meta["concepts"] = ranked
		out = append(out, pipeline.Document{Content: doc.Content, Metadata: meta})

		for _, c := range ranked {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			union = append(union, c)
		}
	}
	return out, union, nil
}

// ConceptsOf reads the "concepts" metadata of a document, tolerating the
// []any shape produced by a JSON round trip.
func ConceptsOf(doc pipeline.Document) []string {
	return StringList(doc.Metadata["concepts"])
}

// StringList coerces []string or []any of strings into []string.
func StringList(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, x := range t {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
