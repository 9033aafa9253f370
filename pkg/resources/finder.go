package resources

import (
	"context"
	"fmt"

	"notes-intelligence-be/internal/pkg/logger"
	"notes-intelligence-be/pkg/concepts"
	"notes-intelligence-be/pkg/pipeline"
)

// QueryFor builds the link query for a concept.
func QueryFor(concept string) string {
	return concept + " site:wikipedia.org OR site:medium.com OR site:towardsdatascience.com"
}

type Finder struct {
	searcher   Searcher
	maxResults int
	logger     logger.ILogger
}

func NewFinder(searcher Searcher, maxResults int, log logger.ILogger) *Finder {
	if maxResults <= 0 {
		maxResults = 2
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Finder{searcher: searcher, maxResults: maxResults, logger: log}
}

// Find attaches a concept -> links map to each document under "resources"
// and returns the per-concept aggregate across all documents.
func (f *Finder) Find(ctx context.Context, docs []pipeline.Document) ([]pipeline.Document, map[string][]pipeline.Resource, error) {
	out := make([]pipeline.Document, 0, len(docs))
	all := map[string][]pipeline.Resource{}

	for i, doc := range docs {
		found := map[string][]pipeline.Resource{}
		for _, c := range concepts.ConceptsOf(doc) {
			links, err := f.searcher.Search(ctx, QueryFor(c), f.maxResults)
			if err != nil {
				return nil, nil, fmt.Errorf("search %q in chunk %d: %w", c, i, err)
			}
			if links == nil {
				links = []pipeline.Resource{}
			}
			found[c] = links
			if _, ok := all[c]; !ok {
				all[c] = []pipeline.Resource{}
			}
			all[c] = append(all[c], links...)
		}

		f.logger.Debug("Resources", "Chunk resources found", map[string]interface{}{
			"chunk":    i,
			"concepts": len(found),
		})

		meta := make(map[string]any, len(doc.Metadata)+1)
		for k, v := range doc.Metadata {
			meta[k] = v
		}
		meta["resources"] = found
		out = append(out, pipeline.Document{Content: doc.Content, Metadata: meta})
	}
	return out, all, nil
}
