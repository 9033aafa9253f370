// Package tagging turns per-chunk concepts into normalized tags.
package tagging

import (
	"regexp"
	"strings"

	"notes-intelligence-be/pkg/concepts"
	"notes-intelligence-be/pkg/pipeline"
)

var (
	tagStripRe    = regexp.MustCompile(`[^a-zA-Z0-9\s\-]`)
	spaceRe       = regexp.MustCompile(`\s+`)
	fallbackRe    = regexp.MustCompile(`\b[a-zA-Z]{4,}\b`)
	defaultMaxTag = 10
)

// CleanTag keeps ASCII letters, digits, spaces and hyphens, lowercases, and
// joins words with underscores.
func CleanTag(tag string) string {
	tag = tagStripRe.ReplaceAllString(tag, "")
	tag = strings.ToLower(strings.TrimSpace(spaceRe.ReplaceAllString(tag, " ")))
	return strings.ReplaceAll(tag, " ", "_")
}

type Tagger struct {
	maxTags int
}

func NewTagger(maxTags int) *Tagger {
	if maxTags <= 0 {
		maxTags = defaultMaxTag
	}
	return &Tagger{maxTags: maxTags}
}

// Tag writes a "tags" metadata list on each document and returns the
// deduplicated union in first-seen order. Chunks without concepts fall back
// to their distinct words of four or more letters.
func (t *Tagger) Tag(docs []pipeline.Document) ([]pipeline.Document, []string) {
	out := make([]pipeline.Document, 0, len(docs))
	seen := map[string]struct{}{}
	union := []string{}

	for _, doc := range docs {
		source := concepts.ConceptsOf(doc)
		if len(source) == 0 {
			source = fallbackWords(doc.Content, t.maxTags)
		}

		tags := make([]string, 0, t.maxTags)
		for _, c := range source {
			if len(tags) >= t.maxTags {
				break
			}
			if tag := CleanTag(c); tag != "" {
				tags = append(tags, tag)
			}
		}

		meta := make(map[string]any, len(doc.Metadata)+1)
		for k, v := range doc.Metadata {
			meta[k] = v
		}
		meta["tags"] = tags
		out = append(out, pipeline.Document{Content: doc.Content, Metadata: meta})

		for _, tag := range tags {
			if _, ok := seen[tag]; !ok {
				seen[tag] = struct{}{}
				union = append(union, tag)
			}
		}
	}
	return out, union
}

func fallbackWords(content string, limit int) []string {
	seen := map[string]struct{}{}
	var words []string
	for _, w := range fallbackRe.FindAllString(strings.ToLower(content), -1) {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
		if len(words) == limit {
			break
		}
	}
	return words
}
