// Package notemaking turns noisy ingested chunks into clean, detailed notes.
package notemaking

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"notes-intelligence-be/pkg/llm"
	"notes-intelligence-be/pkg/pipeline"
)

var (
	urlRe        = regexp.MustCompile(`http\S+`)
	boilerRe     = regexp.MustCompile(`(?i)(click here|login|sign up|advertisement|follow us|©|copyright)`)
	chatMarkerRe = regexp.MustCompile(`(?i)(you said:|chatgpt said:|assistant:|user:)`)
)

const systemPrompt = "You are a professional notemaking AI. " +
	"Clean the following text by removing irrelevant or noisy parts " +
	"(ads, links, UI elements, chat markers, or unrelated content). " +
	"Make concise but highly detailed notes that preserve all important factual information. " +
	"Ensure clarity, coherence, and structure."

// Cleaner runs a regex pre-clean and then an LLM rewrite on every chunk.
type Cleaner struct {
	llm llm.LLMProvider
}

func NewCleaner(provider llm.LLMProvider) *Cleaner {
	return &Cleaner{llm: provider}
}

// HeuristicClean strips links, boilerplate phrases and chat transcript markers.
func HeuristicClean(text string) string {
	text = urlRe.ReplaceAllString(text, "")
	text = boilerRe.ReplaceAllString(text, "")
	text = chatMarkerRe.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// BuildPrompt assembles the cleaning prompt for one chunk.
func BuildPrompt(text, instruction string) string {
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	if instruction = strings.TrimSpace(instruction); instruction != "" {
		sb.WriteString(" Follow the user's instruction carefully: ")
		sb.WriteString(instruction)
	}
	sb.WriteString("\n\n### Input Text ###\n")
	sb.WriteString(text)
	sb.WriteString("\n\n### Output: High-quality cleaned and detailed notes ###")
	return sb.String()
}

// Clean returns one cleaned document per input document, same order and metadata.
// A generation failure on any chunk fails the whole call.
func (c *Cleaner) Clean(ctx context.Context, docs []pipeline.Document, instruction string) ([]pipeline.Document, error) {
	out := make([]pipeline.Document, 0, len(docs))
	for i, doc := range docs {
		pre := HeuristicClean(doc.Content)
		resp, err := c.llm.Generate(ctx, BuildPrompt(pre, instruction))
		if err != nil {
			return nil, fmt.Errorf("clean chunk %d: %w", i, err)
		}
		out = append(out, pipeline.Document{
			Content:  strings.Join(strings.Fields(resp), " "),
			Metadata: copyMeta(doc.Metadata),
		})
	}
	return out, nil
}

func copyMeta(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
