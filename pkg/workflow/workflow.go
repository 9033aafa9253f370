// Package workflow assembles the notes pipeline: ingest, clean, extract
// concepts, then tags, resources and style rewrite in parallel.
package workflow

import (
	"context"
	"strings"

	"notes-intelligence-be/pkg/pipeline"
)

const (
	UntitledNote   = "Untitled Note"
	maxTitleLength = 50
)

type Deps struct {
	Ingester  Ingester
	Cleaner   Cleaner
	Concepts  ConceptExtractor
	Tagger    Tagger
	Resources ResourceFinder
	Rewriter  StyleRewriter
}

type Workflow struct {
	graph *pipeline.Graph
}

func New(deps Deps, opts ...pipeline.Option) *Workflow {
	g := pipeline.NewGraph(opts...).
		Then(ingestStage(deps.Ingester)).
		Then(notemakingStage(deps.Cleaner)).
		Then(conceptStage(deps.Concepts)).
		Parallel(
			tagStage(deps.Tagger),
			resourceStage(deps.Resources),
			rewriteStage(deps.Rewriter),
		)
	return &Workflow{graph: g}
}

// Run executes the whole pipeline synchronously and returns the final state.
func (w *Workflow) Run(ctx context.Context, initial *pipeline.State) (*pipeline.State, error) {
	return w.graph.Run(ctx, initial)
}

// StageNames lists the stages in execution order.
func (w *Workflow) StageNames() []string {
	return w.graph.Names()
}

// Title is the first line of the rewritten notes, cut to 50 characters.
func Title(rewritten string) string {
	first := strings.TrimSpace(strings.SplitN(rewritten, "\n", 2)[0])
	if first == "" {
		return UntitledNote
	}
	if r := []rune(first); len(r) > maxTitleLength {
		return string(r[:maxTitleLength])
	}
	return first
}
