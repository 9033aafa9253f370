package workflow

import (
	"context"
	"strings"

	"notes-intelligence-be/pkg/ingest"
	"notes-intelligence-be/pkg/pipeline"
	"notes-intelligence-be/pkg/style"
)

// Stage names, also used as observer and metric labels.
const (
	StageIngest       = "ingest"
	StageNotemaking   = "notemaking"
	StageConcepts     = "concept_extraction"
	StageTags         = "tag_generation"
	StageResources    = "web_search"
	StageStyleRewrite = "style_rewrite"
)

type Ingester interface {
	Ingest(ctx context.Context, sources []string) (*ingest.Result, error)
}

type Cleaner interface {
	Clean(ctx context.Context, docs []pipeline.Document, instruction string) ([]pipeline.Document, error)
}

type ConceptExtractor interface {
	Extract(ctx context.Context, docs []pipeline.Document) ([]pipeline.Document, []string, error)
}

type Tagger interface {
	Tag(docs []pipeline.Document) ([]pipeline.Document, []string)
}

type ResourceFinder interface {
	Find(ctx context.Context, docs []pipeline.Document) ([]pipeline.Document, map[string][]pipeline.Resource, error)
}

type StyleRewriter interface {
	Rewrite(ctx context.Context, notes string, profile style.Profile) (*style.RewriteResult, error)
}

func ingestStage(in Ingester) pipeline.Stage {
	return pipeline.NewStage(StageIngest, func(ctx context.Context, s *pipeline.State) (pipeline.Update, error) {
		res, err := in.Ingest(ctx, s.InputSource)
		if err != nil {
			return nil, err
		}
		return pipeline.Update{
			pipeline.KeyIngestionStatus: pipeline.StatusSuccess,
			pipeline.KeyIngestedSource:  res.Source,
			pipeline.KeyDocuments:       res.Documents,
			pipeline.KeyIngestionMeta:   res.Meta,
		}, nil
	})
}

func notemakingStage(c Cleaner) pipeline.Stage {
	return pipeline.NewStage(StageNotemaking, func(ctx context.Context, s *pipeline.State) (pipeline.Update, error) {
		docs, err := c.Clean(ctx, s.Documents, s.UserInstruction)
		if err != nil {
			return nil, err
		}
		return pipeline.Update{
			pipeline.KeyNotemakingStatus: pipeline.StatusSuccess,
			pipeline.KeyCleanDocuments:   docs,
		}, nil
	})
}

func conceptStage(e ConceptExtractor) pipeline.Stage {
	return pipeline.NewStage(StageConcepts, func(ctx context.Context, s *pipeline.State) (pipeline.Update, error) {
		docs, concepts, err := e.Extract(ctx, s.CleanDocuments)
		if err != nil {
			return nil, err
		}
		return pipeline.Update{
			pipeline.KeyConceptStatus:         pipeline.StatusSuccess,
			pipeline.KeyDocumentsWithConcepts: docs,
			pipeline.KeyConcepts:              concepts,
		}, nil
	})
}

func tagStage(t Tagger) pipeline.Stage {
	return pipeline.NewStage(StageTags, func(_ context.Context, s *pipeline.State) (pipeline.Update, error) {
		docs, tags := t.Tag(s.DocumentsWithConcepts)
		return pipeline.Update{
			pipeline.KeyTagStatus:         pipeline.StatusSuccess,
			pipeline.KeyDocumentsWithTags: docs,
			pipeline.KeyTags:              tags,
		}, nil
	})
}

func resourceStage(f ResourceFinder) pipeline.Stage {
	return pipeline.NewStage(StageResources, func(ctx context.Context, s *pipeline.State) (pipeline.Update, error) {
		docs, resources, err := f.Find(ctx, s.DocumentsWithConcepts)
		if err != nil {
			return nil, err
		}
		return pipeline.Update{
			pipeline.KeyWebSearchStatus:        pipeline.StatusSuccess,
			pipeline.KeyDocumentsWithResources: docs,
			pipeline.KeyResources:              resources,
		}, nil
	})
}

func rewriteStage(r StyleRewriter) pipeline.Stage {
	return pipeline.NewStage(StageStyleRewrite, func(ctx context.Context, s *pipeline.State) (pipeline.Update, error) {
		profile := style.Profile(s.StyleProfile)
		if profile == nil {
			profile = style.DefaultProfile()
		}

		parts := make([]string, len(s.CleanDocuments))
		for i, d := range s.CleanDocuments {
			parts[i] = d.Content
		}

		res, err := r.Rewrite(ctx, strings.Join(parts, "\n\n"), profile)
		if err != nil {
			return nil, err
		}
		return pipeline.Update{
			pipeline.KeyStyleRewriteStatus: pipeline.StatusSuccess,
			pipeline.KeyRewrittenNotes:     res.Text,
			pipeline.KeyEvaluation:         res.Evaluation,
			pipeline.KeyFeedback:           res.Feedback,
			pipeline.KeyTotalScore:         res.TotalScore,
		}, nil
	})
}
