package bootstrap

import (
	"time"

	"notes-intelligence-be/internal/config"
	"notes-intelligence-be/internal/pkg/logger"
	"notes-intelligence-be/internal/repository/memory"
	"notes-intelligence-be/pkg/concepts"
	"notes-intelligence-be/pkg/embedding"
	"notes-intelligence-be/pkg/ingest"
	"notes-intelligence-be/pkg/llm"
	"notes-intelligence-be/pkg/notemaking"
	"notes-intelligence-be/pkg/pipeline"
	"notes-intelligence-be/pkg/resources"
	"notes-intelligence-be/pkg/style"
	"notes-intelligence-be/pkg/tagging"
	"notes-intelligence-be/pkg/workflow"
)

const searchTimeout = 15 * time.Second

// NewEmbeddingProvider returns nil when embeddings are disabled.
func NewEmbeddingProvider(cfg *config.Config, log logger.ILogger) embedding.EmbeddingProvider {
	if cfg.Ai.EmbeddingProvider != "ollama" {
		log.Warn("Bootstrap", "Embeddings disabled: concept ranking is pass-through and search is literal", map[string]interface{}{
			"provider": cfg.Ai.EmbeddingProvider,
		})
		return nil
	}
	log.Info("Bootstrap", "Using embedding provider", map[string]interface{}{"provider": "ollama", "model": cfg.Ai.OllamaModel})
	return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
}

// NewWorkflow assembles every pipeline capability from configuration.
func NewWorkflow(
	cfg *config.Config,
	llmProvider llm.LLMProvider,
	embeddingProvider embedding.EmbeddingProvider,
	observer pipeline.Observer,
	log logger.ILogger,
	routerOpts ...ingest.RouterOption,
) *workflow.Workflow {
	p := cfg.Pipeline

	pdf := ingest.NewPDFExtractor()
	ingester := ingest.NewIngester(
		ingest.NewRouter(ingest.NewWebExtractor(pdf), pdf, routerOpts...),
		p.ChunkSize,
		p.ChunkOverlap,
	)

	var ranker concepts.Ranker = concepts.PassThroughRanker{Top: p.MaxKeywords}
	if embeddingProvider != nil {
		ranker = concepts.NewMMRRanker(embeddingProvider, p.Diversity, p.MaxKeywords)
	}

	searcher := resources.NewThrottledSearcher(
		resources.NewDuckDuckGoSearcher(resources.DefaultDuckDuckGoURL, searchTimeout),
		p.SearchDelay,
		memory.NewSearchCacheRepository(p.SearchCacheTTL),
	)

	return workflow.New(workflow.Deps{
		Ingester:  ingester,
		Cleaner:   notemaking.NewCleaner(llmProvider),
		Concepts:  concepts.NewExtractor(concepts.NewKeywordExtractor(3, p.MaxKeywords), ranker),
		Tagger:    tagging.NewTagger(p.MaxTags),
		Resources: resources.NewFinder(searcher, p.SearchResults, log),
		Rewriter:  style.NewRewriter(llmProvider, p.RewriteThreshold, p.RewriteMaxLoops, log),
	},
		pipeline.WithLogger(log),
		pipeline.WithObserver(observer),
		pipeline.WithSequentialFanOut(p.SequentialFanOut),
	)
}
