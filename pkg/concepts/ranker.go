package concepts

import (
	"context"
	"fmt"

	"notes-intelligence-be/pkg/embedding"
)

// Ranker reorders candidates by relevance to the text.
type Ranker interface {
	Rank(ctx context.Context, text string, candidates []string) ([]string, error)
}

// MMRRanker picks candidates by maximal marginal relevance over embeddings:
// each pick balances similarity to the text against similarity to what was
// already picked. Diversity 0 is pure relevance, 1 is pure novelty.
type MMRRanker struct {
	embedder  embedding.EmbeddingProvider
	diversity float64
	top       int
}

func NewMMRRanker(embedder embedding.EmbeddingProvider, diversity float64, top int) *MMRRanker {
	if top <= 0 {
		top = 10
	}
	return &MMRRanker{embedder: embedder, diversity: diversity, top: top}
}

func (r *MMRRanker) Rank(ctx context.Context, text string, candidates []string) ([]string, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	docVec, err := r.embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}
	vecs := make([][]float32, len(candidates))
	for i, c := range candidates {
		if vecs[i], err = r.embed(ctx, c); err != nil {
			return nil, fmt.Errorf("embed candidate %q: %w", c, err)
		}
	}

	return mmr(docVec, candidates, vecs, r.diversity, r.top), nil
}

func (r *MMRRanker) embed(ctx context.Context, text string) ([]float32, error) {
	res, err := r.embedder.Generate(ctx, text, embedding.TaskSimilarity)
	if err != nil {
		return nil, err
	}
	return res.Embedding.Values, nil
}

func mmr(docVec []float32, candidates []string, vecs [][]float32, diversity float64, top int) []string {
	n := len(candidates)
	if top > n {
		top = n
	}

	relevance := make([]float64, n)
	best := 0
	for i := range candidates {
		relevance[i] = embedding.Cosine(docVec, vecs[i])
		if relevance[i] > relevance[best] {
			best = i
		}
	}

	selected := []int{best}
	remaining := map[int]struct{}{}
	for i := 0; i < n; i++ {
		if i != best {
			remaining[i] = struct{}{}
		}
	}

	for len(selected) < top {
		pick, pickScore := -1, 0.0
		for i := 0; i < n; i++ {
			if _, ok := remaining[i]; !ok {
				continue
			}
			redundancy := -1.0
			for _, s := range selected {
				if sim := embedding.Cosine(vecs[i], vecs[s]); sim > redundancy {
					redundancy = sim
				}
			}
			score := (1-diversity)*relevance[i] - diversity*redundancy
			if pick == -1 || score > pickScore {
				pick, pickScore = i, score
			}
		}
		selected = append(selected, pick)
		delete(remaining, pick)
	}

	out := make([]string, len(selected))
	for i, idx := range selected {
		out[i] = candidates[idx]
	}
	return out
}

// PassThroughRanker keeps the candidate order. Used when no embedder is configured.
type PassThroughRanker struct {
	Top int
}

func (p PassThroughRanker) Rank(_ context.Context, _ string, candidates []string) ([]string, error) {
	if p.Top > 0 && len(candidates) > p.Top {
		return candidates[:p.Top], nil
	}
	return candidates, nil
}
