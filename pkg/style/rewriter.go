package style

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"notes-intelligence-be/internal/pkg/logger"
	"notes-intelligence-be/pkg/llm"
	"notes-intelligence-be/pkg/pipeline"
)

// Phase is a state of the rewrite loop.
type Phase string

const (
	PhaseDrafting   Phase = "DRAFTING"
	PhaseEvaluating Phase = "EVALUATING"
	PhaseRefining   Phase = "REFINING"
	PhaseDone       Phase = "DONE"
)

const (
	DefaultThreshold = 28
	DefaultMaxLoops  = 4
)

// RewriteResult is the final draft with the evaluation that accepted it, or
// the last evaluation when the loop hit its ceiling.
type RewriteResult struct {
	Text       string
	Evaluation pipeline.Evaluation
	Feedback   string
	TotalScore float64
	Iterations int
	Converged  bool
}

type Rewriter struct {
	llm       llm.LLMProvider
	threshold int
	maxLoops  int
	logger    logger.ILogger
}

func NewRewriter(provider llm.LLMProvider, threshold, maxLoops int, log logger.ILogger) *Rewriter {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if maxLoops <= 0 {
		maxLoops = DefaultMaxLoops
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Rewriter{llm: provider, threshold: threshold, maxLoops: maxLoops, logger: log}
}

// Rewrite drafts the notes in the profile's style, then alternates evaluation
// and refinement until the score reaches the threshold or maxLoops
// evaluations have run.
func (r *Rewriter) Rewrite(ctx context.Context, notes string, profile Profile) (*RewriteResult, error) {
	phase := PhaseDrafting
	draft, err := r.llm.Generate(ctx, BuildStylePrompt(profile, notes))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", phase, err)
	}

	res := &RewriteResult{}
	for phase != PhaseDone {
		switch phase {
		case PhaseDrafting, PhaseRefining:
			phase = PhaseEvaluating

		case PhaseEvaluating:
			res.Iterations++
			raw, err := r.llm.Generate(ctx, BuildEvalPrompt(draft, profile), llm.WithJSONOutput())
			if err != nil {
				return nil, fmt.Errorf("%s (iteration %d): %w", phase, res.Iterations, err)
			}
			eval, ok := ParseEvaluation(raw)
			if !ok {
				r.logger.Warn("StyleRewriter", "Evaluation unparseable, scoring zero", map[string]interface{}{
					"iteration": res.Iterations,
				})
			}

			res.Evaluation = eval
			res.TotalScore = eval.Total()
			res.Feedback = eval.OverallFeedback
			if strings.TrimSpace(res.Feedback) == "" {
				res.Feedback = defaultFeedback
			}

			r.logger.Info("StyleRewriter", "Draft evaluated", map[string]interface{}{
				"iteration":   res.Iterations,
				"style":       eval.StyleAdherenceScore,
				"clarity":     eval.ClarityScore,
				"coherence":   eval.CoherenceScore,
				"total_score": res.TotalScore,
			})

			switch {
			case res.TotalScore >= float64(r.threshold):
				res.Converged = true
				phase = PhaseDone
			case res.Iterations >= r.maxLoops:
				phase = PhaseDone
			default:
				draft, err = r.llm.Generate(ctx, BuildRefinePrompt(draft, res.Feedback, profile))
				if err != nil {
					return nil, fmt.Errorf("%s (iteration %d): %w", PhaseRefining, res.Iterations, err)
				}
				phase = PhaseRefining
			}
		}
	}

	res.Text = draft
	return res, nil
}

// ParseEvaluation reads an evaluator reply. When no JSON object can be
// recovered it returns zero scores with the raw reply as feedback and false.
func ParseEvaluation(raw string) (pipeline.Evaluation, bool) {
	obj, err := llm.ParseJSONObject(raw)
	if err != nil {
		return pipeline.Evaluation{OverallFeedback: strings.TrimSpace(raw)}, false
	}
	eval := pipeline.Evaluation{
		StyleAdherenceScore: score(obj["style_adherence_score"]),
		ClarityScore:        score(obj["clarity_score"]),
		CoherenceScore:      score(obj["coherence_score"]),
	}
	if fb, ok := obj["overall_feedback"].(string); ok {
		eval.OverallFeedback = fb
	}
	return eval, true
}

// score reads a JSON number or numeric string as given. Anything else is 0.
func score(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}
