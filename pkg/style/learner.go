package style

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"notes-intelligence-be/internal/pkg/logger"
	"notes-intelligence-be/pkg/llm"

	"github.com/go-playground/validator/v10"
)

// ErrLearnExhausted means every attempt produced unusable style JSON.
var ErrLearnExhausted = errors.New("failed to produce valid style JSON")

const DefaultMaxRetries = 3

var (
	bulletRe   = regexp.MustCompile(`^\s*[\*\-]\s+`)
	numberedRe = regexp.MustCompile(`^\s*\d+\.\s+`)
	exampleRe  = regexp.MustCompile(`(?i)\bexample|imagine|for instance\b`)
	metaphorRe = regexp.MustCompile(`(?i)\blike\b`)
	sentenceRe = regexp.MustCompile(`[.!?]`)
)

// Features are cheap structural signals extracted before asking the model.
type Features struct {
	Headings             []string `json:"headings"`
	BulletsPresent       bool     `json:"bullets_present"`
	NumberedListsPresent bool     `json:"numbered_lists_present"`
	ExamplesPresent      bool     `json:"examples_present"`
	MetaphorsPresent     bool     `json:"metaphors_present"`
	AvgSentenceLength    float64  `json:"avg_sentence_length"`
	ParagraphLength      string   `json:"paragraph_length"`
	Language             string   `json:"language"`
}

// ExtractFeatures scans the note for headings, lists, cue words and sentence length.
func ExtractFeatures(text string) Features {
	f := Features{Headings: []string{}, Language: "English"}
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSuffix(l, "\r")
		if strings.HasPrefix(strings.TrimSpace(l), "#") {
			f.Headings = append(f.Headings, l)
		}
		if bulletRe.MatchString(l) {
			f.BulletsPresent = true
		}
		if numberedRe.MatchString(l) {
			f.NumberedListsPresent = true
		}
	}
	f.ExamplesPresent = exampleRe.MatchString(text)
	f.MetaphorsPresent = metaphorRe.MatchString(text)

	total, n := 0, 0
	for _, s := range sentenceRe.Split(text, -1) {
		if words := len(strings.Fields(s)); words > 3 {
			total += words
			n++
		}
	}
	f.AvgSentenceLength = 10
	if n > 0 {
		f.AvgSentenceLength = float64(total) / float64(n)
	}

	switch {
	case f.AvgSentenceLength < 10:
		f.ParagraphLength = "short"
	case f.AvgSentenceLength < 20:
		f.ParagraphLength = "medium"
	default:
		f.ParagraphLength = "long"
	}
	return f
}

// learnedSections is the shape every learned profile must satisfy.
type learnedSections struct {
	Detail           map[string]any `json:"detail" validate:"required"`
	Abstraction      map[string]any `json:"abstraction" validate:"required"`
	Formatting       map[string]any `json:"formatting" validate:"required"`
	Structure        map[string]any `json:"structure" validate:"required"`
	Language         map[string]any `json:"language" validate:"required"`
	StylisticDevices map[string]any `json:"stylistic_devices" validate:"required"`
}

type Learner struct {
	llm        llm.LLMProvider
	maxRetries int
	validate   *validator.Validate
	logger     logger.ILogger
}

func NewLearner(provider llm.LLMProvider, maxRetries int, log logger.ILogger) *Learner {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Learner{llm: provider, maxRetries: maxRetries, validate: validator.New(), logger: log}
}

// Learn infers a style profile from an example note. Unparseable or
// incomplete output is retried up to maxRetries times. Generation failures
// are returned immediately.
func (l *Learner) Learn(ctx context.Context, note string) (Profile, error) {
	prompt := BuildLearnPrompt(ExtractFeatures(note), note)

	var lastErr error
	for attempt := 1; attempt <= l.maxRetries; attempt++ {
		raw, err := l.llm.Generate(ctx, prompt, llm.WithJSONOutput())
		if err != nil {
			return nil, fmt.Errorf("learn attempt %d: %w", attempt, err)
		}

		profile, err := l.check(raw)
		if err == nil {
			l.logger.Info("StyleLearner", "Style JSON validated", map[string]interface{}{"attempt": attempt})
			return profile, nil
		}

		lastErr = err
		l.logger.Warn("StyleLearner", "Style JSON rejected, retrying", map[string]interface{}{
			"attempt": attempt,
			"error":   err.Error(),
		})
	}
	return nil, fmt.Errorf("%w after %d attempts: %v", ErrLearnExhausted, l.maxRetries, lastErr)
}

func (l *Learner) check(raw string) (Profile, error) {
	obj, err := llm.ParseJSONObject(raw)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	var sections learnedSections
	if err := json.Unmarshal(encoded, &sections); err != nil {
		return nil, fmt.Errorf("section is not an object: %w", err)
	}
	if err := l.validate.Struct(sections); err != nil {
		return nil, fmt.Errorf("missing sections: %w", err)
	}
	return Profile(obj), nil
}
