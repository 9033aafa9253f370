package pipeline

import (
	"encoding/json"
	"fmt"
)

// Status values written by stages into their <stage>_status field.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Top-level state keys. Stage updates are keyed by these names.
const (
	KeyInputSource     = "input_source"
	KeyUserInstruction = "user_instruction"
	KeyStyleProfile    = "style_profile"

	KeyIngestionStatus = "ingestion_status"
	KeyIngestedSource  = "ingested_source"
	KeyDocuments       = "documents"
	KeyIngestionMeta   = "ingestion_meta"

	KeyNotemakingStatus = "notemaking_status"
	KeyCleanDocuments   = "clean_documents"

	KeyConceptStatus         = "concept_extraction_status"
	KeyDocumentsWithConcepts = "documents_with_concepts"
	KeyConcepts              = "concepts"

	KeyTagStatus         = "tag_generation_status"
	KeyDocumentsWithTags = "documents_with_tags"
	KeyTags              = "tags"

	KeyWebSearchStatus        = "web_search_status"
	KeyDocumentsWithResources = "documents_with_resources"
	KeyResources              = "resources"

	KeyStyleRewriteStatus = "style_rewrite_status"
	KeyRewrittenNotes     = "rewritten_notes"
	KeyEvaluation         = "evaluation"
	KeyFeedback           = "feedback"
	KeyTotalScore         = "total_score"
)

// Document is a chunk of content plus free-form metadata.
type Document struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// Resource is a single external link found for a concept.
type Resource struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Evaluation is the evaluator verdict on one rewrite draft.
type Evaluation struct {
	StyleAdherenceScore float64 `json:"style_adherence_score"`
	ClarityScore        float64 `json:"clarity_score"`
	CoherenceScore      float64 `json:"coherence_score"`
	OverallFeedback     string  `json:"overall_feedback"`
}

// Total is the sum of the three scores.
func (e Evaluation) Total() float64 {
	return e.StyleAdherenceScore + e.ClarityScore + e.CoherenceScore
}

// Sources accepts either a single string or a list of strings on the wire.
type Sources []string

func (s *Sources) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = Sources{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("input_source must be a string or a list of strings: %w", err)
	}
	*s = many
	return nil
}

// State is the accumulated record of one workflow run. Every stage reads
// a subset of it and contributes disjoint top-level fields.
type State struct {
	InputSource     Sources        `json:"input_source,omitempty"`
	UserInstruction string         `json:"user_instruction,omitempty"`
	StyleProfile    map[string]any `json:"style_profile,omitempty"`

	IngestionStatus string         `json:"ingestion_status,omitempty"`
	IngestedSource  string         `json:"ingested_source,omitempty"`
	Documents       []Document     `json:"documents,omitempty"`
	IngestionMeta   map[string]any `json:"ingestion_meta,omitempty"`

	NotemakingStatus string     `json:"notemaking_status,omitempty"`
	CleanDocuments   []Document `json:"clean_documents,omitempty"`

	ConceptExtractionStatus string     `json:"concept_extraction_status,omitempty"`
	DocumentsWithConcepts   []Document `json:"documents_with_concepts,omitempty"`
	Concepts                []string   `json:"concepts,omitempty"`

	TagGenerationStatus string     `json:"tag_generation_status,omitempty"`
	DocumentsWithTags   []Document `json:"documents_with_tags,omitempty"`
	Tags                []string   `json:"tags,omitempty"`

	WebSearchStatus        string                `json:"web_search_status,omitempty"`
	DocumentsWithResources []Document            `json:"documents_with_resources,omitempty"`
	Resources              map[string][]Resource `json:"resources,omitempty"`

	StyleRewriteStatus string      `json:"style_rewrite_status,omitempty"`
	RewrittenNotes     string      `json:"rewritten_notes,omitempty"`
	Evaluation         *Evaluation `json:"evaluation,omitempty"`
	Feedback           string      `json:"feedback,omitempty"`
	TotalScore         *float64    `json:"total_score,omitempty"`
}

// Update is a partial state returned by a stage, keyed by top-level field name.
type Update map[string]any

// Keys returns the top-level keys of the update.
func (u Update) Keys() []string {
	keys := make([]string, 0, len(u))
	for k := range u {
		keys = append(keys, k)
	}
	return keys
}

// ToMap converts the state into its generic map form.
func (s *State) ToMap() (map[string]any, error) {
	return toMap(s)
}

// FromMap decodes a generic map into a fresh State.
func FromMap(m map[string]any) (*State, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &s, nil
}

// Clone returns a deep copy that shares nothing with the receiver.
func (s *State) Clone() (*State, error) {
	m, err := s.ToMap()
	if err != nil {
		return nil, err
	}
	return FromMap(m)
}

// toMap normalizes any JSON-encodable value into nested map[string]any form
// so that merge recursion sees plain mappings.
func toMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return out, nil
}
