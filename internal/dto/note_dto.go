package dto

import (
	"time"

	"notes-intelligence-be/pkg/pipeline"

	"github.com/google/uuid"
)

// PublishEmbedNoteMessage is the indexing job payload.
type PublishEmbedNoteMessage struct {
	NoteId uuid.UUID `json:"note_id"`
}

type NoteSummaryResponse struct {
	Id             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Tags           []string   `json:"tags"`
	TotalScore     float64    `json:"total_score"`
	IndexingStatus string     `json:"indexing_status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
}

type ShowNoteResponse struct {
	Id             uuid.UUID                      `json:"id"`
	Title          string                         `json:"title"`
	InputSource    string                         `json:"input_source"`
	Content        string                         `json:"content"`
	Concepts       []string                       `json:"concepts"`
	Tags           []string                       `json:"tags"`
	Resources      map[string][]pipeline.Resource `json:"resources"`
	Evaluation     *pipeline.Evaluation           `json:"evaluation"`
	TotalScore     float64                        `json:"total_score"`
	IndexingStatus string                         `json:"indexing_status"`
	CreatedAt      time.Time                      `json:"created_at"`
	UpdatedAt      *time.Time                     `json:"updated_at"`
}

type ListNotesRequest struct {
	Tag    string `query:"tag"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int    `query:"offset" validate:"omitempty,min=0"`
}

type ListNotesResponse struct {
	Items []*NoteSummaryResponse `json:"items"`
	Total int64                  `json:"total"`
}

type SemanticSearchResponse struct {
	Id             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Snippet        string    `json:"snippet"`
	CreatedAt      time.Time `json:"created_at"`
	RelevanceScore float64   `json:"relevance_score"`
}
