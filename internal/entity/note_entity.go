package entity

import (
	"time"

	"notes-intelligence-be/pkg/pipeline"

	"github.com/google/uuid"
)

const (
	IndexingPending   = "pending"
	IndexingCompleted = "completed"
	IndexingFailed    = "failed"
)

type Note struct {
	Id             uuid.UUID
	Title          string
	InputSource    string
	Content        string
	Concepts       []string
	Tags           []string
	Resources      map[string][]pipeline.Resource
	Evaluation     *pipeline.Evaluation
	TotalScore     float64
	IndexingStatus string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}

type NoteEmbedding struct {
	Id             uuid.UUID
	Document       string
	EmbeddingValue []float32
	NoteId         uuid.UUID
	ChunkIndex     int
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}

// StyleProfile is the single current writing-style document.
type StyleProfile struct {
	Id        uuid.UUID
	Data      map[string]any
	CreatedAt time.Time
	UpdatedAt *time.Time
}
