package contract

import (
	"context"

	"notes-intelligence-be/internal/entity"
	"notes-intelligence-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredNoteEmbedding wraps NoteEmbedding with its similarity score
type ScoredNoteEmbedding struct {
	Embedding  *entity.NoteEmbedding
	Similarity float64 // 1.0 = identical
}

type NoteEmbeddingRepository interface {
	CreateBulk(ctx context.Context, embeddings []*entity.NoteEmbedding) error
	DeleteByNoteId(ctx context.Context, noteId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.NoteEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilar ranks chunks by cosine similarity. A nil noteId searches every note.
	SearchSimilar(ctx context.Context, embedding []float32, limit int, noteId *uuid.UUID) ([]*ScoredNoteEmbedding, error)
}
