package dto

import "github.com/google/uuid"

type ChatRequest struct {
	Question string `json:"question" validate:"required"`
}

type ChatCitation struct {
	NoteId     uuid.UUID `json:"note_id"`
	ChunkIndex int       `json:"chunk_index"`
	Score      float64   `json:"score"`
}

type ChatResponse struct {
	Answer    string          `json:"answer"`
	Citations []*ChatCitation `json:"citations"`
}
