package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"notes-intelligence-be/internal/dto"
	"notes-intelligence-be/internal/pkg/logger"
	"notes-intelligence-be/internal/repository/contract"
	"notes-intelligence-be/internal/repository/specification"
	"notes-intelligence-be/internal/repository/unitofwork"
	"notes-intelligence-be/pkg/embedding"
	"notes-intelligence-be/pkg/llm"

	"github.com/google/uuid"
)

const (
	chatModule = "ChatService"

	globalChatChunks = 5
	noteChatChunks   = 3
)

// ErrSearchDisabled is returned when chat is requested without an embedding provider.
var ErrSearchDisabled = errors.New("semantic search is disabled")

type IChatService interface {
	// Chat answers from the best chunks across every note.
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
	// ChatNote answers using only chunks of one note.
	ChatNote(ctx context.Context, noteId uuid.UUID, req *dto.ChatRequest) (*dto.ChatResponse, error)
}

type chatService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	llmProvider       llm.LLMProvider
	logger            logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	llmProvider llm.LLMProvider,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		llmProvider:       llmProvider,
		logger:            log,
	}
}

func (s *chatService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	return s.answer(ctx, req.Question, globalChatChunks, nil, globalPrompt)
}

func (s *chatService) ChatNote(ctx context.Context, noteId uuid.UUID, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: noteId})
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, fmt.Errorf("note %s: %w", noteId, contract.ErrNotFound)
	}
	return s.answer(ctx, req.Question, noteChatChunks, &noteId, notePrompt)
}

func (s *chatService) answer(
	ctx context.Context,
	question string,
	limit int,
	noteId *uuid.UUID,
	buildPrompt func(notes, question string) string,
) (*dto.ChatResponse, error) {
	if s.embeddingProvider == nil {
		return nil, ErrSearchDisabled
	}

	emb, err := s.embeddingProvider.Generate(ctx, question, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	chunks, err := uow.NoteEmbeddingRepository().SearchSimilar(ctx, emb.Embedding.Values, limit, noteId)
	if err != nil {
		return nil, err
	}

	docs := make([]string, 0, len(chunks))
	citations := make([]*dto.ChatCitation, 0, len(chunks))
	for _, c := range chunks {
		docs = append(docs, c.Embedding.Document)
		citations = append(citations, &dto.ChatCitation{
			NoteId:     c.Embedding.NoteId,
			ChunkIndex: c.Embedding.ChunkIndex,
			Score:      c.Similarity,
		})
	}

	s.logger.Debug(chatModule, "Answering question", map[string]interface{}{
		"chunks":  len(chunks),
		"scoped":  noteId != nil,
		"q_chars": len(question),
	})

	answer, err := s.llmProvider.Chat(ctx, []llm.Message{
		{Role: "user", Content: buildPrompt(strings.Join(docs, "\n\n"), question)},
	})
	if err != nil {
		return nil, err
	}

	return &dto.ChatResponse{Answer: strings.TrimSpace(answer), Citations: citations}, nil
}

func globalPrompt(notes, question string) string {
	return fmt.Sprintf(`Use the following context to answer the question as accurately as possible:
%s

Question: %s
`, notes, question)
}

func notePrompt(notes, question string) string {
	return fmt.Sprintf(`Using only the content from this note, answer the question:
%s

Question: %s
`, notes, question)
}
