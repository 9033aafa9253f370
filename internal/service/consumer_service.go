package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"notes-intelligence-be/internal/dto"
	"notes-intelligence-be/internal/entity"
	"notes-intelligence-be/internal/pkg/logger"
	"notes-intelligence-be/internal/repository/specification"
	"notes-intelligence-be/internal/repository/unitofwork"
	"notes-intelligence-be/pkg/embedding"
	"notes-intelligence-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/textsplitter"
)

const consumerModule = "Indexer"

type IConsumerService interface {
	Consume(ctx context.Context) error
	IndexNote(ctx context.Context, noteId uuid.UUID) (int, error)
}

type consumerService struct {
	subscriber        message.Subscriber
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	splitter          textsplitter.TextSplitter
	eventPublisher    IEventPublisher
	logger            logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	chunkSize, chunkOverlap int,
	eventPublisher IEventPublisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:        subscriber,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage always acks: a failed note is marked failed and can be
// re-queued through the reindex endpoint.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.PublishEmbedNoteMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error(consumerModule, "Failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		return
	}
	if cs.embeddingProvider == nil {
		cs.logger.Debug(consumerModule, "Embeddings disabled, note stays pending", map[string]interface{}{"note_id": payload.NoteId.String()})
		return
	}

	n, err := cs.IndexNote(ctx, payload.NoteId)
	if err != nil {
		cs.logger.Error(consumerModule, "Indexing failed", map[string]interface{}{
			"note_id": payload.NoteId.String(),
			"error":   err.Error(),
		})
		uow := cs.uowFactory.NewUnitOfWork(ctx)
		if err := uow.NoteRepository().UpdateIndexingStatus(ctx, payload.NoteId, entity.IndexingFailed); err != nil {
			cs.logger.Warn(consumerModule, "Failed to mark note as failed", map[string]interface{}{"error": err.Error()})
		}
		return
	}

	cs.logger.Info(consumerModule, "Note indexed", map[string]interface{}{
		"note_id": payload.NoteId.String(),
		"chunks":  n,
	})
	publishEvent(ctx, cs.eventPublisher, cs.logger, events.NoteIndexed, map[string]interface{}{
		"note_id": payload.NoteId.String(),
		"chunks":  n,
	})
}

// IndexNote replaces the stored chunks of a note with freshly embedded ones
// and marks it completed. A missing note is not an error.
func (cs *consumerService) IndexNote(ctx context.Context, noteId uuid.UUID) (int, error) {
	if cs.embeddingProvider == nil {
		return 0, ErrSearchDisabled
	}
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: noteId})
	if err != nil {
		return 0, fmt.Errorf("get note: %w", err)
	}
	if note == nil {
		cs.logger.Warn(consumerModule, "Note not found, skipping", map[string]interface{}{"note_id": noteId.String()})
		return 0, nil
	}

	chunks, err := cs.splitter.SplitText(indexDocument(note))
	if err != nil {
		return 0, fmt.Errorf("split note: %w", err)
	}

	newEmbeddings := make([]*entity.NoteEmbedding, 0, len(chunks))
	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(ctx, chunk, embedding.TaskRetrievalDocument)
		if err != nil {
			return 0, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		newEmbeddings = append(newEmbeddings, &entity.NoteEmbedding{
			Id:             uuid.New(),
			Document:       chunk,
			EmbeddingValue: res.Embedding.Values,
			NoteId:         note.Id,
			ChunkIndex:     i,
			CreatedAt:      time.Now(),
		})
	}

	err = unitofwork.Transaction(ctx, uow, func() error {
		if err := uow.NoteEmbeddingRepository().DeleteByNoteId(ctx, note.Id); err != nil {
			return fmt.Errorf("delete old embeddings: %w", err)
		}
		if len(newEmbeddings) > 0 {
			if err := uow.NoteEmbeddingRepository().CreateBulk(ctx, newEmbeddings); err != nil {
				return fmt.Errorf("create embeddings: %w", err)
			}
		}
		if err := uow.NoteRepository().UpdateIndexingStatus(ctx, note.Id, entity.IndexingCompleted); err != nil {
			return fmt.Errorf("update indexing status: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(newEmbeddings), nil
}

func indexDocument(note *entity.Note) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Note Title: %s\n", note.Title)
	if len(note.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(note.Tags, ", "))
	}
	b.WriteString("\n")
	b.WriteString(note.Content)
	return b.String()
}
