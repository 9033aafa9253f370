package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"notes-intelligence-be/internal/dto"
	"notes-intelligence-be/internal/entity"
	"notes-intelligence-be/internal/pkg/logger"
	"notes-intelligence-be/internal/repository/contract"
	"notes-intelligence-be/internal/repository/specification"
	"notes-intelligence-be/internal/repository/unitofwork"
	"notes-intelligence-be/pkg/embedding"
	"notes-intelligence-be/pkg/events"

	"github.com/google/uuid"
)

const (
	noteModule = "NoteService"

	defaultListLimit = 20
	// Chunks scoring below this are not considered a match.
	semanticSearchThreshold = 0.35
	semanticSearchChunks    = 30
	snippetLength           = 200
)

type INoteService interface {
	List(ctx context.Context, req *dto.ListNotesRequest) (*dto.ListNotesResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowNoteResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reindex(ctx context.Context, id uuid.UUID) error
	SemanticSearch(ctx context.Context, search string) ([]*dto.SemanticSearchResponse, error)
}

type noteService struct {
	uowFactory        unitofwork.RepositoryFactory
	publisherService  IPublisherService
	embeddingProvider embedding.EmbeddingProvider
	eventPublisher    IEventPublisher
	logger            logger.ILogger
}

// NewNoteService accepts a nil embedding provider; search then falls back
// to a literal title/content match.
func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	embeddingProvider embedding.EmbeddingProvider,
	eventPublisher IEventPublisher,
	log logger.ILogger,
) INoteService {
	return &noteService{
		uowFactory:        uowFactory,
		publisherService:  publisherService,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
		logger:            log,
	}
}

func (c *noteService) List(ctx context.Context, req *dto.ListNotesRequest) (*dto.ListNotesResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	var filters []specification.Specification
	if tag := strings.TrimSpace(req.Tag); tag != "" {
		filters = append(filters, specification.HasTag{Tag: tag})
	}

	total, err := uow.NoteRepository().Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	specs := append(filters,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: req.Offset},
	)
	notes, err := uow.NoteRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.NoteSummaryResponse, 0, len(notes))
	for _, n := range notes {
		items = append(items, &dto.NoteSummaryResponse{
			Id:             n.Id,
			Title:          n.Title,
			Tags:           n.Tags,
			TotalScore:     n.TotalScore,
			IndexingStatus: n.IndexingStatus,
			CreatedAt:      n.CreatedAt,
			UpdatedAt:      n.UpdatedAt,
		})
	}
	return &dto.ListNotesResponse{Items: items, Total: total}, nil
}

func (c *noteService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowNoteResponse, error) {
	note, err := c.find(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.ShowNoteResponse{
		Id:             note.Id,
		Title:          note.Title,
		InputSource:    note.InputSource,
		Content:        note.Content,
		Concepts:       note.Concepts,
		Tags:           note.Tags,
		Resources:      note.Resources,
		Evaluation:     note.Evaluation,
		TotalScore:     note.TotalScore,
		IndexingStatus: note.IndexingStatus,
		CreatedAt:      note.CreatedAt,
		UpdatedAt:      note.UpdatedAt,
	}, nil
}

// Delete removes the note together with its search chunks.
func (c *noteService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := c.find(ctx, id); err != nil {
		return err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	err := unitofwork.Transaction(ctx, uow, func() error {
		if err := uow.NoteEmbeddingRepository().DeleteByNoteId(ctx, id); err != nil {
			return err
		}
		return uow.NoteRepository().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	publishEvent(ctx, c.eventPublisher, c.logger, events.NoteDeleted, map[string]interface{}{"note_id": id.String()})
	return nil
}

// Reindex queues the note for embedding again.
func (c *noteService) Reindex(ctx context.Context, id uuid.UUID) error {
	if _, err := c.find(ctx, id); err != nil {
		return err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NoteRepository().UpdateIndexingStatus(ctx, id, entity.IndexingPending); err != nil {
		return err
	}

	payload, err := json.Marshal(dto.PublishEmbedNoteMessage{NoteId: id})
	if err != nil {
		return fmt.Errorf("encode indexing message: %w", err)
	}
	return c.publisherService.Publish(ctx, payload)
}

func (c *noteService) SemanticSearch(ctx context.Context, search string) ([]*dto.SemanticSearchResponse, error) {
	search = strings.TrimSpace(search)
	if search == "" {
		return []*dto.SemanticSearchResponse{}, nil
	}
	if c.embeddingProvider == nil {
		return c.literalSearch(ctx, search)
	}

	res, err := c.embeddingProvider.Generate(ctx, search, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.NoteEmbeddingRepository().SearchSimilar(ctx, res.Embedding.Values, semanticSearchChunks, nil)
	if err != nil {
		return nil, err
	}

	// Best chunk per note, in rank order.
	var order []uuid.UUID
	best := map[uuid.UUID]*contract.ScoredNoteEmbedding{}
	for _, s := range scored {
		if s.Similarity < semanticSearchThreshold {
			continue
		}
		id := s.Embedding.NoteId
		if _, ok := best[id]; !ok {
			order = append(order, id)
			best[id] = s
		}
	}
	if len(order) == 0 {
		return []*dto.SemanticSearchResponse{}, nil
	}

	notes, err := uow.NoteRepository().FindAll(ctx, specification.ByIDs{IDs: order})
	if err != nil {
		return nil, err
	}
	byId := make(map[uuid.UUID]*entity.Note, len(notes))
	for _, n := range notes {
		byId[n.Id] = n
	}

	out := make([]*dto.SemanticSearchResponse, 0, len(order))
	for _, id := range order {
		n, ok := byId[id]
		if !ok {
			continue
		}
		out = append(out, &dto.SemanticSearchResponse{
			Id:             n.Id,
			Title:          n.Title,
			Snippet:        snippet(best[id].Embedding.Document),
			CreatedAt:      n.CreatedAt,
			RelevanceScore: best[id].Similarity,
		})
	}
	return out, nil
}

func (c *noteService) literalSearch(ctx context.Context, search string) ([]*dto.SemanticSearchResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.NoteSearchQuery{Query: search},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: defaultListLimit},
	)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.SemanticSearchResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, &dto.SemanticSearchResponse{
			Id:        n.Id,
			Title:     n.Title,
			Snippet:   snippet(n.Content),
			CreatedAt: n.CreatedAt,
		})
	}
	return out, nil
}

func (c *noteService) find(ctx context.Context, id uuid.UUID) (*entity.Note, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, fmt.Errorf("note %s: %w", id, contract.ErrNotFound)
	}
	return note, nil
}

func snippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > snippetLength {
		return string(r[:snippetLength]) + "..."
	}
	return s
}
