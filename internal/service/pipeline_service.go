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
	"notes-intelligence-be/internal/repository/unitofwork"
	"notes-intelligence-be/pkg/events"
	"notes-intelligence-be/pkg/pipeline"
	"notes-intelligence-be/pkg/workflow"

	"github.com/google/uuid"
)

const pipelineModule = "PipelineService"

// WorkflowRunner executes the notes workflow. *workflow.Workflow satisfies it.
type WorkflowRunner interface {
	Run(ctx context.Context, initial *pipeline.State) (*pipeline.State, error)
}

// RunRecorder observes finished runs, e.g. for metrics.
type RunRecorder interface {
	ObserveRun(final *pipeline.State, err error)
}

type IPipelineService interface {
	Run(ctx context.Context, req *dto.RunPipelineRequest) (*dto.RunPipelineResponse, error)
}

type pipelineService struct {
	workflow         WorkflowRunner
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   IEventPublisher
	recorder         RunRecorder
	logger           logger.ILogger
}

func NewPipelineService(
	workflow WorkflowRunner,
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher IEventPublisher,
	recorder RunRecorder,
	log logger.ILogger,
) IPipelineService {
	return &pipelineService{
		workflow:         workflow,
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		recorder:         recorder,
		logger:           log,
	}
}

// Run executes the workflow, then stores the result as a note and queues it
// for indexing. A storage failure is logged and the state is still returned.
func (s *pipelineService) Run(ctx context.Context, req *dto.RunPipelineRequest) (*dto.RunPipelineResponse, error) {
	runId := req.RunId
	if runId == "" {
		runId = uuid.NewString()
	}
	ctx = pipeline.WithRunID(ctx, runId)

	profile := req.StyleProfile
	if profile == nil {
		current, err := s.currentProfile(ctx)
		if err != nil {
			s.logger.Warn(pipelineModule, "Falling back to default style profile", map[string]interface{}{"error": err.Error()})
		}
		profile = current
	}

	initial := &pipeline.State{
		InputSource:     req.InputSource,
		UserInstruction: req.UserInstruction,
		StyleProfile:    profile,
	}

	s.logger.Info(pipelineModule, "Run started", map[string]interface{}{"run_id": runId, "sources": len(req.InputSource)})
	final, err := s.workflow.Run(ctx, initial)
	if s.recorder != nil {
		s.recorder.ObserveRun(final, err)
	}
	if err != nil {
		publishEvent(ctx, s.eventPublisher, s.logger, events.PipelineFailed, map[string]interface{}{
			"run_id": runId,
			"error":  err.Error(),
		})
		return nil, err
	}

	res := &dto.RunPipelineResponse{
		RunId: runId,
		Title: workflow.Title(final.RewrittenNotes),
		State: final,
	}

	note, err := s.persist(ctx, req, final, res.Title)
	if err != nil {
		s.logger.Error(pipelineModule, "Failed to save note", map[string]interface{}{"run_id": runId, "error": err.Error()})
	} else {
		res.NoteId = &note.Id
		s.enqueueIndexing(ctx, note.Id)
		publishEvent(ctx, s.eventPublisher, s.logger, events.NoteCreated, map[string]interface{}{
			"note_id": note.Id.String(),
			"title":   note.Title,
			"run_id":  runId,
		})
	}

	publishEvent(ctx, s.eventPublisher, s.logger, events.PipelineCompleted, map[string]interface{}{
		"run_id":      runId,
		"total_score": final.TotalScore,
	})
	return res, nil
}

func (s *pipelineService) currentProfile(ctx context.Context) (map[string]any, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	p, err := uow.StyleProfileRepository().FindCurrent(ctx)
	if err != nil || p == nil {
		return nil, err
	}
	return p.Data, nil
}

func (s *pipelineService) persist(ctx context.Context, req *dto.RunPipelineRequest, final *pipeline.State, title string) (*entity.Note, error) {
	note := &entity.Note{
		Id:             uuid.New(),
		Title:          title,
		InputSource:    strings.Join(req.InputSource, "\n"),
		Content:        final.RewrittenNotes,
		Concepts:       final.Concepts,
		Tags:           final.Tags,
		Resources:      final.Resources,
		Evaluation:     final.Evaluation,
		IndexingStatus: entity.IndexingPending,
		CreatedAt:      time.Now(),
	}
	if final.TotalScore != nil {
		note.TotalScore = *final.TotalScore
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NoteRepository().Create(ctx, note); err != nil {
		return note, fmt.Errorf("create note: %w", err)
	}
	return note, nil
}

func (s *pipelineService) enqueueIndexing(ctx context.Context, noteId uuid.UUID) {
	payload, err := json.Marshal(dto.PublishEmbedNoteMessage{NoteId: noteId})
	if err != nil {
		s.logger.Error(pipelineModule, "Failed to encode indexing message", map[string]interface{}{
			"note_id": noteId.String(),
			"error":   err.Error(),
		})
		return
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.logger.Warn(pipelineModule, "Failed to queue indexing", map[string]interface{}{
			"note_id": noteId.String(),
			"error":   err.Error(),
		})
	}
}
