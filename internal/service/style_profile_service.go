package service

import (
	"context"
	"time"

	"notes-intelligence-be/internal/dto"
	"notes-intelligence-be/internal/entity"
	"notes-intelligence-be/internal/pkg/logger"
	"notes-intelligence-be/internal/repository/unitofwork"
	"notes-intelligence-be/pkg/events"
	"notes-intelligence-be/pkg/style"

	"github.com/google/uuid"
)

const styleModule = "StyleProfileService"

// StyleLearner infers a profile from a sample note. *style.Learner satisfies it.
type StyleLearner interface {
	Learn(ctx context.Context, note string) (style.Profile, error)
}

type IStyleProfileService interface {
	Get(ctx context.Context) (*dto.StyleProfileResponse, error)
	Replace(ctx context.Context, req *dto.ReplaceStyleProfileRequest) (*dto.StyleProfileResponse, error)
	Reset(ctx context.Context) (*dto.StyleProfileResponse, error)
	// Learn merges a profile inferred from the note over the current one and saves it.
	Learn(ctx context.Context, req *dto.LearnStyleProfileRequest) (*dto.StyleProfileResponse, error)
}

type styleProfileService struct {
	uowFactory     unitofwork.RepositoryFactory
	learner        StyleLearner
	eventPublisher IEventPublisher
	logger         logger.ILogger
}

func NewStyleProfileService(
	uowFactory unitofwork.RepositoryFactory,
	learner StyleLearner,
	eventPublisher IEventPublisher,
	log logger.ILogger,
) IStyleProfileService {
	return &styleProfileService{
		uowFactory:     uowFactory,
		learner:        learner,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

// Get returns the stored profile, or the all-defaults profile if none was saved.
func (s *styleProfileService) Get(ctx context.Context) (*dto.StyleProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	current, err := uow.StyleProfileRepository().FindCurrent(ctx)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return &dto.StyleProfileResponse{Profile: style.DefaultProfile()}, nil
	}
	return toProfileResponse(current), nil
}

func (s *styleProfileService) Replace(ctx context.Context, req *dto.ReplaceStyleProfileRequest) (*dto.StyleProfileResponse, error) {
	return s.save(ctx, req.Profile)
}

func (s *styleProfileService) Reset(ctx context.Context) (*dto.StyleProfileResponse, error) {
	return s.save(ctx, style.DefaultProfile())
}

func (s *styleProfileService) Learn(ctx context.Context, req *dto.LearnStyleProfileRequest) (*dto.StyleProfileResponse, error) {
	learned, err := s.learner.Learn(ctx, req.Note)
	if err != nil {
		return nil, err
	}

	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.save(ctx, style.Merge(current.Profile, learned))
	if err != nil {
		return nil, err
	}

	s.logger.Info(styleModule, "Style profile learned", nil)
	publishEvent(ctx, s.eventPublisher, s.logger, events.StyleProfileLearned, map[string]interface{}{
		"sections": len(learned),
	})
	return res, nil
}

func (s *styleProfileService) save(ctx context.Context, data map[string]any) (*dto.StyleProfileResponse, error) {
	now := time.Now()
	p := &entity.StyleProfile{
		Id:        uuid.New(),
		Data:      data,
		CreatedAt: now,
		UpdatedAt: &now,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.StyleProfileRepository().Replace(ctx, p); err != nil {
		return nil, err
	}
	return toProfileResponse(p), nil
}

func toProfileResponse(p *entity.StyleProfile) *dto.StyleProfileResponse {
	return &dto.StyleProfileResponse{Profile: p.Data, UpdatedAt: p.UpdatedAt}
}
