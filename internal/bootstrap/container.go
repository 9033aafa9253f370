package bootstrap

import (
	"context"
	"fmt"

	"notes-intelligence-be/internal/config"
	"notes-intelligence-be/internal/controller"
	"notes-intelligence-be/internal/handler"
	"notes-intelligence-be/internal/pkg/logger"
	"notes-intelligence-be/internal/repository/unitofwork"
	"notes-intelligence-be/internal/service"
	"notes-intelligence-be/internal/tracer"
	"notes-intelligence-be/internal/websocket"
	"notes-intelligence-be/pkg/llm"
	"notes-intelligence-be/pkg/llm/factory"
	"notes-intelligence-be/pkg/pipeline"
	"notes-intelligence-be/pkg/style"

	pktNats "notes-intelligence-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	PipelineController     controller.IPipelineController
	NoteController         controller.INoteController
	StyleProfileController controller.IStyleProfileController
	ChatController         controller.IChatController

	// Background services, started by Start
	ConsumerService   service.IConsumerService
	EventRelayService service.IEventRelayService

	// WebSockets & progress
	ProgressHandler *handler.ProgressHandler
	WebSocketHub    *websocket.Hub

	Logger logger.ILogger

	natsPub *pktNats.Publisher
	natsSub *pktNats.Subscriber
	rdb     *redis.Client
}

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Job queue for note indexing
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)

	// 3. AI providers
	embeddingProvider := NewEmbeddingProvider(cfg, sysLogger)
	llmProvider, err := NewLLMProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("init LLM provider: %w", err)
	}
	sysLogger.Info("Bootstrap", "Using LLM provider", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	// 4. Infrastructure: NATS and Redis are optional
	var eventPublisher service.IEventPublisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, cfg.Keys.EventsStream, sysLogger)
	if err != nil {
		sysLogger.Warn("Bootstrap", "Failed to connect NATS publisher, domain events disabled", map[string]interface{}{"error": err.Error()})
	} else {
		eventPublisher = natsPub
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, cfg.Keys.EventsStream, sysLogger)
	if err != nil {
		sysLogger.Warn("Bootstrap", "Failed to connect NATS subscriber", map[string]interface{}{"error": err.Error()})
	}

	rdb := newRedis(cfg.App.RedisURL, sysLogger)

	wsLogger := logger.NewIsolatedLogger("logs/progress.log")
	wsHub := websocket.NewHub(rdb, wsLogger)

	// 5. Workflow with progress and metrics observers
	metrics := tracer.NewPipelineMetrics(prometheus.DefaultRegisterer)
	// No local file sources over HTTP: paths in a request stay literal text.
	wf := NewWorkflow(cfg, llmProvider, embeddingProvider, pipeline.Observers(wsHub, metrics), sysLogger)

	// 6. Services
	publisherService := service.NewPublisherService(cfg.Keys.EmbedTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.EmbedTopic,
		uowFactory,
		embeddingProvider,
		cfg.Pipeline.IndexChunkSize,
		cfg.Pipeline.IndexChunkOverlap,
		eventPublisher,
		sysLogger,
	)
	pipelineService := service.NewPipelineService(wf, uowFactory, publisherService, eventPublisher, metrics, sysLogger)
	noteService := service.NewNoteService(uowFactory, publisherService, embeddingProvider, eventPublisher, sysLogger)
	styleProfileService := service.NewStyleProfileService(
		uowFactory,
		style.NewLearner(llmProvider, cfg.Pipeline.LearnMaxRetries, sysLogger),
		eventPublisher,
		sysLogger,
	)
	chatService := service.NewChatService(uowFactory, embeddingProvider, llmProvider, sysLogger)
	relayService := service.NewEventRelayService(natsSub, wsHub, websocket.TopicAll, wsLogger)

	// 7. Controllers
	return &Container{
		PipelineController:     controller.NewPipelineController(pipelineService, wf.StageNames()),
		NoteController:         controller.NewNoteController(noteService),
		StyleProfileController: controller.NewStyleProfileController(styleProfileService),
		ChatController:         controller.NewChatController(chatService),

		ConsumerService:   consumerService,
		EventRelayService: relayService,

		ProgressHandler: handler.NewProgressHandler(wsHub, cfg.App.JwtSecret, wsLogger),
		WebSocketHub:    wsHub,
		Logger:          sysLogger,

		natsPub: natsPub,
		natsSub: natsSub,
		rdb:     rdb,
	}, nil
}

// Start launches the background workers. They stop when ctx is cancelled.
func (c *Container) Start(ctx context.Context) {
	go c.WebSocketHub.Run(ctx)

	go func() {
		if err := c.ConsumerService.Consume(ctx); err != nil {
			c.Logger.Error("Bootstrap", "Indexing consumer stopped", map[string]interface{}{"error": err.Error()})
		}
	}()

	if err := c.EventRelayService.Start(ctx); err != nil {
		c.Logger.Warn("Bootstrap", "Event relay not started", map[string]interface{}{"error": err.Error()})
	}
}

// Close releases broker connections.
func (c *Container) Close() {
	if c.natsSub != nil {
		c.natsSub.Close()
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if c.rdb != nil {
		_ = c.rdb.Close()
	}
}

// NewLLMProvider picks the API key and base URL for the configured provider.
func NewLLMProvider(cfg *config.Config) (llm.LLMProvider, error) {
	var apiKey string
	baseURL := cfg.Ai.LLMBaseURL

	switch cfg.Ai.LLMProvider {
	case "openai":
		apiKey = cfg.Keys.OpenAI
	case "huggingface":
		apiKey = cfg.Keys.HuggingFace
	default:
		if baseURL == "" {
			baseURL = cfg.Ai.OllamaBaseURL
		}
	}

	return factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, baseURL, apiKey, cfg.Ai.LLMTimeout)
}

func newRedis(url string, log logger.ILogger) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("Bootstrap", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Warn("Bootstrap", "Failed to connect to Redis, websocket fan-out stays local", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return nil
	}
	return rdb
}
