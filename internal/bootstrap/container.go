package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"prompt-builder-bot/internal/config"
	"prompt-builder-bot/internal/controller"
	"prompt-builder-bot/internal/handler"
	"prompt-builder-bot/internal/pkg/logger"
	"prompt-builder-bot/internal/repository/contract"
	"prompt-builder-bot/internal/repository/implementation"
	"prompt-builder-bot/internal/repository/memory"
	"prompt-builder-bot/internal/service"
	"prompt-builder-bot/internal/websocket"
	"prompt-builder-bot/pkg/ai/completion"
	"prompt-builder-bot/pkg/export"
	"prompt-builder-bot/pkg/llm/factory"
	pktNats "prompt-builder-bot/pkg/nats"
	"prompt-builder-bot/pkg/recommendation"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	ChatController controller.IChatController

	// Background services, started by main
	ConsumerService service.IConsumerService
	DialogueService service.IDialogueService
	WebSocketHub    *websocket.Hub
	NatsSubscriber  *pktNats.Subscriber
	NatsBridge      *handler.NatsBridgeHandler

	Logger logger.ILogger

	// maxTurn bounds one dialogue turn: a single completion call with retries
	maxTurn time.Duration
	closers []func()
}

// NewDialogue builds the dialogue service and everything it needs except
// transport. db may be nil, which disables the prompt archive.
func NewDialogue(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger, publisher service.IPublisherService) (service.IDialogueService, error) {
	llmProvider, err := factory.NewLLMProvider(factory.Config{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  cfg.Ai.BaseURL(),
		APIKey:   cfg.Ai.OpenAIAPIKey,
		Timeout:  cfg.Ai.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}
	sysLogger.Info("Bootstrap", "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	gateway := completion.NewGateway(llmProvider, recommendation.NewLenientNormalizer(), completionConfig(cfg), sysLogger)

	var archiveRepo contract.PromptArchiveRepository
	if db != nil {
		archiveRepo = implementation.NewPromptArchiveRepository(db)
	}

	sessionRepo := memory.NewSessionRepository(cfg.Session.Timeout, cfg.Session.CleanupInterval)

	return service.NewDialogueService(
		sessionRepo,
		gateway,
		export.NewFileExporter(cfg.App.ExportDir),
		archiveRepo,
		publisher,
		sysLogger,
	), nil
}

func completionConfig(cfg *config.Config) completion.Config {
	return completion.Config{
		MaxRetries:  cfg.Ai.MaxRetries,
		RetryDelay:  cfg.Ai.RetryDelay,
		MaxTokens:   cfg.Ai.MaxTokens,
		Temperature: cfg.Ai.Temperature,
	}
}

func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	c := &Container{Logger: sysLogger, maxTurn: completionConfig(cfg).MaxCallDuration(cfg.Ai.Timeout)}

	// Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)
	publisherService := service.NewPublisherService(pubSub, service.EventTopic)

	// NATS is optional: without it lifecycle events stay in process
	var relay service.Relay
	var replyPublisher handler.ReplyPublisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			relay = natsPub
			replyPublisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}

		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		} else {
			c.NatsSubscriber = natsSub
			c.closers = append(c.closers, natsSub.Close)
		}
	}
	c.ConsumerService = service.NewConsumerService(pubSub, service.EventTopic, relay, sysLogger)

	dialogueService, err := NewDialogue(db, cfg, sysLogger, publisherService)
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	c.DialogueService = dialogueService

	// Redis is optional: it only fans socket replies out across instances
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	frameHandler := handler.Dispatch(dialogueService)

	wsLogger := logger.NewIsolatedLogger("logs/websocket.log")
	c.WebSocketHub = websocket.NewHub(rdb, frameHandler, wsLogger)
	socketHandler := handler.NewChatSocketHandler(ctx, c.WebSocketHub, wsLogger)

	if c.NatsSubscriber != nil && replyPublisher != nil {
		c.NatsBridge = handler.NewNatsBridgeHandler(frameHandler, replyPublisher, sysLogger)
	}

	c.ChatController = controller.NewChatController(dialogueService, c.WebSocketHub, socketHandler.ServeWs, cfg.App.JwtSecret)
	return c
}

// Start launches the background workers. They stop when ctx is cancelled.
func (c *Container) Start(ctx context.Context) {
	go c.WebSocketHub.Run(ctx)

	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := c.ConsumerService.Consume(ctx); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	if c.NatsBridge != nil {
		opts := handler.InboundConsumerOptions(c.maxTurn)
		if err := c.NatsSubscriber.Subscribe(ctx, handler.InboundSubject, handler.InboundDurable, opts, c.NatsBridge.Handle); err != nil {
			log.Printf("[WARN] Failed to subscribe to %s: %v", handler.InboundSubject, err)
		}
	}
}

func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
