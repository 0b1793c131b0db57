package bootstrap

import (
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"

	"ai-bizchat-be/internal/config"
	"ai-bizchat-be/internal/controller"
	"ai-bizchat-be/internal/model"
	"ai-bizchat-be/internal/pkg/logger"
	"ai-bizchat-be/internal/pkg/mailer"
	"ai-bizchat-be/internal/repository/pgvecstore"
	"ai-bizchat-be/internal/repository/sessionstore"
	"ai-bizchat-be/internal/service"
	"ai-bizchat-be/pkg/chat/cache"
	"ai-bizchat-be/pkg/chat/intent"
	"ai-bizchat-be/pkg/chat/knowledge"
	"ai-bizchat-be/pkg/chat/session"
	"ai-bizchat-be/pkg/chat/variation"
	"ai-bizchat-be/pkg/embedding"
	"ai-bizchat-be/pkg/llm/factory"
	pkgNats "ai-bizchat-be/pkg/nats"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService
	WarmupService   service.IWarmupService

	Logger logger.ILogger
	Config *config.Config
}

func NewContainer(db *gorm.DB, cfg *config.Config, intents []intent.Intent) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
		cfg.SMTP.LeadRecipient,
	)

	// Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

	// Embedding provider
	var embeddingProvider embedding.Provider
	switch cfg.Ai.EmbeddingProvider {
	case "openai":
		embeddingProvider = embedding.NewOpenAIProvider(cfg.Ai.EmbeddingAPIKey, cfg.Ai.EmbeddingBaseURL, cfg.Ai.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.EmbeddingModel)
	default:
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.EmbeddingBaseURL, cfg.Ai.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)
	}

	// LLM provider
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		cfg.Ai.LLMAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// Vector stores: one table, two collections
	knowledgeStore := pgvecstore.New(db, embeddingProvider, model.CollectionKnowledge)
	intentStore := pgvecstore.New(db, embeddingProvider, model.CollectionIntents)

	// Session store
	var sessions sessionstore.Store
	if cfg.App.SessionStore == "redis" {
		redisStore, err := sessionstore.NewRedisStore(cfg.App.RedisURL, cfg.Chat.SessionTTL)
		if err != nil {
			log.Fatalf("[FATAL] Failed to connect session store to redis: %v", err)
		}
		sessions = redisStore
		log.Printf("[INFO] Using Session Store: REDIS")
	} else {
		sessions = sessionstore.NewMemoryStore(cfg.Chat.SessionTTL)
		log.Printf("[INFO] Using Session Store: MEMORY")
	}

	// NATS forward for lead events (optional)
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	// Chat pipeline components
	sessionManager := session.NewManager(sysLogger.Std("session"))
	resolver := intent.NewResolver(intents, intentStore, sysLogger.Std("intent"))
	retriever := knowledge.NewRetriever(knowledgeStore, sysLogger.Std("retrieval"))
	respCache := cache.New(cfg.Chat.CacheCapacity, cfg.Chat.CacheTTL)
	tracker := variation.NewTracker(time.Now().UnixNano())

	chatService := service.NewChatService(
		cfg.Chat,
		sysLogger,
		sessionManager,
		resolver,
		retriever,
		respCache,
		tracker,
		llmProvider,
		pubSub,
		cfg.Ai.FastModel,
	)

	consumerService := service.NewConsumerService(pubSub, sysLogger, emailService, natsPub)
	warmupService := service.NewWarmupService(chatService, sysLogger, cfg.Chat.WarmupWorkers, cfg.Chat.WarmupInterval)

	chatController := controller.NewChatController(chatService, warmupService, sessions, cfg.Chat.SessionTTL)

	return &Container{
		ChatController:  chatController,
		ConsumerService: consumerService,
		WarmupService:   warmupService,
		Logger:          sysLogger,
		Config:          cfg,
	}
}
