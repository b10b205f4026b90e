package bootstrap

import (
	"context"
	"log"

	"terapia-chat-be/internal/config"
	"terapia-chat-be/internal/controller"
	"terapia-chat-be/internal/pkg/logger"
	"terapia-chat-be/internal/pkg/mailer"
	"terapia-chat-be/internal/repository/memory"
	"terapia-chat-be/internal/repository/unitofwork"
	"terapia-chat-be/internal/service"
	"terapia-chat-be/internal/websocket"
	"terapia-chat-be/pkg/n8n"
	pktNats "terapia-chat-be/pkg/nats"
	"terapia-chat-be/pkg/store"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AccessController controller.IAccessController
	ChatController   controller.IChatController
	ReviewController controller.IReviewController
	StateController  controller.IStateController

	// Background services (exposed for main.go to run)
	NotifierService service.INotifierService
	SweeperService  service.ISweeperService

	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	webhookClient := n8n.NewClient(cfg.Webhooks.ChatURL, cfg.Webhooks.ReviewURL)

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	stateStore := store.NewStateStore(rdb)

	wsLogger := logger.NewIsolatedLogger("logs/refresh.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Services
	publisherService := service.NewPublisherService(cfg.Session.EventTopic, pubSub)

	limitCache := memory.NewLimitCache()
	accessService := service.NewAccessService(uowFactory, limitCache, sysLogger)
	reviewService := service.NewReviewService(uowFactory, accessService, webhookClient, publisherService, sysLogger)

	lifecycleService := service.NewLifecycleService(
		uowFactory,
		accessService,
		reviewService,
		webhookClient,
		publisherService,
		emailService,
		sysLogger,
		cfg.Session.Duration,
	)

	sweeperService := service.NewSweeperService(
		uowFactory,
		lifecycleService,
		sysLogger,
		cfg.Session.Duration,
		cfg.Session.SweepInterval,
	)

	auditLogger := logger.NewIsolatedLogger(cfg.App.AuditLogFilePath)
	notifierService := service.NewNotifierService(
		cfg.Session.EventTopic,
		pubSub,
		wsHub,
		natsPub,
		auditLogger,
		sysLogger,
	)

	// 4. Controllers
	return &Container{
		AccessController: controller.NewAccessController(accessService),
		ChatController:   controller.NewChatController(lifecycleService),
		ReviewController: controller.NewReviewController(reviewService),
		StateController:  controller.NewStateController(stateStore, wsHub, sysLogger),

		NotifierService: notifierService,
		SweeperService:  sweeperService,

		WebSocketHub: wsHub,
	}
}
