package bootstrap

import (
	"context"
	"fmt"

	"notekeep-be/internal/config"
	"notekeep-be/internal/controller"
	"notekeep-be/internal/handler"
	"notekeep-be/internal/pkg/logger"
	"notekeep-be/internal/repository/memory"
	"notekeep-be/internal/repository/unitofwork"
	"notekeep-be/internal/service"
	"notekeep-be/internal/websocket"
	"notekeep-be/pkg/database"
	pktNats "notekeep-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	Logger logger.ILogger

	NoteController  controller.INoteController
	NoteSyncHandler *handler.NoteSyncHandler

	// Background services, started by main.
	ConsumerService service.IConsumerService
	SyncService     *service.SyncService
	WebSocketHub    *websocket.Hub

	natsSub *pktNats.Subscriber
	closers []func()
}

// NewStorage opens the repository factory selected by cfg.Database.Driver.
func NewStorage(cfg *config.Config) (unitofwork.RepositoryFactory, error) {
	switch cfg.Database.Driver {
	case config.StorageDriverMemory:
		return memory.NewRepositoryFactory(memory.NewNoteStore()), nil
	case config.StorageDriverPostgres:
		db, err := database.NewGormDB(database.GormConfig{
			DSN:          cfg.Database.Connection,
			MaxIdleConns: 10,
			MaxOpenConns: 50,
			LogQueries:   cfg.Database.LogQueries,
		})
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return unitofwork.NewRepositoryFactory(db), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Database.Driver)
	}
}

func NewContainer(ctx context.Context, cfg *config.Config, sysLogger logger.ILogger) (*Container, error) {
	if cfg.Auth.JwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	c := &Container{Logger: sysLogger}

	// 1. Storage
	uowFactory, err := NewStorage(cfg)
	if err != nil {
		return nil, err
	}
	reorderGuard := memory.NewReorderGuard(cfg.Ordering.ReorderLockTTL)

	// 2. In-process job bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Cluster infrastructure, both optional
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			sysLogger.Warn("Bootstrap", "Failed to parse Redis URL, using it as address", map[string]interface{}{"error": err.Error()})
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if err := rdb.Ping(ctx).Err(); err != nil {
			sysLogger.Warn("Bootstrap", "Redis unavailable, websocket fan-out stays local", map[string]interface{}{"error": err.Error()})
			_ = rdb.Close()
			rdb = nil
		} else {
			c.closers = append(c.closers, func() { _ = rdb.Close() })
		}
	}

	// Hub and sync logs go to their own file when one is configured.
	syncLogger := sysLogger
	if cfg.App.SyncLogFilePath != "" {
		syncLogger = logger.NewIsolatedLogger(cfg.App.SyncLogFilePath)
	}

	wsHub := websocket.NewHub(rdb, syncLogger)
	c.WebSocketHub = wsHub

	syncService := service.NewSyncService(nil, wsHub, syncLogger)
	var eventPublisher service.IEventPublisher = syncService

	natsPub, err := connectNats(ctx, cfg.App.NatsURL)
	if err != nil {
		sysLogger.Warn("Bootstrap", "NATS unavailable, board events stay on this instance", map[string]interface{}{"error": err.Error()})
	} else {
		c.closers = append(c.closers, natsPub.Close)

		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("Bootstrap", "NATS subscriber unavailable, board events stay on this instance", map[string]interface{}{"error": err.Error()})
		} else {
			c.natsSub = natsSub
			c.closers = append(c.closers, natsSub.Close)
			syncService = service.NewSyncService(natsSub, wsHub, syncLogger)
			eventPublisher = natsPub
		}
	}
	c.SyncService = syncService

	// 4. Services
	publisherService := service.NewPublisherService(cfg.Ordering.NormalizeTopicName, pubSub)
	noteService := service.NewNoteService(
		uowFactory,
		reorderGuard,
		publisherService,
		eventPublisher,
		sysLogger,
	)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.Ordering.NormalizeTopicName, noteService, sysLogger)

	// 5. Controllers
	c.NoteController = controller.NewNoteController(noteService, cfg.Auth.JwtSecret)
	c.NoteSyncHandler = handler.NewNoteSyncHandler(wsHub, cfg.Auth.JwtSecret, syncLogger)

	return c, nil
}

func connectNats(ctx context.Context, url string) (*pktNats.Publisher, error) {
	if url == "" {
		return nil, fmt.Errorf("NATS_URL is empty")
	}
	return pktNats.NewPublisher(ctx, url)
}

// Start launches the hub, the normalization consumer and, when NATS is
// reachable, the sync relay. All of them stop with ctx.
func (c *Container) Start(ctx context.Context) {
	go c.WebSocketHub.Run(ctx)

	go func() {
		c.Logger.Info("Bootstrap", "Starting consumer service", nil)
		if err := c.ConsumerService.Consume(ctx); err != nil {
			c.Logger.Error("Bootstrap", "Consumer service stopped", map[string]interface{}{"error": err.Error()})
		}
	}()

	if c.natsSub != nil {
		if err := c.SyncService.Start(ctx); err != nil {
			c.Logger.Error("Bootstrap", "Failed to start note sync", map[string]interface{}{"error": err.Error()})
		}
	}
}

// Close releases broker and cache connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
