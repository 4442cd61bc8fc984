// Package main provides the API server entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/feastline/feastline/internal/config"
	httphandler "github.com/feastline/feastline/internal/handler/http"
	wshandler "github.com/feastline/feastline/internal/handler/websocket"
	"github.com/feastline/feastline/internal/infrastructure/auth"
	"github.com/feastline/feastline/internal/infrastructure/eventbus"
	"github.com/feastline/feastline/internal/infrastructure/metrics"
	mongodbinfra "github.com/feastline/feastline/internal/infrastructure/mongodb"
	"github.com/feastline/feastline/internal/infrastructure/payment"
	mongorepo "github.com/feastline/feastline/internal/infrastructure/repository/mongodb"
	"github.com/feastline/feastline/internal/infrastructure/websocket"
	"github.com/feastline/feastline/internal/service"
)

// Container initialization timeouts.
const (
	containerInitTimeout   = 30 * time.Second
	redisPingTimeout       = 5 * time.Second
	mongoDisconnectTimeout = 10 * time.Second
)

// Container holds all application dependencies and manages their lifecycle.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Infrastructure
	Mongo       *mongo.Client
	DB          *mongo.Database
	Redis       *redis.Client
	Bus         eventbus.Bus
	Gateway     *eventbus.Gateway
	Hub         *websocket.Hub
	Broadcaster *websocket.Broadcaster
	Tokens      *auth.TokenService
	Checkout    *payment.CheckoutBuilder

	// Metrics
	Registry     *prometheus.Registry
	ChatMetrics  *metrics.ChatMetrics
	OrderMetrics *metrics.OrderMetrics

	// Repositories
	UserRepo    *mongorepo.UserRepository
	RoomRepo    *mongorepo.RoomRepository
	MessageRepo *mongorepo.MessageRepository
	FoodRepo    *mongorepo.FoodRepository
	CartRepo    *mongorepo.CartRepository
	OrderRepo   *mongorepo.OrderRepository

	// Services
	ChatService  *service.ChatService
	UserService  *service.UserService
	FoodService  *service.FoodService
	CartService  *service.CartService
	OrderService *service.OrderService

	// Handlers
	ChatHandler  *httphandler.ChatHandler
	UserHandler  *httphandler.UserHandler
	FoodHandler  *httphandler.FoodHandler
	CartHandler  *httphandler.CartHandler
	OrderHandler *httphandler.OrderHandler
	WSHandler    *wshandler.Handler
}

// ContainerOption configures the Container.
type ContainerOption func(*Container)

// WithLogger sets a custom logger for the container.
func WithLogger(logger *slog.Logger) ContainerOption {
	return func(c *Container) {
		c.Logger = logger
	}
}

// NewContainer creates a new dependency injection container.
func NewContainer(cfg *config.Config, opts ...ContainerOption) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.setupInfrastructure(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to setup infrastructure: %w", err)
	}

	c.setupMetrics()
	c.setupRepositories()

	if err := c.setupServices(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to setup services: %w", err)
	}

	c.setupHandlers()

	if err := c.validateWiring(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("wiring validation failed: %w", err)
	}

	return c, nil
}

// setupInfrastructure initializes MongoDB, Redis, the event bus, and the hub.
func (c *Container) setupInfrastructure() error {
	ctx, cancel := context.WithTimeout(context.Background(), containerInitTimeout)
	defer cancel()

	if err := c.setupMongoDB(ctx); err != nil {
		return fmt.Errorf("mongodb: %w", err)
	}

	if err := c.setupEventBus(ctx); err != nil {
		return fmt.Errorf("eventbus: %w", err)
	}

	c.Gateway = eventbus.NewGateway(c.Bus)

	c.Hub = websocket.NewHub(
		websocket.WithHubLogger(c.Logger),
	)

	c.Broadcaster = websocket.NewBroadcaster(
		c.Hub,
		c.Bus,
		websocket.WithBroadcasterLogger(c.Logger),
	)

	return nil
}

// setupMongoDB connects to MongoDB and ensures indexes exist.
func (c *Container) setupMongoDB(ctx context.Context) error {
	client, db, err := mongodbinfra.Connect(ctx, mongodbinfra.ClientConfig{
		URI:         c.Config.MongoDB.URI,
		Database:    c.Config.MongoDB.Database,
		Timeout:     c.Config.MongoDB.Timeout,
		MaxPoolSize: c.Config.MongoDB.MaxPoolSize,
	})
	if err != nil {
		return err
	}

	c.Mongo = client
	c.DB = db

	c.Logger.InfoContext(ctx, "connected to MongoDB",
		slog.String("database", c.Config.MongoDB.Database),
	)

	indexCtx, cancel := context.WithTimeout(ctx, c.Config.MongoDB.Timeout)
	defer cancel()

	if indexErr := mongodbinfra.CreateAllIndexes(indexCtx, db); indexErr != nil {
		return fmt.Errorf("failed to create indexes: %w", indexErr)
	}

	return nil
}

// setupEventBus picks the bus implementation from configuration. Mock mode
// always runs in-memory so the server starts without Redis.
func (c *Container) setupEventBus(ctx context.Context) error {
	if c.Config.App.IsMockMode() || c.Config.EventBus.Type == "inmemory" {
		c.Bus = eventbus.NewInMemoryBus()
		c.Logger.InfoContext(ctx, "event bus initialized", slog.String("type", "inmemory"))
		return nil
	}

	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Addr,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
		PoolSize: c.Config.Redis.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if pingErr := c.Redis.Ping(pingCtx).Err(); pingErr != nil {
		return fmt.Errorf("failed to ping redis: %w", pingErr)
	}

	c.Bus = eventbus.NewRedisEventBus(
		c.Redis,
		eventbus.WithLogger(c.Logger),
		eventbus.WithChannelPrefix(c.Config.EventBus.RedisChannelPrefix),
	)

	c.Logger.InfoContext(ctx, "event bus initialized",
		slog.String("type", "redis"),
		slog.String("addr", c.Config.Redis.Addr),
	)

	return nil
}

// setupMetrics builds the registry and the domain instrument sets.
func (c *Container) setupMetrics() {
	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c.ChatMetrics = metrics.NewChatMetrics(c.Registry)
	c.OrderMetrics = metrics.NewOrderMetrics(c.Registry)
}

// setupRepositories initializes the MongoDB repositories.
func (c *Container) setupRepositories() {
	c.UserRepo = mongorepo.NewUserRepository(c.DB.Collection(mongodbinfra.CollectionUsers))
	c.RoomRepo = mongorepo.NewRoomRepository(c.DB.Collection(mongodbinfra.CollectionChatRooms))
	c.MessageRepo = mongorepo.NewMessageRepository(c.DB.Collection(mongodbinfra.CollectionMessages))
	c.FoodRepo = mongorepo.NewFoodRepository(c.DB.Collection(mongodbinfra.CollectionFoods))
	c.CartRepo = mongorepo.NewCartRepository(c.DB.Collection(mongodbinfra.CollectionCarts))
	c.OrderRepo = mongorepo.NewOrderRepository(c.DB.Collection(mongodbinfra.CollectionOrders))
}

// setupServices wires the application services.
func (c *Container) setupServices() error {
	tokens, err := auth.NewTokenService(c.Config.Auth.JWTSecret, c.Config.Auth.AccessTokenTTL)
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}
	c.Tokens = tokens

	checkout, err := payment.NewCheckoutBuilder(c.Config.Payment)
	if err != nil {
		return fmt.Errorf("checkout builder: %w", err)
	}
	c.Checkout = checkout

	c.ChatService = service.NewChatService(
		c.RoomRepo,
		c.MessageRepo,
		c.UserRepo,
		c.Gateway,
		service.WithChatLogger(c.Logger),
		service.WithChatMetrics(c.ChatMetrics),
	)

	c.UserService = service.NewUserService(
		c.UserRepo,
		c.Tokens,
		service.WithUserLogger(c.Logger),
	)

	c.FoodService = service.NewFoodService(
		c.FoodRepo,
		service.WithFoodLogger(c.Logger),
	)

	c.CartService = service.NewCartService(
		c.CartRepo,
		c.FoodRepo,
		service.WithCartLogger(c.Logger),
	)

	c.OrderService = service.NewOrderService(
		c.OrderRepo,
		c.FoodRepo,
		c.CartService,
		c.Checkout,
		service.WithOrderLogger(c.Logger),
		service.WithOrderMetrics(c.OrderMetrics),
	)

	return nil
}

// setupHandlers wires the HTTP and WebSocket handlers.
func (c *Container) setupHandlers() {
	c.ChatHandler = httphandler.NewChatHandler(c.ChatService)
	c.UserHandler = httphandler.NewUserHandler(c.UserService)
	c.FoodHandler = httphandler.NewFoodHandler(c.FoodService)
	c.CartHandler = httphandler.NewCartHandler(c.CartService)
	c.OrderHandler = httphandler.NewOrderHandler(c.OrderService)

	c.WSHandler = wshandler.NewHandler(
		c.Hub,
		wshandler.WithHandlerLogger(c.Logger),
		wshandler.WithTokenValidator(c.Tokens),
		wshandler.WithWebSocketConfig(c.Config.WebSocket),
	)
}

// validateWiring ensures required dependencies are initialized.
func (c *Container) validateWiring() error {
	var errs []error

	if c.Mongo == nil {
		errs = append(errs, errors.New("mongodb client not initialized"))
	}
	if c.Bus == nil {
		errs = append(errs, errors.New("event bus not initialized"))
	}
	if c.Hub == nil {
		errs = append(errs, errors.New("websocket hub not initialized"))
	}
	if c.Tokens == nil {
		errs = append(errs, errors.New("token service not initialized"))
	}
	if c.ChatHandler == nil || c.UserHandler == nil || c.FoodHandler == nil ||
		c.CartHandler == nil || c.OrderHandler == nil || c.WSHandler == nil {
		errs = append(errs, errors.New("handlers not fully initialized"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// StartEventBus registers the broadcaster and runs the bus delivery loop
// until the context is cancelled.
func (c *Container) StartEventBus(ctx context.Context) error {
	if err := c.Broadcaster.Start(ctx); err != nil {
		return fmt.Errorf("failed to start broadcaster: %w", err)
	}

	go func() {
		if err := c.Bus.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			c.Logger.Error("event bus stopped", slog.String("error", err.Error()))
		}
	}()

	c.Logger.InfoContext(ctx, "event bus started")
	return nil
}

// StartHub runs the WebSocket hub loop until the context is cancelled.
func (c *Container) StartHub(ctx context.Context) {
	go c.Hub.Run(ctx)
	c.Logger.InfoContext(ctx, "websocket hub started")
}

// Close releases container resources in reverse initialization order.
func (c *Container) Close() error {
	var errs []error

	if c.Bus != nil {
		if err := c.Bus.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("eventbus shutdown: %w", err))
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}

	if c.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), mongoDisconnectTimeout)
		defer cancel()

		if err := c.Mongo.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mongodb disconnect: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
