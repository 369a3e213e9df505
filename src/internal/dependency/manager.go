package dependency

import (
	"time"
	"whisp-chat-svc/src/clients"
	"whisp-chat-svc/src/internal/broker"
	"whisp-chat-svc/src/internal/cache"
	"whisp-chat-svc/src/internal/config"
	"whisp-chat-svc/src/internal/middleware"
	"whisp-chat-svc/src/internal/realtime"
	"whisp-chat-svc/src/internal/session"
	"whisp-chat-svc/src/internal/user"

	"github.com/gin-gonic/gin"
)

type Manager struct {
	Router         *gin.Engine
	Config         *config.Configuration
	Mongodb        *clients.MongoDB
	Redis          *clients.RedisClient
	RabbitMQ       *clients.RabbitMQ
	Registry       session.Registry
	Hub            *realtime.Hub
	Adapter        realtime.Adapter
	Delivery       *realtime.Router
	Controller     *realtime.Controller
	SocketHandler  *realtime.SocketHandler
	AuthMiddleware *middleware.AuthMiddleware
	LoginLimiter   gin.HandlerFunc
	CacheService   cache.Service
	UserService    user.Service
	UserHandler    user.Handler
}

// NewDependencyManager wires the realtime core to its stores and transports.
// rabbitMQ may be nil unless the rabbitmq adapter is selected.
func NewDependencyManager(router *gin.Engine,
	mongodb *clients.MongoDB,
	redisClient *clients.RedisClient,
	rabbitMQ *clients.RabbitMQ,
	cfg *config.Configuration) (*Manager, error) {
	adapter, err := broker.New(cfg, redisClient, rabbitMQ)
	if err != nil {
		return nil, err
	}

	cacheService := cache.NewCacheService(redisClient.Client, cfg)
	userRepo := user.NewUserRepository(mongodb, cfg.Database.Collections.Users)
	presenceStore := user.NewPresenceStore(userRepo, cacheService)

	tokens := middleware.NewTokens(cfg.Security.JwtKey, time.Duration(cfg.Security.TokenTTLMinutes)*time.Minute)
	gate := realtime.NewGate(tokens)

	registry := session.NewRegistry()
	hub := realtime.NewHub()
	delivery := realtime.NewRouter(registry, hub, adapter)
	tracker := realtime.NewTracker(presenceStore, delivery, time.Duration(cfg.Database.Timeout)*time.Second)
	controller := realtime.NewController(gate, registry, hub, delivery, tracker)

	userService := user.NewUserService(userRepo, cacheService, tokens)
	loginLimiter := middleware.LoginRateLimiter(cacheService,
		cfg.Security.LoginMaxAttempts,
		time.Duration(cfg.Security.LoginWindowMinutes)*time.Minute)

	return &Manager{
		Router:         router,
		Config:         cfg,
		Mongodb:        mongodb,
		Redis:          redisClient,
		RabbitMQ:       rabbitMQ,
		Registry:       registry,
		Hub:            hub,
		Adapter:        adapter,
		Delivery:       delivery,
		Controller:     controller,
		SocketHandler:  realtime.NewSocketHandler(controller, &cfg.Realtime),
		AuthMiddleware: middleware.NewAuthMiddleware(gate),
		LoginLimiter:   loginLimiter,
		CacheService:   cacheService,
		UserService:    userService,
		UserHandler:    user.NewHandler(cfg, userService, registry),
	}, nil
}
