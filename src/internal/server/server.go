package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"whisp-chat-svc/src/clients"
	"whisp-chat-svc/src/internal/config"
	"whisp-chat-svc/src/internal/dependency"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var log = logrus.StandardLogger()

type Server struct {
	cfg *config.Configuration
}

func New(cfg *config.Configuration) *Server {
	return &Server{cfg: cfg}
}

// Start connects the backing stores, serves until SIGINT or SIGTERM and then
// shuts down gracefully.
func (s *Server) Start() error {
	cfg := s.cfg

	mongodb, err := clients.NewMongoDB(&cfg.Database)
	if err != nil {
		return err
	}
	defer mongodb.Close()

	redisClient, err := clients.NewRedisClient(&cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	var rabbitMQ *clients.RabbitMQ
	if cfg.Realtime.Adapter == config.AdapterRabbitMQ {
		rabbitMQ, err = clients.NewRabbitMQ(&cfg.Queue.RabbitMQ)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()
	}

	gin.SetMode(ginMode(cfg.Server.Mode))
	router := gin.New()
	router.Use(gin.Recovery())

	deps, err := dependency.NewDependencyManager(router, mongodb, redisClient, rabbitMQ, cfg)
	if err != nil {
		return err
	}
	if deps.Adapter != nil {
		defer deps.Adapter.Close()
	}

	SetupRoutes(deps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := deps.Delivery.Start(ctx); err != nil {
		return fmt.Errorf("failed to start realtime adapter: %w", err)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"port":    cfg.Server.Port,
			"adapter": cfg.Realtime.Adapter,
			"node":    deps.Delivery.Node(),
		}).Infof("Server %s is listening", cfg.App.Name)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.App.Timeout)*time.Second)
	defer cancel()

	if err := drain(shutdownCtx, srv, deps.Controller.Shutdown); err != nil {
		return err
	}

	log.Info("Server stopped")
	return nil
}

type listener interface {
	Shutdown(ctx context.Context) error
}

// drain stops accepting requests, then closes the websocket connections that
// http.Server no longer tracks once they are hijacked.
func drain(ctx context.Context, srv listener, closeConnections func(context.Context)) error {
	err := srv.Shutdown(ctx)
	closeConnections(ctx)

	if err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
	return err
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func ginMode(mode string) string {
	switch mode {
	case gin.DebugMode, gin.TestMode:
		return mode
	default:
		return gin.ReleaseMode
	}
}
