package server

import (
	"whisp-chat-svc/src/internal/dependency"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(deps *dependency.Manager) {
	router := deps.Router
	router.Use(enableCORS)

	setupHealthEndpoint(deps)
	setupSocketRoute(router, deps)
	setupPublicRoutes(router, deps)
	setupUserRoutes(router, deps)
}

func setupHealthEndpoint(deps *dependency.Manager) {
	router := deps.Router
	cfg := deps.Config

	router.GET("/health", func(c *gin.Context) {
		log.Debug("Health check endpoint requested")

		mongoStatus := "ok"
		if err := deps.Mongodb.Client.Ping(c.Request.Context(), nil); err != nil {
			mongoStatus = "error: " + err.Error()
		}

		redisStatus := "ok"
		if err := deps.Redis.Client.Ping(c.Request.Context()).Err(); err != nil {
			redisStatus = "error: " + err.Error()
		}

		c.JSON(200, gin.H{
			"status":      "ok",
			"service":     cfg.App.Name,
			"version":     cfg.App.Version,
			"node":        deps.Delivery.Node(),
			"adapter":     cfg.Realtime.Adapter,
			"mongodb":     mongoStatus,
			"redis":       redisStatus,
			"connections": deps.Hub.Count(),
			"sessions":    deps.Registry.SessionCount(),
			"onlineUsers": len(deps.Registry.Users()),
			"timestamp":   nowRFC3339(),
		})
	})
}

func setupSocketRoute(router *gin.Engine, deps *dependency.Manager) {
	router.GET("/socket", setRouteName("socket"), deps.SocketHandler.Handle)
}

func setupPublicRoutes(router *gin.Engine, deps *dependency.Manager) {
	auth := router.Group("/api/auth")
	{
		auth.POST("/login",
			setRouteName("login"),
			deps.LoginLimiter,
			deps.UserHandler.Login)
	}
}

func setupUserRoutes(router *gin.Engine, deps *dependency.Manager) {
	authMiddleware := deps.AuthMiddleware
	handler := deps.UserHandler

	api := router.Group("/api/v1")
	{
		api.GET("/users/:id/presence",
			setRouteName("getUserPresence"),
			authMiddleware.RequireAuth(),
			handler.GetPresence)

		api.GET("/presence/online",
			setRouteName("getOnlineUsers"),
			authMiddleware.RequireAuth(),
			handler.GetOnlineUsers)
	}
}

func setRouteName(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("route_name", name)
		c.Next()
	}
}

func enableCORS(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if c.Request.Method == "OPTIONS" {
		c.AbortWithStatus(204)
		return
	}

	c.Next()
}
