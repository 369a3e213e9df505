package user

import (
	"context"
	"errors"
	"net/http"
	"time"
	"whisp-chat-svc/src/internal/config"
	"whisp-chat-svc/src/internal/models"
	"whisp-chat-svc/src/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handler interface {
	Login(c *gin.Context)
	GetPresence(c *gin.Context)
	GetOnlineUsers(c *gin.Context)
}

type handler struct {
	config   *config.Configuration
	service  Service
	registry session.Registry
}

func NewHandler(cfg *config.Configuration, service Service, registry session.Registry) Handler {
	return &handler{
		config:   cfg,
		service:  service,
		registry: registry,
	}
}

func (h *handler) Login(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
	defer cancel()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendErrorResponse(c, http.StatusBadRequest, "Invalid request", "userId and password are required")
		return
	}

	response, err := h.service.Login(ctx, &req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidCredentials):
			h.sendErrorResponse(c, http.StatusBadRequest, "Invalid credentials", "Invalid user id or password")
		case errors.Is(err, models.ErrInvalidParams):
			h.sendErrorResponse(c, http.StatusBadRequest, "Invalid request", "userId and password are required")
		default:
			logrus.WithError(err).Error("Login failed")
			h.sendErrorResponse(c, http.StatusInternalServerError, "Login failed", "Please try again later")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    response,
	})
}

func (h *handler) GetPresence(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
	defer cancel()

	userID := c.Param("id")

	presence, err := h.service.GetPresence(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUserNotFound):
			h.sendErrorResponse(c, http.StatusNotFound, "User not found", "No user found with the provided ID")
		case errors.Is(err, models.ErrInvalidParams):
			h.sendErrorResponse(c, http.StatusBadRequest, "Invalid user ID", "Please provide a valid user ID")
		default:
			logrus.WithError(err).WithField("user_id", userID).Error("Failed to get presence")
			h.sendErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve presence", err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    presence,
	})
}

func (h *handler) GetOnlineUsers(c *gin.Context) {
	users := h.registry.Users()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": &OnlineUsersResponse{
			Users: users,
			Count: len(users),
		},
	})
}

func (h *handler) sendErrorResponse(c *gin.Context, statusCode int, error, message string) {
	c.JSON(statusCode, gin.H{
		"error":   error,
		"success": false,
		"message": message,
	})
}
