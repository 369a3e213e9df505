package realtime

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"
	"whisp-chat-svc/src/internal/config"
	"whisp-chat-svc/src/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// SocketHandler upgrades authenticated HTTP requests to websocket connections.
type SocketHandler struct {
	controller *Controller
	upgrader   websocket.Upgrader
	sendBuffer int
	writeWait  time.Duration
	pongWait   time.Duration
	maxMessage int64
}

func NewSocketHandler(controller *Controller, cfg *config.RealtimeConfig) *SocketHandler {
	allowed := cfg.AllowedOrigin
	return &SocketHandler{
		controller: controller,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowed == "" || allowed == "*" {
					return true
				}
				return r.Header.Get("Origin") == allowed
			},
		},
		sendBuffer: cfg.SendBuffer,
		writeWait:  time.Duration(cfg.WriteWaitSeconds) * time.Second,
		pongWait:   time.Duration(cfg.PongWaitSeconds) * time.Second,
		maxMessage: cfg.MaxMessageBytes,
	}
}

// Handle authenticates the request before upgrading it.
func (h *SocketHandler) Handle(c *gin.Context) {
	userID, err := h.controller.Authenticate(socketToken(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication error",
		})
		c.Abort()
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("Websocket upgrade failed")
		return
	}

	client := newSocketClient(ws, h.sendBuffer, h.writeWait, h.pongWait)
	conn := h.controller.Open(userID, client)
	client.Send(Event{Name: EventReady, Data: ReadyPayload{SessionID: conn.ID(), UserID: userID}})

	go client.writePump()
	h.readPump(client, conn)
}

func (h *SocketHandler) readPump(client *socketClient, conn *Connection) {
	ctx := context.Background()
	defer h.controller.Close(ctx, conn)

	ws := client.ws
	if h.maxMessage > 0 {
		ws.SetReadLimit(h.maxMessage)
	}
	_ = ws.SetReadDeadline(time.Now().Add(h.pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	for {
		var frame Frame
		if err := ws.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.WithError(err).WithField("session_id", conn.ID()).Warn("Websocket read error")
			}
			return
		}

		if err := h.controller.Dispatch(ctx, conn, frame); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"session_id": conn.ID(),
				"user_id":    conn.UserID(),
				"event":      frame.Event,
			}).Warn("Failed to handle event")

			if errors.Is(err, models.ErrConnClosed) {
				return
			}
			client.Send(Event{Name: EventError, Data: ErrorPayload{Message: err.Error()}})
		}
	}
}

// socketToken reads the credential from the token query parameter or a bearer header.
func socketToken(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}

	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

type socketClient struct {
	ws        *websocket.Conn
	send      chan Event
	done      chan struct{}
	closeOnce sync.Once
	writeWait time.Duration
	pingEvery time.Duration
}

func newSocketClient(ws *websocket.Conn, buffer int, writeWait, pongWait time.Duration) *socketClient {
	return &socketClient{
		ws:        ws,
		send:      make(chan Event, buffer),
		done:      make(chan struct{}),
		writeWait: writeWait,
		pingEvery: pongWait * 9 / 10,
	}
}

// Send queues ev without blocking. A full queue drops the event.
func (s *socketClient) Send(ev Event) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.send <- ev:
		return true
	case <-s.done:
		return false
	default:
		return false
	}
}

func (s *socketClient) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.ws.Close()
	})
	return err
}

func (s *socketClient) writePump() {
	ticker := time.NewTicker(s.pingEvery)
	defer func() {
		ticker.Stop()
		_ = s.Close()
	}()

	for {
		select {
		case <-s.done:
			return
		case ev := <-s.send:
			_ = s.ws.SetWriteDeadline(time.Now().Add(s.writeWait))
			if err := s.ws.WriteJSON(ev); err != nil {
				logrus.WithError(err).WithField("event", ev.Name).Debug("Websocket write failed")
				return
			}
		case <-ticker.C:
			_ = s.ws.SetWriteDeadline(time.Now().Add(s.writeWait))
			if err := s.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
