package handlers

import (
	"net/http"

	"littertrack/models"
	"littertrack/services"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WebSocketHandler upgrades dashboard connections onto the hub.
type WebSocketHandler struct {
	hub *services.Hub
}

func NewWebSocketHandler(hub *services.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// Listen handles websocket connections for live dashboard updates.
func (h *WebSocketHandler) Listen(c *gin.Context) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Errorf("Error upgrading connection to websocket: %v", err)
		return
	}

	h.hub.RegisterClient(conn)
}

// HealthCheck reports the hub state.
func (h *WebSocketHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:           "healthy",
		Service:          "littertrack-websocket",
		ConnectedClients: h.hub.ConnectedClients(),
	})
}
