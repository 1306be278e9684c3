package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cleberrangel/jusbr-consulta/internal/logger"
	"github.com/cleberrangel/jusbr-consulta/internal/websocket"
)

// WebSocketHandler expõe o feed de eventos do coordenador
type WebSocketHandler struct {
	hub *websocket.Hub
}

// NewWebSocketHandler cria o handler de WebSocket
func NewWebSocketHandler(hub *websocket.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// HandleConnection faz o upgrade da conexão
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	logger.Audit(c.Request.Context(), logger.AuditEvent{
		Action:   logger.AuditActionWSConnect,
		Resource: "ws",
		ClientIP: c.ClientIP(),
		Success:  true,
	})
	h.hub.ServeWS(c)
}

// GetConnectionStats retorna o número de conexões ativas
func (h *WebSocketHandler) GetConnectionStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"total_connections": h.hub.GetConnectionCount(),
		},
	})
}
