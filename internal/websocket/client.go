package websocket

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Client liga uma conexão WebSocket ao hub
type Client struct {
	conn *websocket.Conn

	// Canal de saída; fechado apenas pelo hub
	Send chan []byte

	Hub        *Hub
	RemoteAddr string

	ConnectedAt time.Time
	LastPing    time.Time
}

// NewClient cria um cliente sem conexão (usado pelo hub e pelos testes)
func NewClient(hub *Hub, remoteAddr string) *Client {
	now := time.Now()
	return &Client{
		Send:        make(chan []byte, sendBuffer),
		Hub:         hub,
		RemoteAddr:  remoteAddr,
		ConnectedAt: now,
		LastPing:    now,
	}
}

// ServeWS faz o upgrade da requisição e registra o cliente
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("remote_addr", c.ClientIP()).
			Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := NewClient(h, c.ClientIP())
	client.conn = conn

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump lê mensagens do cliente; só existe um leitor por conexão
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.LastPing = time.Now()
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Error().
					Err(err).
					Str("remote_addr", c.RemoteAddr).
					Msg("WebSocket connection closed unexpectedly")
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump envia as mensagens do hub; só existe um escritor por conexão
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// o hub fechou o canal
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.Hub.logger.Debug().
			Err(err).
			Str("remote_addr", c.RemoteAddr).
			Msg("Failed to unmarshal client message")
		return
	}

	switch msg.Type {
	case "ping":
		c.SendMessage(Message{Type: "pong", Timestamp: time.Now()})
	default:
		c.Hub.logger.Debug().
			Str("remote_addr", c.RemoteAddr).
			Str("message_type", msg.Type).
			Msg("Unknown message type received from client")
	}
}

// SendMessage envia uma mensagem só para este cliente; descarta se o buffer estiver cheio
func (c *Client) SendMessage(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		c.Hub.logger.Error().
			Err(err).
			Str("remote_addr", c.RemoteAddr).
			Msg("Failed to marshal message for client")
		return
	}

	c.Hub.mutex.RLock()
	defer c.Hub.mutex.RUnlock()
	if !c.Hub.clients[c] {
		return
	}

	select {
	case c.Send <- data:
	default:
		c.Hub.logger.Warn().
			Str("remote_addr", c.RemoteAddr).
			Msg("Client send buffer full, message dropped")
	}
}

// GetConnectionInfo retorna dados da conexão
func (c *Client) GetConnectionInfo() map[string]interface{} {
	return map[string]interface{}{
		"remote_addr":  c.RemoteAddr,
		"connected_at": c.ConnectedAt,
		"last_ping":    c.LastPing,
	}
}
