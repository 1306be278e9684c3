package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/cleberrangel/jusbr-consulta/internal/logger"
	"github.com/cleberrangel/jusbr-consulta/internal/metrics"
	"github.com/cleberrangel/jusbr-consulta/internal/model"
)

// Hub mantém os clientes conectados e distribui os eventos do coordenador
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	mutex  sync.RWMutex
	logger *zerolog.Logger
}

// Message é o envelope de toda mensagem enviada pelo servidor
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

const (
	// Tempo para escrever uma mensagem no peer
	writeWait = 10 * time.Second

	// Tempo para receber o próximo pong
	pongWait = 60 * time.Second

	// Período de ping, menor que pongWait
	pingPeriod = (pongWait * 9) / 10

	// Tamanho máximo de mensagem do cliente
	maxMessageSize = 512

	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// autenticação é feita pelo token, não pela origem
		return true
	},
}

// NewHub cria um hub de WebSocket
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.Global(),
	}
}

// Run executa o loop de registro até Stop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-h.done:
			h.closeAll()
			return
		}
	}
}

// Stop encerra o loop e fecha todas as conexões
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mutex.Unlock()

	metrics.Get().IncrementWSConnection()

	h.logger.Info().
		Str("remote_addr", client.RemoteAddr).
		Int("connections", count).
		Msg("WebSocket client registered")

	client.SendMessage(Message{
		Type:      "connection",
		Data:      map[string]string{"status": "connected"},
		Timestamp: time.Now(),
	})
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.dropLocked(client) {
		h.logger.Info().
			Str("remote_addr", client.RemoteAddr).
			Int("remaining_connections", len(h.clients)).
			Msg("WebSocket client unregistered")

		logger.Audit(context.Background(), logger.AuditEvent{
			Action:   logger.AuditActionWSDisconnect,
			Resource: "ws",
			ClientIP: client.RemoteAddr,
			Duration: time.Since(client.ConnectedAt).Milliseconds(),
			Success:  true,
		})
	}
}

// dropLocked remove o cliente e fecha seu canal uma única vez
func (h *Hub) dropLocked(client *Client) bool {
	if _, ok := h.clients[client]; !ok {
		return false
	}
	delete(h.clients, client)
	close(client.Send)
	metrics.Get().DecrementWSConnection()
	return true
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for client := range h.clients {
		h.dropLocked(client)
	}
}

// Broadcast envia a mensagem a todos os clientes. Clientes lentos são desconectados.
func (h *Hub) Broadcast(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal broadcast message")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		select {
		case client.Send <- data:
			metrics.Get().IncrementWSMessageOut()
		default:
			h.logger.Warn().
				Str("remote_addr", client.RemoteAddr).
				Msg("Client send buffer full, closing connection")
			h.dropLocked(client)
		}
	}
}

// Publish distribui um evento do coordenador (fila, resultado, lote, resultados)
func (h *Hub) Publish(evento model.Evento) {
	h.Broadcast(Message{
		Type:      evento.Tipo,
		Data:      evento,
		Timestamp: time.Now(),
	})
}

// GetConnectionCount retorna o número de conexões ativas
func (h *Hub) GetConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// RegisterClient registra um cliente diretamente (testes)
func (h *Hub) RegisterClient(client *Client) {
	h.registerClient(client)
}

// UnregisterClient remove um cliente diretamente (testes)
func (h *Hub) UnregisterClient(client *Client) {
	h.unregisterClient(client)
}
