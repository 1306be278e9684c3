package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gws "github.com/gorilla/websocket"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleberrangel/jusbr-consulta/internal/model"
)

// drainWelcomeMessage descarta a mensagem de boas-vindas enviada no registro
func drainWelcomeMessage(client *Client) {
	select {
	case <-client.Send:
	case <-time.After(100 * time.Millisecond):
	}
}

func decode(t *testing.T, data []byte) Message {
	t.Helper()
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestPublishReachesAllClients(t *testing.T) {
	hub := NewHub()
	a := NewClient(hub, "a")
	b := NewClient(hub, "b")
	hub.RegisterClient(a)
	hub.RegisterClient(b)
	drainWelcomeMessage(a)
	drainWelcomeMessage(b)

	hub.Publish(model.Evento{Tipo: model.EventoFila, TotalNaFila: 3})

	for _, c := range []*Client{a, b} {
		select {
		case data := <-c.Send:
			msg := decode(t, data)
			assert.Equal(t, model.EventoFila, msg.Type)
			assert.Contains(t, string(data), `"total_na_fila":3`)
		case <-time.After(time.Second):
			t.Fatal("evento não entregue")
		}
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	hub := NewHub()
	c := NewClient(hub, "a")
	hub.RegisterClient(c)
	assert.Equal(t, 1, hub.GetConnectionCount())

	hub.UnregisterClient(c)
	hub.UnregisterClient(c)
	assert.Equal(t, 0, hub.GetConnectionCount())

	// canal fechado após o primeiro unregister
	drainWelcomeMessage(c)
	_, ok := <-c.Send
	assert.False(t, ok)

	// mensagens para clientes removidos são ignoradas
	c.SendMessage(Message{Type: "pong"})
	hub.Publish(model.Evento{Tipo: model.EventoLote})
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := NewHub()
	c := NewClient(hub, "lento")
	hub.RegisterClient(c)

	for i := 0; i < sendBuffer+1; i++ {
		hub.Publish(model.Evento{Tipo: model.EventoResultado})
	}

	assert.Equal(t, 0, hub.GetConnectionCount())
}

func TestServeWSDeliversEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	r := gin.New()
	r.GET("/ws", hub.ServeWS)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "connection", decode(t, data).Type)

	require.Eventually(t, func() bool { return hub.GetConnectionCount() == 1 }, time.Second, 10*time.Millisecond)

	registro := model.ProcessRecord{ID: "x", NumeroProcesso: "56184373920218090083"}
	hub.Publish(model.Evento{Tipo: model.EventoResultado, Numero: "56184373920218090083", Registro: &registro})

	_, data, err = conn.ReadMessage()
	require.NoError(t, err)
	msg := decode(t, data)
	assert.Equal(t, model.EventoResultado, msg.Type)
	assert.Contains(t, string(data), `"numeroProcesso":"56184373920218090083"`)

	require.NoError(t, conn.WriteMessage(gws.TextMessage, []byte(`{"type":"ping"}`)))
	_, data, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "pong", decode(t, data).Type)
}

func TestTokenFromQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TokenFromQuery())
	r.GET("/ws", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetHeader("Authorization"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?token=abc", nil))
	assert.Equal(t, "Bearer abc", w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ws?token=abc", nil)
	req.Header.Set("Authorization", "Bearer header")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "Bearer header", w.Body.String())
}

// TestBroadcastProperties verifica que todo cliente registrado recebe cada evento, em ordem
func TestBroadcastProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("eventos chegam a todos os clientes na ordem publicada", prop.ForAll(
		func(clients, eventos int) bool {
			hub := NewHub()
			list := make([]*Client, 0, clients)
			for i := 0; i < clients; i++ {
				c := NewClient(hub, "c")
				hub.RegisterClient(c)
				drainWelcomeMessage(c)
				list = append(list, c)
			}

			for i := 0; i < eventos; i++ {
				hub.Publish(model.Evento{Tipo: model.EventoResultado, TotalProcessado: i})
			}

			for _, c := range list {
				if len(c.Send) != eventos {
					return false
				}
				for i := 0; i < eventos; i++ {
					var msg struct {
						Data model.Evento `json:"data"`
					}
					if err := json.Unmarshal(<-c.Send, &msg); err != nil {
						return false
					}
					if msg.Data.TotalProcessado != i {
						return false
					}
				}
			}
			return hub.GetConnectionCount() == clients
		},
		gen.IntRange(1, 5),
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
