package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cleberrangel/jusbr-consulta/internal/metrics"
	"github.com/cleberrangel/jusbr-consulta/internal/middleware"
	"github.com/cleberrangel/jusbr-consulta/internal/service"
	"github.com/cleberrangel/jusbr-consulta/internal/websocket"
)

// RouterConfig reúne as dependências das rotas HTTP
type RouterConfig struct {
	Service  *service.ProcessoService
	Storage  metrics.Pinger
	Hub      *websocket.Hub
	Waker    Waker
	Auth     middleware.AuthConfig
	Location *time.Location
	Version  string
	Registry *prometheus.Registry
}

// NewRouter monta o engine com rotas públicas e protegidas
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID()) // Request ID + logging estruturado
	r.Use(gin.Recovery())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.AuditMiddleware())

	healthHandler := NewHealthHandler(cfg.Storage, cfg.Hub, cfg.Version)
	processoHandler := NewProcessoHandler(cfg.Service, cfg.Waker)
	uploadHandler := NewUploadHandler(cfg.Service)
	exportHandler := NewExportHandler(cfg.Service, cfg.Location)

	// Rotas públicas
	r.GET("/health", healthHandler.DetailedHealthCheck)
	r.GET("/health/live", healthHandler.LivenessCheck)
	r.GET("/health/ready", healthHandler.ReadinessCheck)

	registry := cfg.Registry
	if registry == nil {
		registry = metrics.NewRegistry(metrics.Get())
	}
	r.GET("/metrics", gin.WrapH(metrics.Handler(registry)))

	auth := middleware.BearerAuth(cfg.Auth)

	if cfg.Hub != nil {
		wsHandler := NewWebSocketHandler(cfg.Hub)
		r.GET("/ws", websocket.TokenFromQuery(), auth, wsHandler.HandleConnection)
	}

	// Grupo de rotas protegidas
	api := r.Group("/api/v1")
	api.Use(auth)
	{
		api.GET("/metrics", healthHandler.GetMetrics)
		api.GET("/metrics/summary", healthHandler.GetMetricsSummary)
		api.GET("/metrics/endpoints", healthHandler.GetEndpointMetrics)

		processos := api.Group("/processos")
		processos.POST("", processoHandler.Consultar)
		processos.POST("/fila", processoHandler.Enfileirar)
		processos.GET("/fila", processoHandler.ListarFila)
		processos.DELETE("/fila", processoHandler.LimparFila)
		processos.POST("/lote", processoHandler.ProcessarLote)
		processos.POST("/planilha", uploadHandler.UploadPlanilha)
		processos.GET("/resultados", processoHandler.ListarResultados)
		processos.GET("/resultados/:id", processoHandler.ObterResultado)
		processos.DELETE("/resultados", processoHandler.LimparResultados)
		processos.GET("/exportar", exportHandler.Exportar)
	}

	return r
}
