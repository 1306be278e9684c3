package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cleberrangel/jusbr-consulta/internal/metrics"
	"github.com/cleberrangel/jusbr-consulta/internal/websocket"
)

// Limites usados na avaliação de saúde
const (
	maxHeapMB        = 512
	maxWSConnections = 50
)

// HealthHandler responde health checks e métricas em JSON
type HealthHandler struct {
	storage   metrics.Pinger
	wsHub     *websocket.Hub
	version   string
	startTime time.Time
}

// NewHealthHandler cria o handler; wsHub pode ser nil
func NewHealthHandler(storage metrics.Pinger, wsHub *websocket.Hub, version string) *HealthHandler {
	return &HealthHandler{
		storage:   storage,
		wsHub:     wsHub,
		version:   version,
		startTime: time.Now(),
	}
}

// LivenessCheck indica que o processo está de pé
// @Router /health/live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// ReadinessCheck verifica o armazenamento do espelho e a memória
// @Router /health/ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	components := map[string]metrics.HealthStatus{
		"storage": metrics.CheckStorageHealth(c.Request.Context(), h.storage),
		"memory":  metrics.CheckMemoryHealth(maxHeapMB),
	}
	h.respond(c, components)
}

// DetailedHealthCheck inclui WebSocket e o estado das consultas remotas
// @Router /health [get]
func (h *HealthHandler) DetailedHealthCheck(c *gin.Context) {
	components := map[string]metrics.HealthStatus{
		"storage": metrics.CheckStorageHealth(c.Request.Context(), h.storage),
		"memory":  metrics.CheckMemoryHealth(maxHeapMB),
		"lookups": h.checkLookupHealth(),
	}
	if h.wsHub != nil {
		components["websocket"] = h.checkWebSocketHealth()
	}
	h.respond(c, components)
}

func (h *HealthHandler) respond(c *gin.Context, components map[string]metrics.HealthStatus) {
	overallStatus := metrics.DetermineOverallStatus(components)

	statusCode := http.StatusOK
	if overallStatus == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, metrics.HealthCheck{
		Status:     overallStatus,
		Version:    h.version,
		Uptime:     time.Since(h.startTime).String(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: components,
	})
}

func (h *HealthHandler) checkWebSocketHealth() metrics.HealthStatus {
	if h.wsHub.GetConnectionCount() > maxWSConnections {
		return metrics.HealthStatus{
			Status:  "degraded",
			Message: "WebSocket connections near limit",
		}
	}
	return metrics.HealthStatus{Status: "healthy"}
}

// checkLookupHealth degrada quando a maioria das consultas recentes falhou
func (h *HealthHandler) checkLookupHealth() metrics.HealthStatus {
	snapshot := metrics.Get().Snapshot()

	total := snapshot.Lookups.OK + snapshot.Lookups.Failed
	if total >= 10 {
		failureRate := float64(snapshot.Lookups.Failed) / float64(total) * 100
		if failureRate > 50 {
			return metrics.HealthStatus{
				Status:  "degraded",
				Message: "High lookup failure rate",
			}
		}
	}
	return metrics.HealthStatus{Status: "healthy"}
}

// GetMetrics retorna o snapshot completo das métricas
// @Router /api/v1/metrics [get]
func (h *HealthHandler) GetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, metrics.Get().Snapshot())
}

// GetMetricsSummary retorna os principais indicadores
// @Router /api/v1/metrics/summary [get]
func (h *HealthHandler) GetMetricsSummary(c *gin.Context) {
	snapshot := metrics.Get().Snapshot()

	requestSuccessRate := float64(0)
	if snapshot.Requests.Total > 0 {
		requestSuccessRate = float64(snapshot.Requests.Successful) / float64(snapshot.Requests.Total) * 100
	}

	lookupSuccessRate := float64(0)
	if total := snapshot.Lookups.OK + snapshot.Lookups.Failed; total > 0 {
		lookupSuccessRate = float64(snapshot.Lookups.OK) / float64(total) * 100
	}

	c.JSON(http.StatusOK, gin.H{
		"uptime_seconds": snapshot.UptimeSeconds,
		"version":        h.version,
		"requests": gin.H{
			"total":        snapshot.Requests.Total,
			"success_rate": requestSuccessRate,
			"avg_latency":  snapshot.Requests.AvgLatencyMs,
		},
		"consultas": gin.H{
			"ok":           snapshot.Lookups.OK,
			"erro":         snapshot.Lookups.Failed,
			"timeouts":     snapshot.Lookups.Timeouts,
			"success_rate": lookupSuccessRate,
		},
		"fila": gin.H{
			"total_na_fila":    snapshot.Coordinator.QueueDepth,
			"total_processado": snapshot.Coordinator.Results,
			"lotes":            snapshot.Coordinator.Batches,
		},
		"websocket": gin.H{
			"connections": snapshot.WebSocket.Connections,
		},
	})
}

// GetEndpointMetrics retorna métricas por endpoint
// @Router /api/v1/metrics/endpoints [get]
func (h *HealthHandler) GetEndpointMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"endpoints": metrics.Get().Snapshot().Endpoints,
	})
}
