package metrics

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// EndpointMetrics tracks metrics for a specific endpoint
type EndpointMetrics struct {
	Requests     int64
	Errors       int64
	TotalLatency int64
}

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Request metrics
	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64
	TotalLatency       int64
	RequestCount       int64

	// Detail API (JusBR) lookups
	LookupsOK       int64
	LookupsFailed   int64
	LookupsTimeout  int64
	LookupLatencyMs int64

	// Registry (DataJud)
	RegistryQueries   int64
	RegistryFallbacks int64
	RegistryCacheHits int64

	// Coordinator
	BatchesDrained int64
	ItemsDrained   int64
	QueueDepth     int64
	ResultsCount   int64

	// Files
	FilesUploaded      int64
	TotalBytesUploaded int64
	ExportsGenerated   int64
	ExportErrors       int64

	// WebSocket metrics
	WSConnections int64
	WSMessagesOut int64

	EndpointMetrics map[string]*EndpointMetrics

	StartTime time.Time
}

var globalMetrics *Metrics
var once sync.Once

// New cria uma instância isolada de métricas
func New() *Metrics {
	return &Metrics{
		StartTime:       time.Now(),
		EndpointMetrics: make(map[string]*EndpointMetrics),
	}
}

// Init initializes the global metrics instance
func Init() {
	once.Do(func() {
		globalMetrics = New()
	})
}

// Get returns the global metrics instance
func Get() *Metrics {
	Init()
	return globalMetrics
}

// IncrementRequests increments request counters
func (m *Metrics) IncrementRequests(success bool, latencyMs int64) {
	atomic.AddInt64(&m.TotalRequests, 1)
	atomic.AddInt64(&m.TotalLatency, latencyMs)
	atomic.AddInt64(&m.RequestCount, 1)

	if success {
		atomic.AddInt64(&m.SuccessfulRequests, 1)
	} else {
		atomic.AddInt64(&m.FailedRequests, 1)
	}
}

// RecordLookup registra uma consulta à API de detalhe
func (m *Metrics) RecordLookup(failed, timeout bool, latency time.Duration) {
	switch {
	case timeout:
		atomic.AddInt64(&m.LookupsTimeout, 1)
		atomic.AddInt64(&m.LookupsFailed, 1)
	case failed:
		atomic.AddInt64(&m.LookupsFailed, 1)
	default:
		atomic.AddInt64(&m.LookupsOK, 1)
	}
	atomic.AddInt64(&m.LookupLatencyMs, latency.Milliseconds())
}

// RecordRegistry registra uma resolução de sistema no DataJud
func (m *Metrics) RecordRegistry(cacheHit, fallback bool) {
	if cacheHit {
		atomic.AddInt64(&m.RegistryCacheHits, 1)
		return
	}
	atomic.AddInt64(&m.RegistryQueries, 1)
	if fallback {
		atomic.AddInt64(&m.RegistryFallbacks, 1)
	}
}

// RecordBatch registra um lote drenado
func (m *Metrics) RecordBatch(items int) {
	atomic.AddInt64(&m.BatchesDrained, 1)
	atomic.AddInt64(&m.ItemsDrained, int64(items))
}

// SetState atualiza os gauges de fila e resultados
func (m *Metrics) SetState(queue, results int) {
	atomic.StoreInt64(&m.QueueDepth, int64(queue))
	atomic.StoreInt64(&m.ResultsCount, int64(results))
}

// IncrementFileUpload increments file upload counters
func (m *Metrics) IncrementFileUpload(bytes int64) {
	atomic.AddInt64(&m.FilesUploaded, 1)
	atomic.AddInt64(&m.TotalBytesUploaded, bytes)
}

// IncrementExport registra a geração de uma planilha de resultados
func (m *Metrics) IncrementExport(success bool) {
	if success {
		atomic.AddInt64(&m.ExportsGenerated, 1)
	} else {
		atomic.AddInt64(&m.ExportErrors, 1)
	}
}

// IncrementWSConnection increments WebSocket connection counter
func (m *Metrics) IncrementWSConnection() {
	atomic.AddInt64(&m.WSConnections, 1)
}

// DecrementWSConnection decrements WebSocket connection counter
func (m *Metrics) DecrementWSConnection() {
	atomic.AddInt64(&m.WSConnections, -1)
}

// IncrementWSMessageOut increments WebSocket outgoing message counter
func (m *Metrics) IncrementWSMessageOut() {
	atomic.AddInt64(&m.WSMessagesOut, 1)
}

// TrackEndpoint tracks metrics for a specific endpoint
func (m *Metrics) TrackEndpoint(path, method string, statusCode int, latencyMs int64) {
	key := method + " " + path

	m.mu.Lock()
	defer m.mu.Unlock()

	em, exists := m.EndpointMetrics[key]
	if !exists {
		em = &EndpointMetrics{}
		m.EndpointMetrics[key] = em
	}

	atomic.AddInt64(&em.Requests, 1)
	atomic.AddInt64(&em.TotalLatency, latencyMs)
	if statusCode >= 400 {
		atomic.AddInt64(&em.Errors, 1)
	}
}

// GetEndpointMetrics returns a copy of endpoint metrics
func (m *Metrics) GetEndpointMetrics() map[string]EndpointMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]EndpointMetrics, len(m.EndpointMetrics))
	for k, v := range m.EndpointMetrics {
		result[k] = EndpointMetrics{
			Requests:     atomic.LoadInt64(&v.Requests),
			Errors:       atomic.LoadInt64(&v.Errors),
			TotalLatency: atomic.LoadInt64(&v.TotalLatency),
		}
	}
	return result
}

// GetAverageLatency returns average request latency in milliseconds
func (m *Metrics) GetAverageLatency() float64 {
	count := atomic.LoadInt64(&m.RequestCount)
	if count == 0 {
		return 0
	}
	return float64(atomic.LoadInt64(&m.TotalLatency)) / float64(count)
}

// GetUptime returns the application uptime
func (m *Metrics) GetUptime() time.Duration {
	return time.Since(m.StartTime)
}

// EndpointMetricsSnapshot represents endpoint metrics in a snapshot
type EndpointMetricsSnapshot struct {
	Requests     int64   `json:"requests"`
	Errors       int64   `json:"errors"`
	ErrorRate    float64 `json:"error_rate"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// MetricsSnapshot represents a point-in-time snapshot of all metrics
type MetricsSnapshot struct {
	UptimeSeconds float64 `json:"uptime_seconds"`
	StartTime     string  `json:"start_time"`

	Requests struct {
		Total        int64   `json:"total"`
		Successful   int64   `json:"successful"`
		Failed       int64   `json:"failed"`
		AvgLatencyMs float64 `json:"avg_latency_ms"`
	} `json:"requests"`

	Lookups struct {
		OK           int64   `json:"ok"`
		Failed       int64   `json:"failed"`
		Timeouts     int64   `json:"timeouts"`
		AvgLatencyMs float64 `json:"avg_latency_ms"`
	} `json:"lookups"`

	Registry struct {
		Queries   int64 `json:"queries"`
		Fallbacks int64 `json:"fallbacks"`
		CacheHits int64 `json:"cache_hits"`
	} `json:"registry"`

	Coordinator struct {
		Batches    int64 `json:"batches"`
		Items      int64 `json:"items"`
		QueueDepth int64 `json:"queue_depth"`
		Results    int64 `json:"results"`
	} `json:"coordinator"`

	Files struct {
		Uploaded     int64 `json:"uploaded"`
		TotalBytes   int64 `json:"total_bytes"`
		Exports      int64 `json:"exports"`
		ExportErrors int64 `json:"export_errors"`
	} `json:"files"`

	WebSocket struct {
		Connections int64 `json:"connections"`
		MessagesOut int64 `json:"messages_out"`
	} `json:"websocket"`

	System struct {
		Goroutines   int    `json:"goroutines"`
		HeapAllocMB  uint64 `json:"heap_alloc_mb"`
		HeapInUseMB  uint64 `json:"heap_inuse_mb"`
		StackInUseMB uint64 `json:"stack_inuse_mb"`
		NumGC        uint32 `json:"num_gc"`
	} `json:"system"`

	Endpoints map[string]EndpointMetricsSnapshot `json:"endpoints,omitempty"`
}

// Snapshot returns a point-in-time snapshot of all metrics
func (m *Metrics) Snapshot() MetricsSnapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	snapshot := MetricsSnapshot{}

	snapshot.UptimeSeconds = m.GetUptime().Seconds()
	snapshot.StartTime = m.StartTime.Format(time.RFC3339)

	snapshot.Requests.Total = atomic.LoadInt64(&m.TotalRequests)
	snapshot.Requests.Successful = atomic.LoadInt64(&m.SuccessfulRequests)
	snapshot.Requests.Failed = atomic.LoadInt64(&m.FailedRequests)
	snapshot.Requests.AvgLatencyMs = m.GetAverageLatency()

	snapshot.Lookups.OK = atomic.LoadInt64(&m.LookupsOK)
	snapshot.Lookups.Failed = atomic.LoadInt64(&m.LookupsFailed)
	snapshot.Lookups.Timeouts = atomic.LoadInt64(&m.LookupsTimeout)
	if total := snapshot.Lookups.OK + snapshot.Lookups.Failed; total > 0 {
		snapshot.Lookups.AvgLatencyMs = float64(atomic.LoadInt64(&m.LookupLatencyMs)) / float64(total)
	}

	snapshot.Registry.Queries = atomic.LoadInt64(&m.RegistryQueries)
	snapshot.Registry.Fallbacks = atomic.LoadInt64(&m.RegistryFallbacks)
	snapshot.Registry.CacheHits = atomic.LoadInt64(&m.RegistryCacheHits)

	snapshot.Coordinator.Batches = atomic.LoadInt64(&m.BatchesDrained)
	snapshot.Coordinator.Items = atomic.LoadInt64(&m.ItemsDrained)
	snapshot.Coordinator.QueueDepth = atomic.LoadInt64(&m.QueueDepth)
	snapshot.Coordinator.Results = atomic.LoadInt64(&m.ResultsCount)

	snapshot.Files.Uploaded = atomic.LoadInt64(&m.FilesUploaded)
	snapshot.Files.TotalBytes = atomic.LoadInt64(&m.TotalBytesUploaded)
	snapshot.Files.Exports = atomic.LoadInt64(&m.ExportsGenerated)
	snapshot.Files.ExportErrors = atomic.LoadInt64(&m.ExportErrors)

	snapshot.WebSocket.Connections = atomic.LoadInt64(&m.WSConnections)
	snapshot.WebSocket.MessagesOut = atomic.LoadInt64(&m.WSMessagesOut)

	snapshot.System.Goroutines = runtime.NumGoroutine()
	snapshot.System.HeapAllocMB = memStats.HeapAlloc / 1024 / 1024
	snapshot.System.HeapInUseMB = memStats.HeapInuse / 1024 / 1024
	snapshot.System.StackInUseMB = memStats.StackInuse / 1024 / 1024
	snapshot.System.NumGC = memStats.NumGC

	endpointMetrics := m.GetEndpointMetrics()
	if len(endpointMetrics) > 0 {
		snapshot.Endpoints = make(map[string]EndpointMetricsSnapshot, len(endpointMetrics))
		for k, v := range endpointMetrics {
			em := EndpointMetricsSnapshot{
				Requests: v.Requests,
				Errors:   v.Errors,
			}
			if v.Requests > 0 {
				em.ErrorRate = float64(v.Errors) / float64(v.Requests) * 100
				em.AvgLatencyMs = float64(v.TotalLatency) / float64(v.Requests)
			}
			snapshot.Endpoints[k] = em
		}
	}

	return snapshot
}

// HealthStatus represents the health status of a component
type HealthStatus struct {
	Status  string `json:"status"` // "healthy", "degraded", "unhealthy"
	Message string `json:"message,omitempty"`
	Latency int64  `json:"latency_ms,omitempty"`
}

// HealthCheck represents the overall health check response
type HealthCheck struct {
	Status     string                  `json:"status"`
	Version    string                  `json:"version"`
	Uptime     string                  `json:"uptime"`
	Timestamp  string                  `json:"timestamp"`
	Components map[string]HealthStatus `json:"components"`
}

// Pinger é qualquer armazenamento que sabe verificar a própria conexão
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckStorageHealth verifica a conectividade do espelho durável
func CheckStorageHealth(ctx context.Context, p Pinger) HealthStatus {
	start := time.Now()

	if p == nil {
		return HealthStatus{
			Status:  "unhealthy",
			Message: "storage not initialized",
		}
	}

	err := p.Ping(ctx)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return HealthStatus{
			Status:  "unhealthy",
			Message: err.Error(),
			Latency: latency,
		}
	}

	if latency > 100 {
		return HealthStatus{
			Status:  "degraded",
			Message: "high latency",
			Latency: latency,
		}
	}

	return HealthStatus{
		Status:  "healthy",
		Latency: latency,
	}
}

// CheckMemoryHealth checks memory usage
func CheckMemoryHealth(maxHeapMB uint64) HealthStatus {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	heapMB := memStats.HeapAlloc / 1024 / 1024

	if heapMB > maxHeapMB {
		return HealthStatus{
			Status:  "unhealthy",
			Message: "heap memory exceeds limit",
		}
	}

	if heapMB > (maxHeapMB * 80 / 100) {
		return HealthStatus{
			Status:  "degraded",
			Message: "heap memory usage high",
		}
	}

	return HealthStatus{Status: "healthy"}
}

// DetermineOverallStatus determines overall health from component statuses
func DetermineOverallStatus(components map[string]HealthStatus) string {
	hasUnhealthy := false
	hasDegraded := false

	for _, status := range components {
		switch status.Status {
		case "unhealthy":
			hasUnhealthy = true
		case "degraded":
			hasDegraded = true
		}
	}

	if hasUnhealthy {
		return "unhealthy"
	}
	if hasDegraded {
		return "degraded"
	}
	return "healthy"
}
