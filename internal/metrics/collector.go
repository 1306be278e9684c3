package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "jusbr"

// snapshotCollector expõe os contadores atômicos no formato Prometheus a cada scrape
type snapshotCollector struct {
	m *Metrics

	requests        *prometheus.Desc
	lookups         *prometheus.Desc
	lookupTimeouts  *prometheus.Desc
	registryQueries *prometheus.Desc
	registryHits    *prometheus.Desc
	registryFalls   *prometheus.Desc
	batches         *prometheus.Desc
	items           *prometheus.Desc
	queueDepth      *prometheus.Desc
	results         *prometheus.Desc
	uploads         *prometheus.Desc
	uploadBytes     *prometheus.Desc
	exports         *prometheus.Desc
	wsConnections   *prometheus.Desc
}

// NewCollector cria um prometheus.Collector sobre as métricas da aplicação
func NewCollector(m *Metrics) prometheus.Collector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
	}

	return &snapshotCollector{
		m:               m,
		requests:        desc("http_requests_total", "Requisições HTTP atendidas.", "result"),
		lookups:         desc("lookups_total", "Consultas à API de detalhe.", "result"),
		lookupTimeouts:  desc("lookup_timeouts_total", "Consultas encerradas por timeout."),
		registryQueries: desc("registry_queries_total", "Consultas ao DataJud."),
		registryHits:    desc("registry_cache_hits_total", "Sistemas resolvidos pelo cache."),
		registryFalls:   desc("registry_fallbacks_total", "Consultas ao DataJud que caíram para N/A."),
		batches:         desc("batches_total", "Lotes drenados."),
		items:           desc("batch_items_total", "Itens processados em lotes."),
		queueDepth:      desc("queue_depth", "Processos aguardando na fila."),
		results:         desc("results", "Resultados acumulados."),
		uploads:         desc("uploads_total", "Planilhas recebidas."),
		uploadBytes:     desc("upload_bytes_total", "Bytes de planilhas recebidas."),
		exports:         desc("exports_total", "Planilhas exportadas.", "result"),
		wsConnections:   desc("websocket_connections", "Conexões WebSocket abertas."),
	}
}

func (c *snapshotCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.requests
	ch <- c.lookups
	ch <- c.lookupTimeouts
	ch <- c.registryQueries
	ch <- c.registryHits
	ch <- c.registryFalls
	ch <- c.batches
	ch <- c.items
	ch <- c.queueDepth
	ch <- c.results
	ch <- c.uploads
	ch <- c.uploadBytes
	ch <- c.exports
	ch <- c.wsConnections
}

func (c *snapshotCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.m.Snapshot()

	counter := func(d *prometheus.Desc, v int64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), labels...)
	}
	gauge := func(d *prometheus.Desc, v int64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, float64(v))
	}

	counter(c.requests, s.Requests.Successful, "ok")
	counter(c.requests, s.Requests.Failed, "erro")
	counter(c.lookups, s.Lookups.OK, "ok")
	counter(c.lookups, s.Lookups.Failed, "erro")
	counter(c.lookupTimeouts, s.Lookups.Timeouts)
	counter(c.registryQueries, s.Registry.Queries)
	counter(c.registryHits, s.Registry.CacheHits)
	counter(c.registryFalls, s.Registry.Fallbacks)
	counter(c.batches, s.Coordinator.Batches)
	counter(c.items, s.Coordinator.Items)
	gauge(c.queueDepth, s.Coordinator.QueueDepth)
	gauge(c.results, s.Coordinator.Results)
	counter(c.uploads, s.Files.Uploaded)
	counter(c.uploadBytes, s.Files.TotalBytes)
	counter(c.exports, s.Files.Exports, "ok")
	counter(c.exports, s.Files.ExportErrors, "erro")
	gauge(c.wsConnections, s.WebSocket.Connections)
}

// NewRegistry monta um registry com os coletores da aplicação e do runtime Go
func NewRegistry(m *Metrics) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		NewCollector(m),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler retorna o handler HTTP de exposição no formato Prometheus
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
