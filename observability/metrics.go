package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace     = "fileserver"
	maxRecentSize = 20
)

// RecentResponse describes one answered connection, newest first in Metrics.Recent.
type RecentResponse struct {
	ConnID    string `json:"conn_id"`
	Remote    string `json:"remote"`
	Username  string `json:"username"`
	Path      string `json:"path,omitempty"`
	Status    string `json:"status"`
	Blocks    int    `json:"blocks"`
	Bytes     int    `json:"bytes"`
	Timestamp string `json:"timestamp"`
}

// Metrics holds the Prometheus collectors of the server and a short history of responses.
type Metrics struct {
	registry prometheus.Gatherer

	connectionsTotal  prometheus.Counter
	connectionsActive prometheus.Gauge
	responsesTotal    *prometheus.CounterVec
	blocksSent        prometheus.Counter
	bytesSent         prometheus.Counter
	requestDuration   prometheus.Histogram
	workerRestarts    *prometheus.CounterVec
	processCPU        prometheus.Gauge
	processMemory     prometheus.Gauge
	processRSS        prometheus.Gauge

	mu     sync.RWMutex
	recent []RecentResponse
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		connectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Accepted client connections.",
		}),
		connectionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Connections currently being handled.",
		}),
		responsesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "responses_total",
			Help:      "Logical responses sent, by status.",
		}, []string{"status"}),
		blocksSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_sent_total",
			Help:      "Response blocks written to clients.",
		}),
		bytesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payload_bytes_sent_total",
			Help:      "Payload bytes written to clients, headers excluded.",
		}),
		requestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time from accept to the last block written.",
			Buckets:   prometheus.DefBuckets,
		}),
		workerRestarts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_restarts_total",
			Help:      "Supervised worker restarts after a crash.",
		}, []string{"worker"}),
		processCPU: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_cpu_percent",
			Help:      "CPU usage of the server process.",
		}),
		processMemory: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_memory_percent",
			Help:      "Share of system memory used by the server process.",
		}),
		processRSS: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_resident_bytes",
			Help:      "Resident set size of the server process.",
		}),
		recent: make([]RecentResponse, 0, maxRecentSize),
	}
}

func (m *Metrics) ConnectionOpened() {
	m.connectionsTotal.Inc()
	m.connectionsActive.Inc()
}

func (m *Metrics) ConnectionClosed() {
	m.connectionsActive.Dec()
}

func (m *Metrics) BlockSent(payloadLength int) {
	m.blocksSent.Inc()
	m.bytesSent.Add(float64(payloadLength))
}

// ObserveResponse counts a finished response and keeps it in the recent history.
func (m *Metrics) ObserveResponse(r RecentResponse, elapsed time.Duration) {
	m.responsesTotal.WithLabelValues(r.Status).Inc()
	m.requestDuration.Observe(elapsed.Seconds())

	r.Timestamp = time.Now().Format("15:04:05")

	m.mu.Lock()
	defer m.mu.Unlock()
	m.recent = append([]RecentResponse{r}, m.recent...)
	if len(m.recent) > maxRecentSize {
		m.recent = m.recent[:maxRecentSize]
	}
}

func (m *Metrics) WorkerRestarted(workerName string) {
	m.workerRestarts.WithLabelValues(workerName).Inc()
}

func (m *Metrics) SetProcessUsage(cpuPercent float64, memoryPercent float32, rss uint64) {
	m.processCPU.Set(cpuPercent)
	m.processMemory.Set(float64(memoryPercent))
	m.processRSS.Set(float64(rss))
}

// Recent returns a copy of the latest responses, newest first.
func (m *Metrics) Recent() []RecentResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]RecentResponse(nil), m.recent...)
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
