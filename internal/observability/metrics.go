package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "anp",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total admin HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "anp",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Admin HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	messages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "anp",
			Subsystem: "transport",
			Name:      "messages_total",
			Help:      "Whole ANP messages moved, by direction and protocol family.",
		},
		[]string{"direction", "family"},
	)
	payloadSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "anp",
			Subsystem: "transport",
			Name:      "payload_bytes",
			Help:      "Payload size of moved ANP messages.",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 10),
		},
		[]string{"direction"},
	)
	wireBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "anp",
			Subsystem: "transport",
			Name:      "bytes_total",
			Help:      "Bytes read from or written to peer sockets.",
		},
		[]string{"direction"},
	)
	skippedTags = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "anp",
			Subsystem: "transport",
			Name:      "skipped_tags_total",
			Help:      "Unknown element tags skipped by lenient decoding.",
		},
	)
	peerEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "anp",
			Subsystem: "reactor",
			Name:      "peer_events_total",
			Help:      "Peer lifecycle events; reason is set for closes.",
		},
		[]string{"event", "reason"},
	)
	activePeers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "anp",
			Subsystem: "reactor",
			Name:      "active_peers",
			Help:      "Peers currently attached to the reactor.",
		},
	)
	pollDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "anp",
			Subsystem: "reactor",
			Name:      "poll_wait_seconds",
			Help:      "Time spent blocked in poll.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration,
			messages, payloadSize, wireBytes, skippedTags,
			peerEvents, activePeers, pollDuration,
		)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordMessage counts one whole message. family is the catalog label of
// its type tag.
func RecordMessage(direction, family string, payload uint32) {
	RegisterMetrics()
	messages.WithLabelValues(direction, family).Inc()
	payloadSize.WithLabelValues(direction).Observe(float64(payload))
}

func RecordBytes(direction string, n uint64) {
	if n == 0 {
		return
	}
	RegisterMetrics()
	wireBytes.WithLabelValues(direction).Add(float64(n))
}

func RecordSkippedTags(n uint64) {
	if n == 0 {
		return
	}
	RegisterMetrics()
	skippedTags.Add(float64(n))
}

func RecordPeerAttached() {
	RegisterMetrics()
	peerEvents.WithLabelValues("attached", "").Inc()
	activePeers.Inc()
}

func RecordPeerClosed(reason string) {
	RegisterMetrics()
	peerEvents.WithLabelValues("closed", reason).Inc()
	activePeers.Dec()
}

func RecordPollWait(d time.Duration) {
	RegisterMetrics()
	pollDuration.Observe(d.Seconds())
}
