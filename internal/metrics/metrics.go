package metrics

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/kstaniek/mavgcs/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus counters
var (
	FramesDecoded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mavlink_frames_decoded_total",
		Help: "Total frames successfully decoded from the wire stream.",
	})
	FramesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mavlink_frames_rejected_total",
		Help: "Total frames discarded due to CRC mismatch or resync.",
	})
	MessagesDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mavlink_messages_dispatched_total",
		Help: "Messages decoded and dispatched to the session, by message id.",
	}, []string{"msg_id"})
	MessagesUnknown = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mavlink_messages_unknown_total",
		Help: "Frames with a message id absent from the registry.",
	})
	FramesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mavlink_frames_sent_total",
		Help: "Total frames written to the transport.",
	})
	WatchersRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mavlink_watchers_registered_total",
		Help: "Total watchers installed over the lifetime of the session.",
	})
	WatchersFulfilled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mavlink_watchers_fulfilled_total",
		Help: "Total watchers whose predicate fired and completed their future.",
	})
	WatchersActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mavlink_watchers_active",
		Help: "Current number of registered, not-yet-fulfilled watchers.",
	})
	OutboundQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mavlink_outbound_queue_depth",
		Help: "Pending commands in the reactor's outbound queue.",
	})
	OutboundDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mavlink_outbound_dropped_total",
		Help: "Outbound sends dropped because the reactor queue was full.",
	})
	ParamsObserved = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mavlink_params_observed",
		Help: "Number of parameter indices observed in the current sync pass.",
	})
	ParamsExpected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mavlink_params_expected",
		Help: "Declared parameter count (param_count) for the current sync pass.",
	})
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "build_info",
		Help: "Build metadata (value is always 1).",
	}, []string{"version", "commit", "date"})
	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "errors_total",
		Help: "Error counters by subsystem.",
	}, []string{"where"})

	readinessMu sync.RWMutex
	readinessFn func() bool
)

// Error label constants (stable label values to bound cardinality)
const (
	ErrTransportRead  = "transport_read"
	ErrTransportWrite = "transport_write"
	ErrOutboundFull   = "outbound_full"
	ErrDial           = "dial"
)

// StartHTTP serves Prometheus metrics at /metrics and readiness at /ready.
func StartHTTP(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if IsReady() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready\n"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready\n"))
	})

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	go func() {
		logging.L().Info("metrics_listen", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.L().Error("metrics_http_error", "error", err)
		}
	}()
	return srv
}

// Local mirrored counters so call sites that want a quick periodic log line
// (see cmd/mavgcs/metrics_logger.go) don't need to scrape Prometheus in-process.
var (
	localFramesDecoded  uint64
	localFramesRejected uint64
	localFramesSent     uint64
	localWatchersFired  uint64
	localOutboundDrops  uint64
	localErrors         uint64
)

// Snapshot is a cheap copy of local counters.
type Snapshot struct {
	FramesDecoded  uint64
	FramesRejected uint64
	FramesSent     uint64
	WatchersFired  uint64
	OutboundDrops  uint64
	Errors         uint64
}

func Snap() Snapshot {
	return Snapshot{
		FramesDecoded:  atomic.LoadUint64(&localFramesDecoded),
		FramesRejected: atomic.LoadUint64(&localFramesRejected),
		FramesSent:     atomic.LoadUint64(&localFramesSent),
		WatchersFired:  atomic.LoadUint64(&localWatchersFired),
		OutboundDrops:  atomic.LoadUint64(&localOutboundDrops),
		Errors:         atomic.LoadUint64(&localErrors),
	}
}

func IncFrameDecoded() {
	FramesDecoded.Inc()
	atomic.AddUint64(&localFramesDecoded, 1)
}

func IncFrameRejected() {
	FramesRejected.Inc()
	atomic.AddUint64(&localFramesRejected, 1)
}

func IncMessageDispatched(msgID string) {
	MessagesDispatched.WithLabelValues(msgID).Inc()
}

func IncMessageUnknown() { MessagesUnknown.Inc() }

func IncFrameSent() {
	FramesSent.Inc()
	atomic.AddUint64(&localFramesSent, 1)
}

func IncWatcherRegistered() { WatchersRegistered.Inc() }

func IncWatcherFulfilled() {
	WatchersFulfilled.Inc()
	atomic.AddUint64(&localWatchersFired, 1)
}

func SetWatchersActive(n int) { WatchersActive.Set(float64(n)) }

func SetOutboundQueueDepth(n int) { OutboundQueueDepth.Set(float64(n)) }

func IncOutboundDropped() {
	OutboundDropped.Inc()
	atomic.AddUint64(&localOutboundDrops, 1)
}

func SetParamsProgress(observed, expected int) {
	ParamsObserved.Set(float64(observed))
	ParamsExpected.Set(float64(expected))
}

func IncError(label string) {
	Errors.WithLabelValues(label).Inc()
	atomic.AddUint64(&localErrors, 1)
}

// InitBuildInfo sets the build info gauge (should be called once at startup).
func InitBuildInfo(version, commit, date string) {
	BuildInfo.WithLabelValues(version, commit, date).Set(1)
	for _, lbl := range []string{ErrTransportRead, ErrTransportWrite, ErrOutboundFull, ErrDial} {
		Errors.WithLabelValues(lbl).Add(0)
	}
}

// SetReadinessFunc registers a function used by /ready and IsReady.
func SetReadinessFunc(fn func() bool) { readinessMu.Lock(); readinessFn = fn; readinessMu.Unlock() }

// IsReady invokes the registered readiness function if present.
func IsReady() bool {
	readinessMu.RLock()
	fn := readinessFn
	readinessMu.RUnlock()
	if fn == nil {
		return true
	}
	return fn()
}

// Ready is a concise alias used at call sites.
func Ready() bool { return IsReady() }
