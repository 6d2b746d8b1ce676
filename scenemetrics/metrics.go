// Exposes prometheus counters describing how scenes are enlivened:
// batches, constructed objects, disposals and image loads.
package scenemetrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Batch operations
const (
	OpObjects    = "objects"
	OpEnlivables = "enlivables"
)

// Outcomes
const (
	ResultOK      = "ok"
	ResultEmpty   = "empty"
	ResultAborted = "aborted"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	batches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "okscene",
			Subsystem: "enliven",
			Name:      "batches_total",
			Help:      "Enliven batches by operation and outcome.",
		},
		[]string{"op", "result"},
	)
	objects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "okscene",
			Subsystem: "enliven",
			Name:      "objects_total",
			Help:      "Objects constructed from descriptors, by class.",
		},
		[]string{"class"},
	)
	disposed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "okscene",
			Name:      "disposed_total",
			Help:      "Instances released by a failed batch.",
		},
		[]string{"op"},
	)
	imageLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "okscene",
			Subsystem: "image",
			Name:      "loads_total",
			Help:      "Image loads by outcome.",
		},
		[]string{"result"},
	)
	imageDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "okscene",
			Subsystem: "image",
			Name:      "load_duration_seconds",
			Help:      "Image fetch and decode duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

// Register adds the collectors to the default prometheus registry.
// It is safe to call several times.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(batches, objects, disposed, imageLoads, imageDuration)
	})
}

// RecordBatch counts one finished enliven call.
func RecordBatch(op, result string) {
	Register()
	batches.WithLabelValues(op, result).Inc()
}

// RecordObject counts one object built by the factory registered as `class`.
func RecordObject(class string) {
	Register()
	objects.WithLabelValues(class).Inc()
}

// RecordDisposed counts `n` instances released by a failed `op` batch.
func RecordDisposed(op string, n int) {
	if n <= 0 {
		return
	}
	Register()
	disposed.WithLabelValues(op).Add(float64(n))
}

// RecordImageLoad counts one image load and, unless it was skipped,
// observes its duration.
func RecordImageLoad(result string, duration time.Duration) {
	Register()
	imageLoads.WithLabelValues(result).Inc()
	if result == ResultEmpty {
		return
	}
	imageDuration.Observe(duration.Seconds())
}
