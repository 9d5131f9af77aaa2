// package metrics records import run counters in a private Prometheus registry and writes them in the
// text exposition format, for node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/csvlist/internal/models"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "csvlist"

// Collector implements tasks.Recorder.
type Collector struct {
	registry   *prometheus.Registry
	outcomes   *prometheus.CounterVec
	batches    *prometheus.CounterVec
	appended   prometheus.Counter
	duration   prometheus.Gauge
	lastRun    prometheus.Gauge
	matchRatio prometheus.Gauge
	now        func() time.Time
}

// New creates a [Collector] with its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outcomes_total",
			Help:      "Match outcomes by reason.",
		}, []string{"reason"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "append_batches_total",
			Help:      "Playlist append calls by status.",
		}, []string{"status"}),
		appended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracks_appended_total",
			Help:      "Track ids committed to playlists.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the most recent run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the most recent run finished.",
		}),
		matchRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_match_ratio",
			Help:      "Share of rows matched in the most recent run, 0 to 1.",
		}),
		now: time.Now,
	}

	c.registry.MustRegister(c.outcomes, c.batches, c.appended, c.duration, c.lastRun, c.matchRatio)

	for _, r := range []models.Reason{models.ReasonMatched, models.ReasonNoResults, models.ReasonBadMatch, models.ReasonSearchError} {
		c.outcomes.WithLabelValues(r.String())
	}
	c.batches.WithLabelValues("ok")
	c.batches.WithLabelValues("error")

	return c
}

// Registry exposes the underlying registry, e.g. for promhttp.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) ObserveOutcome(o models.Outcome) {
	c.outcomes.WithLabelValues(o.Reason.String()).Inc()
}

func (c *Collector) ObserveBatch(size int, err error) {
	if err != nil {
		c.batches.WithLabelValues("error").Inc()
		return
	}
	c.batches.WithLabelValues("ok").Inc()
	c.appended.Add(float64(size))
}

func (c *Collector) ObserveRun(s *models.RunSummary) {
	c.duration.Set(s.Duration.Seconds())
	c.lastRun.Set(float64(c.now().Unix()))
	c.matchRatio.Set(s.MatchPercentage() / 100)
}

// WriteTextfile writes every metric to path atomically.
func (c *Collector) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create metrics directory: %w", err)
		}
	}

	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
