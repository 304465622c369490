package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector implements txscope.Metrics on top of Prometheus.
type Collector struct {
	sessionsOpened  *prometheus.CounterVec
	settlements     *prometheus.CounterVec
	handlerDuration *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		sessionsOpened: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "txscope_sessions_opened_total",
				Help: "Sessions opened by the coordinator, per template name.",
			},
			[]string{"session"},
		),
		settlements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "txscope_settlements_total",
				Help: "Commit, abort and end attempts, per session name, operation and outcome.",
			},
			[]string{"session", "op", "outcome"},
		),
		handlerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "txscope_handler_duration_seconds",
				Help:    "Duration of handler execution inside the transaction scope.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
	}
	reg.MustRegister(c.sessionsOpened, c.settlements, c.handlerDuration)
	return c
}

func (c *Collector) SessionOpened(name string) {
	c.sessionsOpened.WithLabelValues(name).Inc()
}

func (c *Collector) CommitSettled(name string, err error) {
	c.settlements.WithLabelValues(name, "commit", outcome(err)).Inc()
}

func (c *Collector) AbortSettled(name string, err error) {
	c.settlements.WithLabelValues(name, "abort", outcome(err)).Inc()
}

func (c *Collector) EndSettled(name string, err error) {
	c.settlements.WithLabelValues(name, "end", outcome(err)).Inc()
}

func (c *Collector) HandlerObserved(d time.Duration, failed bool) {
	label := "ok"
	if failed {
		label = "error"
	}
	c.handlerDuration.WithLabelValues(label).Observe(d.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
