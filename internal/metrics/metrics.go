package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry with the rewards service metrics.
type Collector struct {
	reg *prometheus.Registry

	JourneysLogged prometheus.Counter
	MilesLogged    prometheus.Counter
	RidersSignedUp prometheus.Counter
	BadgeUpgrades  *prometheus.CounterVec // tier label: the badge reached

	EvaluationDuration prometheus.Histogram

	EventsPublished   *prometheus.CounterVec // subject label
	EventPublishError *prometheus.CounterVec // subject label
}

// NewCollector builds and registers every metric, plus the Go runtime and process collectors.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		JourneysLogged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rewards_journeys_logged_total",
			Help: "Total journeys logged.",
		}),
		MilesLogged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rewards_miles_logged_total",
			Help: "Total miles across logged journeys.",
		}),
		RidersSignedUp: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rewards_riders_signed_up_total",
			Help: "Total rider profiles created.",
		}),
		BadgeUpgrades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rewards_badge_upgrades_total",
			Help: "Badge tier upgrades triggered by logged journeys.",
		}, []string{"tier"}),
		EvaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rewards_challenge_evaluation_seconds",
			Help:    "Time spent building a rider dashboard from journeys.",
			Buckets: prometheus.ExponentialBuckets(0.00005, 2, 15),
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rewards_events_published_total",
			Help: "Domain events published.",
		}, []string{"subject"}),
		EventPublishError: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rewards_event_publish_errors_total",
			Help: "Domain events that failed to publish.",
		}, []string{"subject"}),
	}

	reg.MustRegister(
		c.JourneysLogged, c.MilesLogged, c.RidersSignedUp, c.BadgeUpgrades,
		c.EvaluationDuration, c.EventsPublished, c.EventPublishError,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// Handler exposes the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{Registry: c.reg})
}

func (c *Collector) JourneyLogged(miles float64) {
	c.JourneysLogged.Inc()
	if miles > 0 {
		c.MilesLogged.Add(miles)
	}
}

func (c *Collector) RiderSignedUp() { c.RidersSignedUp.Inc() }

func (c *Collector) BadgeUpgraded(tier string) { c.BadgeUpgrades.WithLabelValues(tier).Inc() }

func (c *Collector) ObserveEvaluation(d time.Duration) { c.EvaluationDuration.Observe(d.Seconds()) }

func (c *Collector) EventPublished(subject string) {
	c.EventsPublished.WithLabelValues(subject).Inc()
}

func (c *Collector) EventPublishFailed(subject string) {
	c.EventPublishError.WithLabelValues(subject).Inc()
}
