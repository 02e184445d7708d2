package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	ticksCounter             prometheus.Counter
	actionsAppliedCounter    prometheus.Counter
	actionsRejectedCounter   prometheus.Counter
	duplicateActionsCounter  prometheus.Counter
	eventsDistributedCounter prometheus.Counter
	resyncsCounter           prometheus.Counter
	handshakeRejectedCounter prometheus.Counter
	activeSeatsGauge         prometheus.Gauge
	tickDuration             prometheus.Histogram
}

func (m *metrics) Tick() {
	m.ticksCounter.Inc()
}

func (m *metrics) ActionApplied() {
	m.actionsAppliedCounter.Inc()
}

func (m *metrics) ActionRejected() {
	m.actionsRejectedCounter.Inc()
}

func (m *metrics) DuplicateAction() {
	m.duplicateActionsCounter.Inc()
}

func (m *metrics) EventsDistributed(count int) {
	m.eventsDistributedCounter.Add(float64(count))
}

func (m *metrics) Resync() {
	m.resyncsCounter.Inc()
}

func (m *metrics) HandshakeRejected() {
	m.handshakeRejectedCounter.Inc()
}

func (m *metrics) SetActiveSeats(count int) {
	m.activeSeatsGauge.Set(float64(count))
}

func (m *metrics) ObserveTick(seconds float64) {
	m.tickDuration.Observe(seconds)
}

var Metrics = &metrics{
	ticksCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "skat_ticks_total",
		Help: "Total number of tick loop iterations",
	}),
	actionsAppliedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "skat_actions_applied_total",
		Help: "Total number of actions accepted by the rules engine",
	}),
	actionsRejectedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "skat_actions_rejected_total",
		Help: "Total number of actions answered with an illegal-action event",
	}),
	duplicateActionsCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "skat_duplicate_actions_total",
		Help: "Total number of actions dropped because their id was already applied",
	}),
	eventsDistributedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "skat_events_distributed_total",
		Help: "Total number of per-recipient events queued for sending",
	}),
	resyncsCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "skat_resyncs_total",
		Help: "Total number of resync snapshots sent",
	}),
	handshakeRejectedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "skat_handshakes_rejected_total",
		Help: "Total number of rejected handshakes",
	}),
	activeSeatsGauge: promauto.NewGauge(prometheus.GaugeOpts{
		Name: "skat_active_seats",
		Help: "Number of seats with an active connection",
	}),
	tickDuration: promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "skat_tick_duration_seconds",
		Help:    "Time spent holding the state lock per tick",
		Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
	}),
}
