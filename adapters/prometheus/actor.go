package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/actr-go/core/actor"
	"github.com/codewandler/actr-go/core/metrics"
)

// actorMetrics implements actor.Metrics using Prometheus.
type actorMetrics struct {
	messageDuration *prometheus.HistogramVec
	messagesTotal   *prometheus.CounterVec
	panicTotal      *prometheus.CounterVec
	mailboxDepth    *prometheus.HistogramVec

	actorsStarted *prometheus.CounterVec
	actorsStopped *prometheus.CounterVec
	actorsRunning *prometheus.GaugeVec
	restartsTotal *prometheus.CounterVec

	tasksInflight *prometheus.GaugeVec
	taskDuration  prometheus.Histogram
	tasksTotal    *prometheus.CounterVec

	brokerDelivered *prometheus.CounterVec
	brokerDropped   *prometheus.CounterVec
	servicesStarted *prometheus.CounterVec
}

// NewActorMetrics creates a Prometheus implementation of actor.Metrics and
// registers its collectors with reg.
func NewActorMetrics(reg prometheus.Registerer) actor.Metrics {
	m := &actorMetrics{
		messageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "actr_message_duration_seconds",
			Help:    "Message handling time in seconds",
			Buckets: defaultBuckets,
		}, []string{"message_type"}),

		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "actr_messages_total",
			Help: "Total number of messages processed",
		}, []string{"message_type", "success"}),

		panicTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "actr_panics_total",
			Help: "Total number of handler panics",
		}, []string{"message_type"}),

		mailboxDepth: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "actr_mailbox_depth",
			Help:    "Mailbox queue depth observed when a message is taken",
			Buckets: depthBuckets,
		}, []string{"actor"}),

		actorsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "actr_actors_started_total",
			Help: "Total number of actor instances started",
		}, []string{"actor"}),

		actorsStopped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "actr_actors_stopped_total",
			Help: "Total number of actor instances stopped",
		}, []string{"actor", "failed"}),

		actorsRunning: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "actr_actors_running",
			Help: "Number of actor instances currently running",
		}, []string{"actor"}),

		restartsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "actr_actor_restarts_total",
			Help: "Total number of supervised restarts",
		}, []string{"actor"}),

		tasksInflight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "actr_tasks_inflight",
			Help: "Number of concurrently running spawned tasks",
		}, []string{"actor"}),

		taskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "actr_task_duration_seconds",
			Help:    "Spawned task duration in seconds",
			Buckets: defaultBuckets,
		}),

		tasksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "actr_tasks_total",
			Help: "Total number of spawned tasks completed",
		}, []string{"success"}),

		brokerDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "actr_broker_delivered_total",
			Help: "Total number of published copies accepted by subscribers",
		}, []string{"topic"}),

		brokerDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "actr_broker_dropped_total",
			Help: "Total number of subscribers dropped during publish",
		}, []string{"topic", "reason"}),

		servicesStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "actr_services_started_total",
			Help: "Total number of registry singletons started",
		}, []string{"service"}),
	}

	reg.MustRegister(
		m.messageDuration,
		m.messagesTotal,
		m.panicTotal,
		m.mailboxDepth,
		m.actorsStarted,
		m.actorsStopped,
		m.actorsRunning,
		m.restartsTotal,
		m.tasksInflight,
		m.taskDuration,
		m.tasksTotal,
		m.brokerDelivered,
		m.brokerDropped,
		m.servicesStarted,
	)

	return m
}

func (m *actorMetrics) MessageDuration(msgType string) metrics.Timer {
	return newTimer(m.messageDuration.WithLabelValues(msgType))
}

func (m *actorMetrics) MessageProcessed(msgType string, success bool) {
	m.messagesTotal.WithLabelValues(msgType, boolToStr(success)).Inc()
}

func (m *actorMetrics) MessagePanic(msgType string) {
	m.panicTotal.WithLabelValues(msgType).Inc()
}

func (m *actorMetrics) MailboxDepth(actorType string, depth int) {
	m.mailboxDepth.WithLabelValues(actorType).Observe(float64(depth))
}

func (m *actorMetrics) ActorStarted(actorType string) {
	m.actorsStarted.WithLabelValues(actorType).Inc()
	m.actorsRunning.WithLabelValues(actorType).Inc()
}

func (m *actorMetrics) ActorStopped(actorType string, failed bool) {
	m.actorsStopped.WithLabelValues(actorType, boolToStr(failed)).Inc()
	m.actorsRunning.WithLabelValues(actorType).Dec()
}

func (m *actorMetrics) ActorRestarted(actorType string) {
	m.restartsTotal.WithLabelValues(actorType).Inc()
}

func (m *actorMetrics) TasksInflight(actorType string, delta int) {
	m.tasksInflight.WithLabelValues(actorType).Add(float64(delta))
}

func (m *actorMetrics) TaskDuration() metrics.Timer {
	return newTimer(m.taskDuration)
}

func (m *actorMetrics) TaskCompleted(success bool) {
	m.tasksTotal.WithLabelValues(boolToStr(success)).Inc()
}

func (m *actorMetrics) BrokerDelivered(topic string, count int) {
	m.brokerDelivered.WithLabelValues(topic).Add(float64(count))
}

func (m *actorMetrics) BrokerDropped(topic string, reason string) {
	m.brokerDropped.WithLabelValues(topic, reason).Inc()
}

func (m *actorMetrics) ServiceStarted(service string) {
	m.servicesStarted.WithLabelValues(service).Inc()
}

var _ actor.Metrics = (*actorMetrics)(nil)
