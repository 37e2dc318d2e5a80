package actor

import "github.com/codewandler/actr-go/core/metrics"

// Metrics defines the metrics interface of the actor runtime.
// All methods are thread-safe.
type Metrics interface {
	// Message handling
	MessageDuration(msgType string) metrics.Timer
	MessageProcessed(msgType string, success bool)
	MessagePanic(msgType string)

	// Mailbox depth observed whenever an envelope is taken for processing.
	MailboxDepth(actorType string, depth int)

	// Lifecycle
	ActorStarted(actorType string)
	ActorStopped(actorType string, failed bool)
	ActorRestarted(actorType string)

	// Scheduler; TasksInflight reports +1 when a task starts and -1 when it ends.
	TasksInflight(actorType string, delta int)
	TaskDuration() metrics.Timer
	TaskCompleted(success bool)

	// Broker and registry
	BrokerDelivered(topic string, count int)
	BrokerDropped(topic string, reason string)
	ServiceStarted(service string)
}

type nopMetrics struct{}

func (nopMetrics) MessageDuration(string) metrics.Timer { return metrics.NopTimer() }
func (nopMetrics) MessageProcessed(string, bool)        {}
func (nopMetrics) MessagePanic(string)                  {}

func (nopMetrics) MailboxDepth(string, int) {}

func (nopMetrics) ActorStarted(string)       {}
func (nopMetrics) ActorStopped(string, bool) {}
func (nopMetrics) ActorRestarted(string)     {}

func (nopMetrics) TasksInflight(string, int)   {}
func (nopMetrics) TaskDuration() metrics.Timer { return metrics.NopTimer() }
func (nopMetrics) TaskCompleted(bool)          {}

func (nopMetrics) BrokerDelivered(string, int)  {}
func (nopMetrics) BrokerDropped(string, string) {}
func (nopMetrics) ServiceStarted(string)        {}

// NopMetrics returns a no-op Metrics implementation.
func NopMetrics() Metrics { return nopMetrics{} }
