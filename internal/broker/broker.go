// Package broker defines the message contracts and transport interfaces of
// the settlement pipeline. The gateway publishes, the worker consumes;
// delivery is at-least-once and unordered across topics.
package broker

import "context"

// Topic names of the settlement pipeline.
const (
	// TopicPaymentCreation carries new payment intents from gateway to worker.
	TopicPaymentCreation = "payment.creation"

	// TopicPaymentValidation carries validation requests from gateway to worker.
	TopicPaymentValidation = "payment.validation"

	// TopicSettlementDeadLetter receives settlement reports the worker could
	// not deliver back to the gateway after exhausting retries.
	TopicSettlementDeadLetter = "payment.settlement.dlq"
)

// Publisher publishes a JSON-encoded payload to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// Handler processes one raw message. Handlers must tolerate redelivery and
// must never panic on malformed payloads.
type Handler func(message []byte)

// Consumer subscribes a handler to a topic. Messages on one topic are
// dispatched one at a time, in order.
type Consumer interface {
	Consume(topic string, handler Handler) error
	Close() error
}
