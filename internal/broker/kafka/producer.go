// Package kafka implements the broker interfaces on top of Kafka via sarama.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"
)

// Producer is a synchronous Kafka publisher.
type Producer struct {
	producer sarama.SyncProducer
}

// NewProducer connects a synchronous producer, retrying the initial dial so
// the service can start before the broker finishes booting.
func NewProducer(brokers []string) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	var (
		producer sarama.SyncProducer
		err      error
	)
	for attempt := 1; attempt <= 5; attempt++ {
		producer, err = sarama.NewSyncProducer(brokers, config)
		if err == nil {
			log.Printf("Kafka producer connected to %v", brokers)
			return &Producer{producer: producer}, nil
		}
		log.Printf("Failed to connect Kafka producer (try %d/5): %v", attempt, err)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("connect kafka producer: %w", err)
}

// Publish JSON-encodes the payload and sends it to the topic.
func (p *Producer) Publish(ctx context.Context, topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal message for %s: %w", topic, err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(body),
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// Close shuts the underlying producer down.
func (p *Producer) Close() error {
	return p.producer.Close()
}
