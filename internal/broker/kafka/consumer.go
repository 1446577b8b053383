package kafka

import (
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"

	"cinepay/internal/broker"
)

// Consumer dispatches Kafka messages to per-topic handlers. Each topic is
// consumed with a single partition consumer whose handler runs inline, so at
// most one message per topic is in flight at a time.
type Consumer struct {
	consumer sarama.Consumer
	partials []sarama.PartitionConsumer
}

// NewConsumer connects a consumer, retrying the initial dial.
func NewConsumer(brokers []string) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Return.Errors = true

	var (
		consumer sarama.Consumer
		err      error
	)
	for attempt := 1; attempt <= 10; attempt++ {
		consumer, err = sarama.NewConsumer(brokers, config)
		if err == nil {
			log.Printf("Kafka consumer connected to %v", brokers)
			return &Consumer{consumer: consumer}, nil
		}
		log.Printf("Waiting for Kafka consumer... (%d/10) Error: %v", attempt, err)
		time.Sleep(5 * time.Second)
	}
	return nil, fmt.Errorf("connect kafka consumer: %w", err)
}

// Consume subscribes the handler to the topic and starts the dispatch loop.
func (c *Consumer) Consume(topic string, handler broker.Handler) error {
	pc, err := c.consumer.ConsumePartition(topic, 0, sarama.OffsetNewest)
	if err != nil {
		return fmt.Errorf("consume topic %s: %w", topic, err)
	}
	c.partials = append(c.partials, pc)

	log.Printf("Listening on topic %s", topic)

	go func() {
		for {
			select {
			case msg, ok := <-pc.Messages():
				if !ok {
					return
				}
				handler(msg.Value)
			case err, ok := <-pc.Errors():
				if !ok {
					return
				}
				log.Printf("Kafka consumer error on %s: %v", topic, err)
			}
		}
	}()
	return nil
}

// Close stops all partition consumers and the underlying consumer.
func (c *Consumer) Close() error {
	for _, pc := range c.partials {
		_ = pc.Close()
	}
	return c.consumer.Close()
}
