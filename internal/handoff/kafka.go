package handoff

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/sirupsen/logrus"
)

const flushTimeoutMs = 5000

type kafkaDispatcher struct {
	producer *kafka.Producer
	topic    string
	logger   logrus.FieldLogger
}

// NewKafkaDispatcher produces every transfer, keyed by its id, to topic.
func NewKafkaDispatcher(broker, topic string, logger logrus.FieldLogger) (Dispatcher, error) {
	config := kafka.ConfigMap{
		"bootstrap.servers": broker,
		"acks":              "all",
	}

	producer, err := kafka.NewProducer(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	d := &kafkaDispatcher{
		producer: producer,
		topic:    topic,
		logger:   logger.WithFields(logrus.Fields{"sink": "kafka", "topic": topic}),
	}
	d.startEventLog()
	d.logger.Info("Kafka Producer initialized successfully")
	return d, nil
}

// startEventLog drains producer-level events. Per-message reports go to the
// delivery channel passed to Produce instead.
func (d *kafkaDispatcher) startEventLog() {
	go func() {
		for e := range d.producer.Events() {
			switch ev := e.(type) {
			case kafka.Error:
				d.logger.Errorf("Kafka producer error: %v", ev)
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					d.logger.Errorf("Message delivery failed: %v", ev.TopicPartition.Error)
				}
			}
		}
	}()
}

func (d *kafkaDispatcher) Dispatch(ctx context.Context, t Transfer) error {
	value, err := json.Marshal(t)
	if err != nil {
		return err
	}

	delivery := make(chan kafka.Event, 1)
	err = d.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &d.topic, Partition: kafka.PartitionAny},
		Key:            []byte(t.ID.String()),
		Value:          value,
	}, delivery)
	if err != nil {
		return fmt.Errorf("produce transfer: %w", err)
	}

	select {
	case e := <-delivery:
		if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			return fmt.Errorf("deliver transfer: %w", m.TopicPartition.Error)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *kafkaDispatcher) Close() error {
	if remaining := d.producer.Flush(flushTimeoutMs); remaining > 0 {
		d.logger.Warnf("Closing Kafka producer with %d undelivered transfers", remaining)
	}
	d.producer.Close()
	d.logger.Info("Kafka Producer closed")
	return nil
}
