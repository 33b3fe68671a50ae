package queue

import (
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// ReminderEvent is the job the booking service publishes when an
// appointment needs a reminder of some type
type ReminderEvent struct {
	AppointmentID int    `json:"appointment_id"`
	Type          string `json:"type"`
}

// EventHandler processes one reminder event. Business outcomes are not
// errors; a returned error means the event could not be processed at all.
type EventHandler func(event *ReminderEvent) error

// Consumer consumes reminder events from a RabbitMQ queue
type Consumer struct {
	conn      *Connection
	queueName string
	handler   EventHandler
	logger    zerolog.Logger
	stopChan  chan struct{}
	doneChan  chan struct{}
}

// NewConsumer creates a new consumer instance and declares the queue
func NewConsumer(conn *Connection, queueName string, handler EventHandler, logger zerolog.Logger) (*Consumer, error) {
	if conn == nil {
		return nil, errors.New("connection cannot be nil")
	}
	if queueName == "" {
		return nil, errors.New("queue name cannot be empty")
	}
	if handler == nil {
		return nil, errors.New("handler cannot be nil")
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}

	// Declare queue (durable, non-auto-delete; must match the publisher)
	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &Consumer{
		conn:      conn,
		queueName: queueName,
		handler:   handler,
		logger:    logger,
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}, nil
}

// Start starts consuming reminder events from the queue
func (c *Consumer) Start() error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to get channel: %w", err)
	}

	// Process one event at a time; reminder dispatch is synchronous
	err = ch.Qos(
		1,     // prefetch count
		0,     // prefetch size
		false, // global
	)
	if err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := ch.Consume(
		c.queueName,
		"",    // consumer tag (auto-generated)
		false, // auto-ack (manual acknowledgement)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	go func() {
		defer close(c.doneChan)

		for {
			select {
			case <-c.stopChan:
				c.logger.Info().Msg("reminder consumer stopping")
				return
			case d, ok := <-msgs:
				if !ok {
					c.logger.Warn().Msg("delivery channel closed")
					return
				}

				if err := c.processEvent(d); err != nil {
					// One dispatch attempt per event; the outcome is
					// already recorded, so the event is not requeued
					c.logger.Error().Err(err).Msg("failed to process reminder event")
					d.Nack(false, false)
				} else {
					d.Ack(false)
				}
			}
		}
	}()

	c.logger.Info().Str("queue", c.queueName).Msg("reminder consumer started")
	return nil
}

// Stop stops consuming events gracefully
func (c *Consumer) Stop() error {
	close(c.stopChan)
	<-c.doneChan
	return nil
}

// processEvent parses and handles a single reminder event
func (c *Consumer) processEvent(d amqp.Delivery) error {
	var event ReminderEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		return fmt.Errorf("failed to unmarshal reminder event: %w", err)
	}

	if err := c.handler(&event); err != nil {
		return fmt.Errorf("handler failed: %w", err)
	}

	return nil
}
