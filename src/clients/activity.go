package clients

import (
	"encoding/json"
	"fmt"
	"time"

	"blog-admin-svc/src/internal/config"
	"blog-admin-svc/src/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// ActivityPublisher sends audit events. Publishing is fire-and-forget:
// failures are logged and never reach the caller.
type ActivityPublisher interface {
	Publish(message models.ActivityMessage)
}

// AMQPActivityPublisher publishes activity messages to a RabbitMQ exchange.
type AMQPActivityPublisher struct {
	channel    *amqp.Channel
	exchange   string
	routingKey string
}

func NewActivityPublisher(cfg *config.RabbitMQConfig, channel *amqp.Channel) *AMQPActivityPublisher {
	return &AMQPActivityPublisher{
		channel:    channel,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
	}
}

func (p *AMQPActivityPublisher) Publish(message models.ActivityMessage) {
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}

	go func() {
		if err := p.publish(message); err != nil {
			logrus.WithError(err).WithField("action", message.Action).Error("Failed to publish activity message")
		}
	}()
}

func (p *AMQPActivityPublisher) publish(message models.ActivityMessage) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal activity message: %v", models.ErrPublish, err)
	}

	err = p.channel.Publish(
		p.exchange,
		p.routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   message.Timestamp,
		},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrPublish, err)
	}

	logrus.WithFields(logrus.Fields{
		"action":      message.Action,
		"source":      message.Source,
		"exchange":    p.exchange,
		"routing_key": p.routingKey,
	}).Debug("Activity message published")

	return nil
}

// NoopActivityPublisher drops messages; used when the queue is disabled.
type NoopActivityPublisher struct{}

func (NoopActivityPublisher) Publish(message models.ActivityMessage) {
	logrus.WithField("action", message.Action).Debug("Activity publishing disabled, message dropped")
}
