// Package feed is an additive progress publisher: it announces pipeline
// step starts and pipeline completion over AMQP so operators can
// watch the run without polling the State Store directly (SPEC_FULL.md
// §11). It is not a feed consumer — reading the upstream incremental feed
// is an explicit spec Non-goal — only a one-way progress broadcast.
package feed

import (
	"encoding/json"

	"github.com/streadway/amqp"

	"github.com/vlaanderen-mow/amsync/common"
)

// Event is one progress announcement.
type Event struct {
	Kind     string `json:"kind"`
	Resource string `json:"resource,omitempty"`
	Step     string `json:"step,omitempty"`
}

// Publisher publishes Events to a fanout exchange. A nil *Publisher is safe
// to call Publish on — it becomes a no-op, so wiring it is optional.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewPublisher dials url and declares exchange as a fanout exchange.
func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, common.Wrap(common.ClassConnectivity, "dial AMQP broker", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, common.Wrap(common.ClassConnectivity, "open AMQP channel", err)
	}
	if err := channel.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, common.Wrap(common.ClassConnectivity, "declare AMQP exchange", err)
	}
	return &Publisher{conn: conn, channel: channel, exchange: exchange}, nil
}

// Publish announces event. Failures are logged, not returned, since a
// dropped progress notification must never fail the pipeline run it
// describes.
func (p *Publisher) Publish(event Event) {
	if p == nil {
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		common.Logger.WithField("error", err).Warn("failed to marshal feed event")
		return
	}
	err = p.channel.Publish(p.exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		common.Logger.WithField("error", err).Warn("failed to publish feed event")
	}
}

// Close releases the underlying AMQP channel and connection.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	if err := p.channel.Close(); err != nil {
		return err
	}
	return p.conn.Close()
}
