package broker

import (
	"log"

	"github.com/nats-io/nats.go"
)

// Consumer wraps a channel-based NATS subscription.
type Consumer struct {
	conn     *nats.Conn
	subs     []*nats.Subscription
	messages chan *nats.Msg
}

// InitConsumer opens a dedicated connection and subscribes to the given
// subjects as part of a queue group.
func InitConsumer(serverURL string, subjects []string, queueGroup string) (*Consumer, error) {
	nc, err := nats.Connect(serverURL,
		nats.Name("notelock-consumer-"+queueGroup),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}

	c := &Consumer{
		conn:     nc,
		messages: make(chan *nats.Msg, 64),
	}

	for _, subject := range subjects {
		sub, err := nc.ChanQueueSubscribe(subject, queueGroup, c.messages)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.subs = append(c.subs, sub)
	}

	log.Printf("NATS consumer subscribed to %v (queue %s)", subjects, queueGroup)
	return c, nil
}

func (c *Consumer) GetMessageChannel() chan *nats.Msg {
	return c.messages
}

func (c *Consumer) Close() {
	for _, sub := range c.subs {
		sub.Unsubscribe()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
