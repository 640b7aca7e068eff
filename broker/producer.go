package broker

import (
	"log"

	"github.com/nats-io/nats.go"
)

var conn *nats.Conn

// InitProducer connects to the NATS server. The application keeps running
// without a broker; callers decide how to degrade.
func InitProducer(serverURL string) error {
	var err error
	conn, err = nats.Connect(serverURL,
		nats.Name("notelock-publisher"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return err
	}
	log.Printf("Connected to NATS at %s", serverURL)
	return nil
}

// PublishMessage publishes a payload to a subject. Without a connection it
// returns ErrConnectionClosed so the dispatcher keeps the outbox row pending
// for a later retry.
func PublishMessage(subject string, data []byte) error {
	if conn == nil {
		return nats.ErrConnectionClosed
	}
	return conn.Publish(subject, data)
}

func CloseProducer() {
	if conn != nil {
		conn.Drain()
		conn = nil
	}
}
