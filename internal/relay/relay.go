// Package relay forwards committed chain events to NATS so table clients
// can follow a table without polling queries.
package relay

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cosmossdk.io/log"
	natsgo "github.com/nats-io/nats.go"

	"onchainpoker/escrow/internal/types"
)

// Publisher is the part of a NATS connection the relay needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Message is the JSON body published for each event.
type Message struct {
	Height     int64             `json:"height"`
	TxIndex    int               `json:"txIndex"`
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// BlockEvent is an event tagged with the tx that emitted it.
type BlockEvent struct {
	TxIndex int
	Event   types.Event
}

type Relay struct {
	pub    Publisher
	prefix string
	logger log.Logger
}

func New(pub Publisher, prefix string, logger log.Logger) *Relay {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Relay{
		pub:    pub,
		prefix: strings.TrimSuffix(prefix, "."),
		logger: logger.With("module", "relay"),
	}
}

// Subject is <prefix>.<eventType>, or <prefix>.<eventType>.<table> when the
// event names a table.
func (r *Relay) Subject(ev types.Event) string {
	subject := r.prefix + "." + ev.Type
	for _, a := range ev.Attributes {
		if a.Key == types.AttributeKeyTable {
			return subject + "." + a.Value
		}
	}
	return subject
}

// PublishBlock sends every event of a committed block. A failed publish is
// logged and skipped; the chain does not depend on the relay.
func (r *Relay) PublishBlock(height int64, events []BlockEvent) int {
	sent := 0
	for _, be := range events {
		msg := Message{
			Height:     height,
			TxIndex:    be.TxIndex,
			Type:       be.Event.Type,
			Attributes: make(map[string]string, len(be.Event.Attributes)),
		}
		for _, a := range be.Event.Attributes {
			msg.Attributes[a.Key] = a.Value
		}
		data, err := json.Marshal(msg)
		if err != nil {
			r.logger.Error("marshal event", "type", be.Event.Type, "err", err)
			continue
		}
		subject := r.Subject(be.Event)
		if err := r.pub.Publish(subject, data); err != nil {
			r.logger.Error("publish event", "subject", subject, "err", err)
			continue
		}
		sent++
	}
	if sent > 0 {
		r.logger.Debug("relayed events", "height", height, "count", sent)
	}
	return sent
}

// DrainTimeout bounds how long Close waits for buffered events to flush.
const DrainTimeout = 10 * time.Second

type drainer interface {
	Drain() error
}

// NATSConn is a relay connection to a NATS server.
type NATSConn struct {
	*Relay
	conn    drainer
	closed  <-chan struct{}
	timeout time.Duration
}

// Connect dials url and returns a relay publishing under prefix.
func Connect(url, prefix string, logger log.Logger) (*NATSConn, error) {
	closed := make(chan struct{})
	nc, err := natsgo.Connect(url,
		natsgo.Name("escrowd"),
		natsgo.DrainTimeout(DrainTimeout),
		natsgo.ClosedHandler(func(*natsgo.Conn) { close(closed) }),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", url, err)
	}
	return &NATSConn{Relay: New(nc, prefix, logger), conn: nc, closed: closed, timeout: DrainTimeout}, nil
}

// Close drains the connection and blocks until buffered publishes have been
// flushed and the connection is closed.
func (c *NATSConn) Close() error {
	if err := c.conn.Drain(); err != nil {
		return fmt.Errorf("drain nats: %w", err)
	}
	select {
	case <-c.closed:
		return nil
	case <-time.After(c.timeout):
		return fmt.Errorf("drain nats: not closed after %s", c.timeout)
	}
}
