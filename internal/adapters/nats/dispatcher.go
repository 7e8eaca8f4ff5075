package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/domain"
)

// notifyRequest is the payload the email/SMS gateway consumes.
type notifyRequest struct {
	Destination string `json:"destination"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
}

type notifyReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Dispatcher implements ports.NotificationDispatcher with a NATS request/reply
// to the gateway on notify.<channel>. One call, one request; the caller's
// context deadline bounds the wait and deduplication stays with the caller.
type Dispatcher struct {
	conn *nats.Conn
}

// NewDispatcher creates a dispatcher over an existing connection.
func NewDispatcher(conn *nats.Conn) *Dispatcher {
	return &Dispatcher{conn: conn}
}

// Send delivers one notification via the gateway. Any transport or gateway
// failure comes back as a domain.DeliveryError.
func (d *Dispatcher) Send(ctx context.Context, channel, destination, subject, body string) error {
	payload, err := json.Marshal(notifyRequest{
		Destination: destination,
		Subject:     subject,
		Body:        body,
	})
	if err != nil {
		return err
	}

	msg, err := d.conn.RequestWithContext(ctx, "notify."+channel, payload)
	if err != nil {
		return &domain.DeliveryError{Channel: channel, Destination: destination, Err: err}
	}

	var reply notifyReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return &domain.DeliveryError{Channel: channel, Destination: destination, Err: fmt.Errorf("malformed gateway reply: %w", err)}
	}
	if !reply.OK {
		return &domain.DeliveryError{Channel: channel, Destination: destination, Err: fmt.Errorf("gateway rejected send: %s", reply.Error)}
	}
	return nil
}
