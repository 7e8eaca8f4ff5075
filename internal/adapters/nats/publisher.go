package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/domain"
)

// Subject layout. Alert and status subjects keep an interest-based stream so
// dashboards can replay recent history; location updates are fan-out only.
const (
	subjectAlertPrefix  = "safety.alerts."
	subjectStatusPrefix = "safety.status."
	subjectLocation     = "safety.location."
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the safety streams exist.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	streams := []nats.StreamConfig{
		{
			Name:      "SAFETY_ALERTS",
			Subjects:  []string{"safety.alerts.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "SAFETY_STATUS",
			Subjects:  []string{"safety.status.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist — try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishAlert publishes a raised alert on safety.alerts.<traveler>.
func (p *Publisher) PublishAlert(ctx context.Context, alert *domain.SafetyAlert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(subjectAlertPrefix+alert.TravelerID, data)
	return err
}

// PublishStatusChange publishes a status transition on safety.status.<traveler>.
func (p *Publisher) PublishStatusChange(ctx context.Context, status *domain.TravelerSafetyStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(subjectStatusPrefix+status.TravelerID, data)
	return err
}

// PublishLocation publishes a location sample with core NATS; live map
// consumers only care about the latest position.
func (p *Publisher) PublishLocation(ctx context.Context, sample *domain.LocationSample) error {
	data, err := json.Marshal(sample)
	if err != nil {
		return err
	}
	return p.conn.Publish(subjectLocation+sample.TravelerID, data)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
