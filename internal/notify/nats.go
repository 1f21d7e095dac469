package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/newsletter/internal/logfields"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// publisher abstracts core NATS and JetStream publication.
type publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

type corePublisher struct{ conn *nats.Conn }

func (p corePublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if err := p.conn.Publish(subject, data); err != nil {
		return err
	}
	return p.conn.FlushWithContext(ctx)
}

type jetStreamPublisher struct{ js jetstream.JetStream }

func (p jetStreamPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	_, err := p.js.Publish(ctx, subject, data)
	return err
}

// NATSNotifier publishes run events as JSON on a subject.
type NATSNotifier struct {
	conn    *nats.Conn
	pub     publisher
	subject string
	now     func() time.Time
}

// NewNATSNotifier connects to url. With useJetStream the event is published
// through JetStream and acknowledged by the stream that owns subject.
func NewNATSNotifier(url, subject string, useJetStream bool) (*NATSNotifier, error) {
	conn, err := nats.Connect(url,
		nats.Name("newsletter"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(5),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	var pub publisher = corePublisher{conn: conn}
	if useJetStream {
		js, err := jetstream.New(conn)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create JetStream context: %w", err)
		}
		pub = jetStreamPublisher{js: js}
	}

	slog.Info("NATS notifier initialized", logfields.URL(url), logfields.Subject(subject), slog.Bool("jetstream", useJetStream))
	return &NATSNotifier{conn: conn, pub: pub, subject: subject, now: time.Now}, nil
}

// Notify publishes event, stamping its timestamp.
func (n *NATSNotifier) Notify(ctx context.Context, event RunEvent) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	event.Timestamp = n.now().UTC()
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := n.pub.Publish(ctx, n.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	slog.Debug("Published run event", logfields.RunID(event.RunID), logfields.Outcome(event.Outcome), logfields.Subject(n.subject))
	return nil
}

// Close drains the connection.
func (n *NATSNotifier) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Drain()
}
