package board

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/fivetwenty-io/shadow-nav/internal/constants"
)

// Publisher ships snapshots to an external consumer.
type Publisher interface {
	Publish(ctx context.Context, snapshot *Snapshot) error
}

// NATSConn is the subset of *nats.Conn used for publishing.
type NATSConn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
}

var _ NATSConn = (*nats.Conn)(nil)

// NATSPublisher publishes snapshots as JSON on a NATS subject.
type NATSPublisher struct {
	conn    NATSConn
	subject string
}

// NewNATSPublisher creates a publisher. An empty subject uses
// constants.DefaultSnapshotSubject.
func NewNATSPublisher(conn NATSConn, subject string) *NATSPublisher {
	if subject == "" {
		subject = constants.DefaultSnapshotSubject
	}

	return &NATSPublisher{conn: conn, subject: subject}
}

// ConnectNATS dials a NATS server for snapshot publishing.
func ConnectNATS(url string, opts ...nats.Option) (*nats.Conn, error) {
	if url == "" {
		return nil, constants.ErrNoNATSURLConfigured
	}

	opts = append([]nats.Option{nats.Name("shadow-nav")}, opts...)

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	return conn, nil
}

// Subject returns the target subject.
func (p *NATSPublisher) Subject() string {
	return p.subject
}

// Publish encodes snapshot and waits for the server to acknowledge the flush.
// NATS requires a deadline for the flush, so one is added when ctx has none.
func (p *NATSPublisher) Publish(ctx context.Context, snapshot *Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	err = p.conn.Publish(p.subject, data)
	if err != nil {
		return fmt.Errorf("publishing snapshot to %s: %w", p.subject, err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, constants.DefaultPublishTimeout)
		defer cancel()
	}

	err = p.conn.FlushWithContext(ctx)
	if err != nil {
		return fmt.Errorf("flushing snapshot to %s: %w", p.subject, err)
	}

	return nil
}
