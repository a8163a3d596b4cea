package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/nats-io/nats.go"
)

const subjectPrefix = "analysis.progress."

// Subject returns the NATS subject for a run, or the wildcard for all runs.
func Subject(runID string) string {
	if runID == "" {
		return subjectPrefix + "*"
	}
	return subjectPrefix + runID
}

// NewNATS constructs a NATS-backed publisher.
func NewNATS(log *slog.Logger, nc *nats.Conn) *NATSPublisher {
	return &NATSPublisher{log: log, nc: nc}
}

// NATSPublisher publishes progress on analysis.progress.<run id>.
type NATSPublisher struct {
	log *slog.Logger
	nc  *nats.Conn
}

func (q *NATSPublisher) Publish(_ context.Context, p Progress) error {
	if p.RunID == "" {
		return errors.New("run id required")
	}
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return q.nc.Publish(Subject(p.RunID), body)
}

// Subscribe delivers progress for runID (all runs when empty) until ctx is done.
func (q *NATSPublisher) Subscribe(ctx context.Context, runID string, handler Handler) error {
	sub, err := q.nc.Subscribe(Subject(runID), func(msg *nats.Msg) {
		q.handleMessage(ctx, msg, handler)
	})
	if err != nil {
		return err
	}
	<-ctx.Done()
	return sub.Unsubscribe()
}

func (q *NATSPublisher) handleMessage(ctx context.Context, msg *nats.Msg, handler Handler) {
	var p Progress
	if err := json.Unmarshal(msg.Data, &p); err != nil {
		q.log.Error("failed to decode progress event", "subject", msg.Subject, "err", err)
		return
	}
	handler(ctx, p)
}

// Close drains the underlying connection.
func (q *NATSPublisher) Close() error {
	return q.nc.Drain()
}
