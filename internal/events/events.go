package events

import (
	"context"
	"log/slog"
)

// Phase names the stage of an analysis run a progress event belongs to.
type Phase string

const (
	PhaseFigures   Phase = "figures"
	PhaseExpansion Phase = "expansion"
)

// Progress is emitted each time one figure finishes a phase.
type Progress struct {
	RunID     string `json:"run_id"`
	Phase     Phase  `json:"phase"`
	Figure    int    `json:"figure"` // 1-based figure number
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// Handler consumes progress events.
type Handler func(context.Context, Progress)

// Publisher exposes a minimal contract to report progress.
type Publisher interface {
	Publish(ctx context.Context, p Progress) error
}

// NewLogPublisher reports progress through the structured logger.
func NewLogPublisher(log *slog.Logger) Publisher {
	return &logPublisher{log: log}
}

type logPublisher struct {
	log *slog.Logger
}

func (l *logPublisher) Publish(ctx context.Context, p Progress) error {
	l.log.InfoContext(ctx, "progress",
		"run_id", p.RunID,
		"phase", p.Phase,
		"figure", p.Figure,
		"completed", p.Completed,
		"total", p.Total,
	)
	return nil
}

// Multi fans each event out to every publisher and returns the first error.
func Multi(pubs ...Publisher) Publisher {
	return multiPublisher(pubs)
}

type multiPublisher []Publisher

func (m multiPublisher) Publish(ctx context.Context, p Progress) error {
	var first error
	for _, pub := range m {
		if err := pub.Publish(ctx, p); err != nil && first == nil {
			first = err
		}
	}
	return first
}
