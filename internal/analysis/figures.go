package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"paper-analyzer/internal/document"
	"paper-analyzer/internal/events"
	"paper-analyzer/internal/prompt"
)

const maxDefaultWorkers = 32

// DefaultWorkers is the pool size used when FigureProcessor.Workers is zero.
func DefaultWorkers() int {
	return min(maxDefaultWorkers, runtime.NumCPU()+4)
}

// FigureProcessor fans per-figure queries out over a bounded worker pool.
// Any failure cancels the batch and no answers are returned.
type FigureProcessor struct {
	Exec    *Executor
	Workers int
	Events  events.Publisher
	RunID   string
	Log     *slog.Logger
}

// Process asks the information and connection questions for every figure in
// [0, total). The result is indexed by figure index.
func (p *FigureProcessor) Process(ctx context.Context, doc document.Document, total int) ([]FigureAnswer, error) {
	return p.run(ctx, events.PhaseFigures, total, func(ctx context.Context, i int) (FigureAnswer, error) {
		vars := prompt.Vars{prompt.VarFigureNumber: i + 1}
		info, err := p.Exec.Query(ctx, doc, prompt.FigureInfo, vars, nil)
		if err != nil {
			return FigureAnswer{}, err
		}
		conn, err := p.Exec.Query(ctx, doc, prompt.FigureConnection, vars, nil)
		if err != nil {
			return FigureAnswer{}, err
		}
		return FigureAnswer{Index: i, Information: info, Connection: conn}, nil
	})
}

// Expand elaborates both answers of every figure. It expects answers as
// returned by Process.
func (p *FigureProcessor) Expand(ctx context.Context, doc document.Document, answers []FigureAnswer) ([]FigureAnswer, error) {
	return p.run(ctx, events.PhaseExpansion, len(answers), func(ctx context.Context, i int) (FigureAnswer, error) {
		a := answers[i]
		info, err := p.Exec.Expand(ctx, doc, a.Information)
		if err != nil {
			return FigureAnswer{}, err
		}
		conn, err := p.Exec.Expand(ctx, doc, a.Connection)
		if err != nil {
			return FigureAnswer{}, err
		}
		return FigureAnswer{Index: a.Index, Information: info, Connection: conn}, nil
	})
}

func (p *FigureProcessor) run(ctx context.Context, phase events.Phase, total int, work func(context.Context, int) (FigureAnswer, error)) ([]FigureAnswer, error) {
	if total < 0 {
		return nil, fmt.Errorf("invalid figure count %d", total)
	}
	out := make([]FigureAnswer, total)
	if total == 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers())
	var completed atomic.Int64

	for i := range total {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a, err := work(gctx, i)
			if err != nil {
				return fmt.Errorf("%s: figure %d: %w", phase, i+1, err)
			}
			// Each goroutine owns out[i]; no lock needed.
			out[i] = a
			p.report(gctx, phase, i, int(completed.Add(1)), total)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *FigureProcessor) report(ctx context.Context, phase events.Phase, i, completed, total int) {
	if p.Events == nil {
		return
	}
	ev := events.Progress{RunID: p.RunID, Phase: phase, Figure: i + 1, Completed: completed, Total: total}
	if err := p.Events.Publish(ctx, ev); err != nil {
		p.logger().Warn("failed to publish progress", "phase", phase, "figure", i+1, "err", err)
	}
}

func (p *FigureProcessor) workers() int {
	if p.Workers > 0 {
		return p.Workers
	}
	return DefaultWorkers()
}

func (p *FigureProcessor) logger() *slog.Logger {
	if p.Log != nil {
		return p.Log
	}
	return slog.Default()
}
