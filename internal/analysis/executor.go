package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync/atomic"
	"time"

	"paper-analyzer/internal/document"
	"paper-analyzer/internal/llm"
	"paper-analyzer/internal/prompt"
)

// Executor renders prompts against a document and sends them, one request per
// call. Identical calls are never deduplicated.
type Executor struct {
	client   llm.ChatClient
	expander llm.ChatClient
	timeout  time.Duration
	log      *slog.Logger
	calls    atomic.Int64
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithExpansionClient routes Expand calls to a different client.
func WithExpansionClient(c llm.ChatClient) ExecutorOption {
	return func(e *Executor) {
		if c != nil {
			e.expander = c
		}
	}
}

// WithTimeout bounds each request. Zero means no deadline beyond ctx.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.timeout = d }
}

// WithLogger sets the logger used for per-request debug records.
func WithLogger(log *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		if log != nil {
			e.log = log
		}
	}
}

// NewExecutor builds an Executor around client.
func NewExecutor(client llm.ChatClient, opts ...ExecutorOption) *Executor {
	e := &Executor{client: client, expander: client, log: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Calls returns the number of requests sent so far.
func (e *Executor) Calls() int64 { return e.calls.Load() }

// Query renders tmpl with vars plus the document text and sends it. With a
// non-nil schema the answer is decoded into a llm.Structured response.
func (e *Executor) Query(ctx context.Context, doc document.Document, tmpl *prompt.Template, vars prompt.Vars, schema *llm.Schema) (llm.Response, error) {
	return e.query(ctx, e.client, doc, tmpl, vars, schema)
}

// Expand asks for a longer, more detailed version of answer using the full
// document as context.
func (e *Executor) Expand(ctx context.Context, doc document.Document, answer llm.Response) (llm.Response, error) {
	vars := prompt.Vars{prompt.VarAnswer: AnswerText(answer)}
	return e.query(ctx, e.expander, doc, prompt.ExpandAnswer, vars, nil)
}

// QueryAndExpand runs Query and immediately expands its answer.
func (e *Executor) QueryAndExpand(ctx context.Context, doc document.Document, tmpl *prompt.Template, vars prompt.Vars, schema *llm.Schema) (llm.Response, error) {
	initial, err := e.Query(ctx, doc, tmpl, vars, schema)
	if err != nil {
		return nil, err
	}
	return e.Expand(ctx, doc, initial)
}

func (e *Executor) query(ctx context.Context, client llm.ChatClient, doc document.Document, tmpl *prompt.Template, vars prompt.Vars, schema *llm.Schema) (llm.Response, error) {
	all := maps.Clone(vars)
	if all == nil {
		all = prompt.Vars{}
	}
	all[prompt.VarText] = doc.Text()

	text, err := prompt.Render(tmpl, all)
	if err != nil {
		return nil, err
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	e.calls.Add(1)
	out, err := client.Complete(ctx, llm.Request{Prompt: text, Schema: schema})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", tmpl.Name(), err)
	}
	e.log.DebugContext(ctx, "query completed",
		"template", tmpl.Name(),
		"structured", schema != nil,
		"response_bytes", len(out),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	resp, err := llm.NewResponse(out, schema)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", tmpl.Name(), err)
	}
	return resp, nil
}
