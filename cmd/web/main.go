// Package main serves the browser front end: pick a model, upload a paper,
// read the analysis.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"paper-analyzer/internal/app"
	"paper-analyzer/internal/document"
	"paper-analyzer/internal/httputil"
	"paper-analyzer/internal/llm"
	"paper-analyzer/internal/pipeline"
	"paper-analyzer/internal/session"
)

const defaultRequestTimeout = 30 * time.Minute

type server struct {
	deps     app.Deps
	sessions session.Store
	pages    *pages

	parse       func(source string, content []byte) (document.Document, error)
	newClient   func(ctx context.Context, cfg llm.ProviderConfig) (llm.ChatClient, error)
	newAnalyzer func(ctx context.Context, cfg llm.ProviderConfig, runID string) (*pipeline.Analyzer, error)
}

func newServer(deps app.Deps, sessions session.Store) *server {
	return &server{
		deps:      deps,
		sessions:  sessions,
		pages:     newPages(),
		parse:     document.Parse,
		newClient: llm.NewClient,
		newAnalyzer: func(ctx context.Context, cfg llm.ProviderConfig, runID string) (*pipeline.Analyzer, error) {
			return app.BuildAnalyzer(ctx, deps, cfg, runID)
		},
	}
}

func (s *server) routes() chi.Router {
	timeout := s.deps.Config.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	r := httputil.NewRouter(s.deps.Log, timeout)

	r.Get("/", s.indexHandler)
	r.Post("/session", s.saveSessionHandler)
	r.Post("/session/clear", s.clearSessionHandler)
	r.Post("/analyze", s.analyzeHandler)
	r.Post("/ask", s.askHandler)
	r.Get("/api/models", s.modelsHandler)
	r.Get("/healthz", httputil.HealthHandler(s.deps.Log))
	return r
}

func main() {
	deps, err := app.Build(nil, nil)
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Close()

	sessions, err := app.BuildSessions(deps.Config, deps.Log)
	if err != nil {
		deps.Log.Error("failed to initialize sessions", "err", err)
		os.Exit(1)
	}
	defer sessions.Close()

	srv := newServer(deps, sessions)
	addr := fmt.Sprintf(":%d", deps.Config.Port)
	deps.Log.Info("web listening", "addr", addr)
	if err := http.ListenAndServe(addr, srv.routes()); err != nil {
		deps.Log.Error("server failed", "err", err)
	}
}
