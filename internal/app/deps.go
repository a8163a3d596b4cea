package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"paper-analyzer/internal/analysis"
	"paper-analyzer/internal/config"
	"paper-analyzer/internal/events"
	"paper-analyzer/internal/llm"
	"paper-analyzer/internal/logger"
	"paper-analyzer/internal/pipeline"
	"paper-analyzer/internal/session"
)

// Deps bundles common runtime dependencies for the analyzer binaries.
type Deps struct {
	Config config.Config
	Log    *slog.Logger
	Events events.Publisher
	// NATS is nil unless NATS_URL is set.
	NATS *events.NATSPublisher
}

// LoadEnv loads a .env file from the working directory if there is one.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}
	return nil
}

// Build loads env, config, and shared components. override is applied to the
// loaded config before anything is built, so callers can layer flags on top.
// Logs go to logOut, or stdout when it is nil.
func Build(logOut io.Writer, override func(*config.Config)) (Deps, error) {
	if err := LoadEnv(); err != nil {
		return Deps{}, err
	}
	cfg := config.Load()
	if override != nil {
		override(&cfg)
	}
	log := logger.New(cfg.LogLevel)
	if logOut != nil {
		log = logger.NewWithWriter(logOut, cfg.LogLevel)
	}

	deps := Deps{Config: cfg, Log: log, Events: events.NewLogPublisher(log)}
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			return Deps{}, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("publishing progress to NATS")
		deps.NATS = events.NewNATS(log, nc)
		deps.Events = events.Multi(deps.Events, deps.NATS)
	}
	return deps, nil
}

// Close releases connections opened by Build.
func (d Deps) Close() error {
	if d.NATS != nil {
		return d.NATS.Close()
	}
	return nil
}

// ProviderConfig is the primary model selection from configuration.
func ProviderConfig(cfg config.Config) llm.ProviderConfig {
	return llm.ProviderConfig{
		Provider: llm.Provider(cfg.LLMProvider),
		Model:    cfg.LLMModel,
		APIKey:   cfg.APIKey(cfg.LLMProvider),
		BaseURL:  cfg.LLMBaseURL,
	}
}

// ExpansionConfig returns the model used for expansion queries, or false when
// expansion should use the primary client.
func ExpansionConfig(cfg config.Config, primary llm.ProviderConfig) (llm.ProviderConfig, bool) {
	if cfg.ExpansionProvider == "" && cfg.ExpansionModel == "" {
		return llm.ProviderConfig{}, false
	}
	exp := primary
	if cfg.ExpansionProvider != "" && llm.Provider(cfg.ExpansionProvider) != primary.Provider {
		exp = llm.ProviderConfig{
			Provider: llm.Provider(cfg.ExpansionProvider),
			Model:    llm.DefaultModel(llm.Provider(cfg.ExpansionProvider)),
			APIKey:   cfg.APIKey(cfg.ExpansionProvider),
		}
	}
	if cfg.ExpansionModel != "" {
		exp.Model = cfg.ExpansionModel
	}
	if exp == primary {
		return llm.ProviderConfig{}, false
	}
	return exp, true
}

// BuildExecutor creates the LLM clients for primary and the executor around them.
func BuildExecutor(ctx context.Context, d Deps, primary llm.ProviderConfig) (*analysis.Executor, error) {
	client, err := llm.NewClient(ctx, primary)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	d.Log.Info("using LLM client", "provider", primary.Provider, "model", primary.Model)

	opts := []analysis.ExecutorOption{
		analysis.WithTimeout(d.Config.LLMTimeout),
		analysis.WithLogger(d.Log),
	}
	if exp, ok := ExpansionConfig(d.Config, primary); ok {
		expander, err := llm.NewClient(ctx, exp)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize expansion LLM: %w", err)
		}
		d.Log.Info("using expansion LLM client", "provider", exp.Provider, "model", exp.Model)
		opts = append(opts, analysis.WithExpansionClient(expander))
	}
	return analysis.NewExecutor(client, opts...), nil
}

// BuildAnalyzer wires a pipeline for one run.
func BuildAnalyzer(ctx context.Context, d Deps, primary llm.ProviderConfig, runID string) (*pipeline.Analyzer, error) {
	exec, err := BuildExecutor(ctx, d, primary)
	if err != nil {
		return nil, err
	}
	log := d.Log.With("run_id", runID)
	return &pipeline.Analyzer{
		Exec: exec,
		Figures: &analysis.FigureProcessor{
			Exec:    exec,
			Workers: d.Config.FigureWorkers,
			Events:  d.Events,
			RunID:   runID,
			Log:     log,
		},
		OutputRoot: d.Config.OutputDir,
		Expand:     d.Config.ExpandFigures,
		Log:        log,
	}, nil
}

// BuildSessions returns the session store selected by SESSION_PROVIDER.
func BuildSessions(cfg config.Config, log *slog.Logger) (session.Store, error) {
	switch cfg.SessionProvider {
	case "memory", "":
		log.Info("using in-memory session store")
		return session.NewMemoryStore(), nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required when SESSION_PROVIDER=redis")
		}
		st, err := session.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		log.Info("using Redis session store")
		return st, nil
	default:
		return nil, fmt.Errorf("invalid SESSION_PROVIDER: %s (valid options: memory, redis)", cfg.SessionProvider)
	}
}
