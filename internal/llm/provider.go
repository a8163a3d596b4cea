package llm

import (
	"context"
	"fmt"
	"sort"
)

// Provider names a supported backend.
type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderOpenRouter Provider = "openrouter"
	ProviderGemini     Provider = "gemini"
)

// ProviderConfig selects the backend, model and credentials for one analysis run.
type ProviderConfig struct {
	Provider Provider `json:"provider"`
	Model    string   `json:"model"`
	APIKey   string   `json:"api_key"`
	BaseURL  string   `json:"base_url,omitempty"`
}

// ProviderInfo describes a provider's known models and default endpoint.
type ProviderInfo struct {
	Provider Provider `json:"provider"`
	Models   []string `json:"models"`
	BaseURL  string   `json:"base_url,omitempty"`
}

const openRouterBaseURL = "https://openrouter.ai/api/v1"

var catalog = map[Provider]ProviderInfo{
	ProviderOpenAI: {
		Provider: ProviderOpenAI,
		Models:   []string{"gpt-4o", "gpt-4o-mini"},
	},
	ProviderOpenRouter: {
		Provider: ProviderOpenRouter,
		Models: []string{
			"google/gemini-exp-1114",
			"google/gemma-2-9b-it:free",
			"google/gemini-flash-1.5-8b-exp",
		},
		BaseURL: openRouterBaseURL,
	},
	ProviderGemini: {
		Provider: ProviderGemini,
		Models:   []string{"gemini-1.5-flash", "gemini-1.5-pro"},
	},
}

// Catalog lists the supported providers in a stable order.
func Catalog() []ProviderInfo {
	out := make([]ProviderInfo, 0, len(catalog))
	for _, info := range catalog {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out
}

// Lookup returns the catalog entry for p.
func Lookup(p Provider) (ProviderInfo, bool) {
	info, ok := catalog[p]
	return info, ok
}

// DefaultModel is the first catalog model for p, or "" for unknown providers.
func DefaultModel(p Provider) string {
	info, ok := catalog[p]
	if !ok || len(info.Models) == 0 {
		return ""
	}
	return info.Models[0]
}

// Validate reports whether cfg can build a client.
func (cfg ProviderConfig) Validate() error {
	if _, ok := catalog[cfg.Provider]; !ok {
		return fmt.Errorf("%w: unsupported provider %q (valid options: openai, openrouter, gemini)", ErrConfiguration, cfg.Provider)
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("%w: api key required for provider %s", ErrConfiguration, cfg.Provider)
	}
	if cfg.Model == "" {
		return fmt.Errorf("%w: model required for provider %s", ErrConfiguration, cfg.Provider)
	}
	return nil
}

// NewClient builds the ChatClient variant for cfg.Provider.
func NewClient(ctx context.Context, cfg ProviderConfig) (ChatClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case ProviderOpenAI:
		return newOpenAIClient(cfg), nil
	case ProviderOpenRouter:
		return newOpenRouterClient(cfg), nil
	case ProviderGemini:
		return newGeminiClient(ctx, cfg)
	}
	return nil, fmt.Errorf("%w: unsupported provider %q", ErrConfiguration, cfg.Provider)
}
