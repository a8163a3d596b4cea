package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// geminiClient calls the Gemini API through Google's genai SDK.
type geminiClient struct {
	model  string
	client *genai.Client
}

func newGeminiClient(ctx context.Context, cfg ProviderConfig) (*geminiClient, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	cli, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini: %w", ErrConfiguration, err)
	}
	return &geminiClient{model: cfg.Model, client: cli}, nil
}

func (c *geminiClient) Complete(ctx context.Context, req Request) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("%w: nil gemini client", ErrConfiguration)
	}
	var gc *genai.GenerateContentConfig
	if req.Schema != nil {
		gc = &genai.GenerateContentConfig{
			ResponseMIMEType:   "application/json",
			ResponseJsonSchema: req.Schema.JSON,
		}
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), gc)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %w", ErrNetwork, err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: gemini: no candidates returned", ErrNetwork)
	}
	return text, nil
}
