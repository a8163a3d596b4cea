package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// openAIClient calls an OpenAI-compatible Chat Completions API. It backs both
// the openai and openrouter providers.
type openAIClient struct {
	provider Provider
	model    openai.ChatModel
	client   *openai.Client
}

func newOpenAIClient(cfg ProviderConfig, extra ...option.RequestOption) *openAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	opts = append(opts, extra...)
	cli := openai.NewClient(opts...)
	return &openAIClient{
		provider: cfg.Provider,
		model:    openai.ChatModel(cfg.Model),
		client:   &cli,
	}
}

// newOpenRouterClient points the OpenAI client at OpenRouter and adds the
// attribution headers OpenRouter expects.
func newOpenRouterClient(cfg ProviderConfig) *openAIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = openRouterBaseURL
	}
	return newOpenAIClient(cfg,
		option.WithHeader("HTTP-Referer", "https://github.com/paper-analyzer"),
		option.WithHeader("X-Title", "Paper Analyzer"),
	)
}

func (c *openAIClient) Complete(ctx context.Context, req Request) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("%w: nil %s client", ErrConfiguration, c.providerName())
	}
	params := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: buildMessages(req.Prompt),
	}
	if req.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        req.Schema.Name,
					Description: openai.String(req.Schema.Description),
					Schema:      req.Schema.JSON,
					Strict:      openai.Bool(true),
				},
			},
		}
	}
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrNetwork, c.provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: %s: no choices returned", ErrNetwork, c.provider)
	}
	return resp.Choices[0].Message.Content, nil
}

// VerifyKey lists models, which fails fast on a bad key.
func (c *openAIClient) VerifyKey(ctx context.Context) error {
	if _, err := c.client.Models.List(ctx); err != nil {
		return fmt.Errorf("%w: %s: verify key: %w", ErrNetwork, c.provider, err)
	}
	return nil
}

func (c *openAIClient) providerName() Provider {
	if c == nil {
		return ProviderOpenAI
	}
	return c.provider
}

func buildMessages(user string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(user),
				},
			},
		},
	}
}
