package llm

import (
	"context"
	"errors"
)

var (
	// ErrConfiguration marks an unsupported provider or an incomplete ProviderConfig.
	ErrConfiguration = errors.New("llm: invalid configuration")
	// ErrStructuredOutput marks a response that does not match the requested schema.
	ErrStructuredOutput = errors.New("llm: response does not match schema")
	// ErrNetwork wraps any failure returned by a provider call.
	ErrNetwork = errors.New("llm: provider request failed")
)

// Request is a single-turn chat request.
type Request struct {
	Prompt string
	// Schema, when set, asks the provider for JSON matching it.
	Schema *Schema
}

// ChatClient is the capability every provider variant implements.
type ChatClient interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// KeyVerifier is implemented by clients that can check their API key cheaply.
type KeyVerifier interface {
	VerifyKey(ctx context.Context) error
}

// ClientFunc adapts a function to ChatClient.
type ClientFunc func(ctx context.Context, req Request) (string, error)

func (f ClientFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
