package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Path    string
	Headers http.Header
	Body    map[string]any
}

// newChatServer serves a canned chat completion and records each request.
func newChatServer(t *testing.T, status int, content string) (*httptest.Server, func() []capturedRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		seen []capturedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		seen = append(seen, capturedRequest{Path: r.URL.Path, Headers: r.Header.Clone(), Body: body})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/models") {
			_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
			return
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		resp := map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedRequest(nil), seen...)
	}
}

func TestOpenAIComplete(t *testing.T) {
	srv, seen := newChatServer(t, http.StatusOK, "The paper is about graphs.")

	client, err := NewClient(context.Background(), ProviderConfig{
		Provider: ProviderOpenAI, Model: "gpt-4o", APIKey: "sk-test", BaseURL: srv.URL,
	})
	require.NoError(t, err)

	out, err := client.Complete(context.Background(), Request{Prompt: "What is this paper about?"})
	require.NoError(t, err)
	assert.Equal(t, "The paper is about graphs.", out)

	reqs := seen()
	require.Len(t, reqs, 1)
	assert.True(t, strings.HasSuffix(reqs[0].Path, "/chat/completions"), reqs[0].Path)
	assert.Equal(t, "Bearer sk-test", reqs[0].Headers.Get("Authorization"))
	assert.Equal(t, "gpt-4o", reqs[0].Body["model"])
	assert.NotContains(t, reqs[0].Body, "response_format")

	messages, ok := reqs[0].Body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].(map[string]any)["role"])
}

func TestOpenAICompleteWithSchema(t *testing.T) {
	srv, seen := newChatServer(t, http.StatusOK, `{"title":"T","authors":"A","abstract":"B"}`)

	client, err := NewClient(context.Background(), ProviderConfig{
		Provider: ProviderOpenAI, Model: "gpt-4o", APIKey: "sk-test", BaseURL: srv.URL,
	})
	require.NoError(t, err)

	schema := SchemaFor[testDetails]("paper_details", "Paper metadata")
	out, err := client.Complete(context.Background(), Request{Prompt: "extract", Schema: schema})
	require.NoError(t, err)

	resp, err := NewResponse(out, schema)
	require.NoError(t, err)
	details, ok := As[testDetails](resp)
	require.True(t, ok)
	assert.Equal(t, "T", details.Title)

	reqs := seen()
	require.Len(t, reqs, 1)
	format, ok := reqs[0].Body["response_format"].(map[string]any)
	require.True(t, ok, "expected response_format in request")
	assert.Equal(t, "json_schema", format["type"])
	js := format["json_schema"].(map[string]any)
	assert.Equal(t, "paper_details", js["name"])
	assert.Equal(t, true, js["strict"])
}

func TestOpenRouterHeaders(t *testing.T) {
	srv, seen := newChatServer(t, http.StatusOK, "ok")

	client, err := NewClient(context.Background(), ProviderConfig{
		Provider: ProviderOpenRouter, Model: "google/gemma-2-9b-it:free", APIKey: "or-key", BaseURL: srv.URL,
	})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), Request{Prompt: "hello"})
	require.NoError(t, err)

	reqs := seen()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Paper Analyzer", reqs[0].Headers.Get("X-Title"))
	assert.NotEmpty(t, reqs[0].Headers.Get("HTTP-Referer"))
	assert.Equal(t, "Bearer or-key", reqs[0].Headers.Get("Authorization"))
}

func TestOpenAIServerErrorIsNetworkError(t *testing.T) {
	srv, seen := newChatServer(t, http.StatusInternalServerError, "")

	client, err := NewClient(context.Background(), ProviderConfig{
		Provider: ProviderOpenAI, Model: "gpt-4o", APIKey: "sk-test", BaseURL: srv.URL,
	})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), Request{Prompt: "hi"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork), "got %v", err)
	assert.Len(t, seen(), 1, "requests must not be retried")
}

func TestOpenAIVerifyKey(t *testing.T) {
	srv, seen := newChatServer(t, http.StatusOK, "")

	client, err := NewClient(context.Background(), ProviderConfig{
		Provider: ProviderOpenAI, Model: "gpt-4o", APIKey: "sk-test", BaseURL: srv.URL,
	})
	require.NoError(t, err)

	verifier, ok := client.(KeyVerifier)
	require.True(t, ok)
	require.NoError(t, verifier.VerifyKey(context.Background()))

	reqs := seen()
	require.Len(t, reqs, 1)
	assert.True(t, strings.HasSuffix(reqs[0].Path, "/models"), reqs[0].Path)
}
