package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"paper-analyzer/internal/llm"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	s := &Session{
		ID:        "abc",
		Provider:  llm.ProviderConfig{Provider: llm.ProviderOpenAI, Model: "gpt-4o", APIKey: "sk-test"},
		CreatedAt: time.Now(),
	}
	if err := store.Save(ctx, s, time.Hour); err != nil {
		t.Fatalf("Expected no error on Save, got %v", err)
	}

	got, err := store.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got.Provider != s.Provider {
		t.Errorf("Expected provider %+v, got %+v", s.Provider, got.Provider)
	}

	// The store keeps a copy.
	got.Provider.Model = "changed"
	again, _ := store.Get(ctx, "abc")
	if again.Provider.Model != "gpt-4o" {
		t.Errorf("Expected stored session to be unaffected, got %q", again.Provider.Model)
	}

	if err := store.Delete(ctx, "abc"); err != nil {
		t.Errorf("Expected no error on Delete, got %v", err)
	}
	if _, err := store.Get(ctx, "abc"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after Delete, got %v", err)
	}

	if err := store.Close(); err != nil {
		t.Errorf("Expected no error on Close, got %v", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	if err := store.Save(ctx, &Session{ID: "short"}, time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, &Session{ID: "forever"}, 0); err != nil {
		t.Fatal(err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Get(ctx, "short"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected expired session to be gone, got %v", err)
	}
	if _, err := store.Get(ctx, "forever"); err != nil {
		t.Errorf("Expected session without ttl to remain, got %v", err)
	}
}
