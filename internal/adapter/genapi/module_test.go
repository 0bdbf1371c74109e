package genapi

import (
	"testing"

	"github.com/polkiloo/youwow/internal/config"
)

func TestNewClientUsesConfig(t *testing.T) {
	cfg := &config.Config{GenAPI: config.GenAPIConfig{BaseURL: "http://example.com", APIKey: "key", Model: "gpt"}}
	client, err := newClient(clientParams{Config: cfg, Logger: testLogger()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client == nil {
		t.Fatal("expected client instance")
	}
}
