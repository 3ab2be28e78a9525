package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllama_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("No Authorization header expected without an API key")
		}

		resp := openaiResponse{
			Choices: []openaiChoice{
				{Message: openaiMessage{Role: "assistant", Content: "local output"}},
			},
			Usage: openaiUsage{TotalTokens: 5},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	o := &Ollama{
		model:   "llama3.3",
		baseURL: server.URL,
		client:  http.DefaultClient,
	}

	resp, err := o.Generate(context.Background(), GenerateRequest{
		SystemPrompt: "test",
		UserPrompt:   "test",
		MaxTokens:    10,
	})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if resp.Content != "local output" {
		t.Errorf("Content = %q", resp.Content)
	}
}

func TestOllama_APIKeyHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer lmstudio-key" {
			t.Error("Missing Authorization header for keyed server")
		}
		resp := openaiResponse{
			Choices: []openaiChoice{
				{Message: openaiMessage{Role: "assistant", Content: "ok"}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	o := &Ollama{
		apiKey:  "lmstudio-key",
		model:   "llama3.3",
		baseURL: server.URL,
		client:  http.DefaultClient,
	}

	if _, err := o.Generate(context.Background(), GenerateRequest{UserPrompt: "test"}); err != nil {
		t.Fatalf("Generate error: %v", err)
	}
}

func TestOllama_JSONOnlySetsResponseFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body openaiRequest
		json.NewDecoder(r.Body).Decode(&body)
		if body.ResponseFormat == nil || body.ResponseFormat.Type != "json_object" {
			t.Error("JSONOnly request should set response_format json_object")
		}
		resp := openaiResponse{
			Choices: []openaiChoice{
				{Message: openaiMessage{Role: "assistant", Content: "{}"}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	o := &Ollama{
		model:   "llama3.3",
		baseURL: server.URL,
		client:  http.DefaultClient,
	}

	if _, err := o.Generate(context.Background(), GenerateRequest{UserPrompt: "test", JSONOnly: true}); err != nil {
		t.Fatalf("Generate error: %v", err)
	}
}

func TestNewOllama_NormalizesBaseURL(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"http://localhost:11434", "http://localhost:11434/v1/chat/completions"},
		{"http://localhost:11434/", "http://localhost:11434/v1/chat/completions"},
		{"http://localhost:1234/v1", "http://localhost:1234/v1/chat/completions"},
		{"http://localhost:1234/v1/chat/completions", "http://localhost:1234/v1/chat/completions"},
	}
	for _, tt := range tests {
		t.Setenv("OLLAMA_HOST", tt.host)
		o, err := NewOllama("llama3.3")
		if err != nil {
			t.Fatalf("NewOllama(%q) error: %v", tt.host, err)
		}
		if o.baseURL != tt.want {
			t.Errorf("baseURL for %q = %q, want %q", tt.host, o.baseURL, tt.want)
		}
	}
}
