package ollama

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"garmin-fitness-assistant/internal/advisor"
)

func TestGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected /api/generate, got %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}

		body, _ := io.ReadAll(r.Body)
		var req generateRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.Model != "llama3:8b-instruct-q4_1" {
			t.Errorf("Unexpected model: %s", req.Model)
		}
		if req.Stream {
			t.Error("Expected stream to be false")
		}
		if req.Prompt == "" {
			t.Error("Expected non-empty prompt")
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(generateResponse{Response: "  Run easy tomorrow.  "})
	}))
	defer server.Close()

	client := NewClient(server.URL, "llama3:8b-instruct-q4_1", 5*time.Second, nil)

	text, err := client.Generate(context.Background(), "What should I run tomorrow?")
	if err != nil {
		t.Fatalf("Failed to generate: %v", err)
	}
	if text != "Run easy tomorrow." {
		t.Errorf("Expected trimmed completion, got %q", text)
	}
}

func TestGenerateFaultsWrapUnavailable(t *testing.T) {
	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not loaded", http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(server.URL, "llama3", 5*time.Second, nil)
		_, err := client.Generate(context.Background(), "prompt")
		if !errors.Is(err, advisor.ErrLLMUnavailable) {
			t.Errorf("Expected ErrLLMUnavailable, got %v", err)
		}
	})

	t.Run("EmptyCompletion", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(generateResponse{Response: "   "})
		}))
		defer server.Close()

		client := NewClient(server.URL, "llama3", 5*time.Second, nil)
		_, err := client.Generate(context.Background(), "prompt")
		if !errors.Is(err, advisor.ErrLLMUnavailable) {
			t.Errorf("Expected ErrLLMUnavailable, got %v", err)
		}
	})

	t.Run("UndecodableBody", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer server.Close()

		client := NewClient(server.URL, "llama3", 5*time.Second, nil)
		_, err := client.Generate(context.Background(), "prompt")
		if !errors.Is(err, advisor.ErrLLMUnavailable) {
			t.Errorf("Expected ErrLLMUnavailable, got %v", err)
		}
	})

	t.Run("ConnectionRefused", func(t *testing.T) {
		// Point at a server that is already closed
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		client := NewClient(server.URL, "llama3", time.Second, nil)
		_, err := client.Generate(context.Background(), "prompt")
		if !errors.Is(err, advisor.ErrLLMUnavailable) {
			t.Errorf("Expected ErrLLMUnavailable, got %v", err)
		}
	})
}
