package turingprobe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaGeneratorSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("wrong content type: %s", r.Header.Get("Content-Type"))
		}

		var req ollamaGenerateRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "llama3.1" {
			t.Errorf("expected llama3.1, got %s", req.Model)
		}
		if req.Prompt != "say hi" {
			t.Errorf("expected prompt 'say hi', got %s", req.Prompt)
		}
		if req.Stream {
			t.Error("expected stream=false")
		}
		if req.Options.Temperature != 0.85 || req.Options.TopP != 0.9 || req.Options.NumPredict != 100 {
			t.Errorf("unexpected options: %+v", req.Options)
		}

		json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "  hi there \n", Done: true})
	}))
	defer srv.Close()

	g := NewOllamaGenerator(WithOllamaHost(srv.URL + "/"))
	text, err := g.Generate(context.Background(), GenerationRequest{
		Model:       "llama3.1",
		Prompt:      "say hi",
		MaxTokens:   100,
		Temperature: 0.85,
		TopP:        0.9,
	})
	if err != nil {
		t.Fatal(err)
	}
	if text != "hi there" {
		t.Errorf("expected trimmed text, got %q", text)
	}
}

func TestOllamaGeneratorHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	g := NewOllamaGenerator(WithOllamaHost(srv.URL))
	_, err := g.Generate(context.Background(), GenerationRequest{Model: "missing", Prompt: "x"})
	if err == nil {
		t.Error("expected error for HTTP 404")
	}
}

func TestOllamaGeneratorEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Done: true})
	}))
	defer srv.Close()

	g := NewOllamaGenerator(WithOllamaHost(srv.URL))
	_, err := g.Generate(context.Background(), GenerationRequest{Model: "m", Prompt: "x"})
	if err == nil {
		t.Error("expected error for empty response")
	}
}

func TestOllamaGeneratorDefaults(t *testing.T) {
	g := NewOllamaGenerator()
	if g.host != "http://localhost:11434" {
		t.Errorf("expected default host, got %s", g.host)
	}
}

func TestOllamaGeneratorConnectionRefused(t *testing.T) {
	g := NewOllamaGenerator(WithOllamaHost("http://localhost:1"))
	_, err := g.Generate(context.Background(), GenerationRequest{Model: "m", Prompt: "x"})
	if err == nil {
		t.Error("expected connection error")
	}
}
