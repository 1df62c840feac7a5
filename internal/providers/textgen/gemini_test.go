package textgen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestGeminiClientGenerate(t *testing.T) {
	var captured geminiRequest
	var path, key string
	client, err := NewGeminiClient(GeminiOptions{
		APIKey: "g-key",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			path = r.URL.Path
			key = r.Header.Get("x-goog-api-key")
			if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			return jsonResponse(http.StatusOK, `{"candidates":[{"content":{"role":"model","parts":[{"text":"part one, "},{"text":"part two"}]}}]}`), nil
		})},
	})
	if err != nil {
		t.Fatalf("NewGeminiClient returned error: %v", err)
	}

	text, err := client.Generate(context.Background(), Request{Prompt: "prompt", MaxTokens: 1200, Temperature: 0.7})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if text != "part one, part two" {
		t.Fatalf("text = %q", text)
	}
	if path != "/v1beta/models/gemini-1.5-flash:generateContent" {
		t.Fatalf("path = %q", path)
	}
	if key != "g-key" {
		t.Fatalf("api key header = %q", key)
	}
	if captured.GenerationConfig.MaxOutputTokens != 1200 || captured.Contents[0].Parts[0].Text != "prompt" {
		t.Fatalf("request = %+v", captured)
	}
}

func TestGeminiClientNoCandidates(t *testing.T) {
	client, _ := NewGeminiClient(GeminiOptions{
		APIKey: "g-key",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{"candidates":[]}`), nil
		})},
	})
	if _, err := client.Generate(context.Background(), Request{Prompt: "p"}); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestGeminiClientStatusError(t *testing.T) {
	client, _ := NewGeminiClient(GeminiOptions{
		APIKey: "g-key",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusInternalServerError, `oops`), nil
		})},
	})
	_, err := client.Generate(context.Background(), Request{Prompt: "p"})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Provider != ProviderGemini {
		t.Fatalf("expected gemini StatusError, got %v", err)
	}
}

func TestSyntheticIsDeterministic(t *testing.T) {
	a, err := Synthetic{}.Generate(context.Background(), Request{Prompt: "line one\nline two"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	b, _ := Synthetic{}.Generate(context.Background(), Request{Prompt: "line one\nline two"})
	if a != b {
		t.Fatalf("synthetic output not deterministic: %q vs %q", a, b)
	}
	c, _ := Synthetic{}.Generate(context.Background(), Request{Prompt: "other"})
	if a == c {
		t.Fatal("synthetic output should depend on the prompt")
	}
}
