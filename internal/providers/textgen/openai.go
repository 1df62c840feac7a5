package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	ProviderXAI    = "xai"
	ProviderOpenAI = "openai"

	DefaultXAIBaseURL    = "https://api.x.ai/v1"
	DefaultXAIModel      = "grok-2-1212"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-4o-mini"

	openAIDefaultTimeout = 60 * time.Second
)

// OpenAIOptions configures an OpenAI-compatible chat completions client.
type OpenAIOptions struct {
	Provider     string
	APIKey       string
	Model        string
	BaseURL      string
	Organization string
	HTTPClient   *http.Client
	OnWarning    func(reason, detail string)
}

// OpenAIClient talks to any chat completions endpoint that follows the
// OpenAI wire format. xAI's Grok models are served this way.
type OpenAIClient struct {
	provider     string
	apiKey       string
	model        string
	baseURL      string
	organization string
	client       *http.Client
}

var modelAliases = map[string]string{
	"grok":          "grok-2-1212",
	"grok-2":        "grok-2-1212",
	"grok-2-latest": "grok-2-1212",
	"grok2":         "grok-2-1212",
	"gpt4o-mini":    "gpt-4o-mini",
	"gpt-3.5":       "gpt-3.5-turbo",
	"gpt35-turbo":   "gpt-3.5-turbo",
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewOpenAIClient validates opts and returns a client. Provider defaults to
// xai, which also selects the xAI base URL and model.
func NewOpenAIClient(opts OpenAIOptions) (*OpenAIClient, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("textgen: api key is required")
	}
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = ProviderXAI
	}
	defaultBase, defaultModel := DefaultXAIBaseURL, DefaultXAIModel
	if provider == ProviderOpenAI {
		defaultBase, defaultModel = DefaultOpenAIBaseURL, DefaultOpenAIModel
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBase
	}
	requested := strings.TrimSpace(opts.Model)
	model, reason := normalizeModel(requested, defaultModel)
	if reason != "" && opts.OnWarning != nil {
		opts.OnWarning("model_"+reason, fmt.Sprintf("requested=%s resolved=%s", requested, model))
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: openAIDefaultTimeout}
	}
	return &OpenAIClient{
		provider:     provider,
		apiKey:       strings.TrimSpace(opts.APIKey),
		model:        model,
		baseURL:      baseURL,
		organization: strings.TrimSpace(opts.Organization),
		client:       client,
	}, nil
}

// Name returns the provider name.
func (o *OpenAIClient) Name() string { return o.provider }

// Model returns the resolved model name.
func (o *OpenAIClient) Model() string { return o.model }

// Generate sends the prompt as a single user message.
func (o *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	payload := chatRequest{
		Model:       o.model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", fmt.Errorf("%s: encode request: %w", o.provider, err)
	}
	endpoint := o.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("%s: build request: %w", o.provider, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	if o.organization != "" {
		httpReq.Header.Set("OpenAI-Organization", o.organization)
	}
	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%s: http request: %w", o.provider, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return "", &StatusError{Provider: o.provider, Status: resp.StatusCode, Body: readErrorBody(resp.Body)}
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%s: decode response: %w", o.provider, err)
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

var _ Generator = (*OpenAIClient)(nil)

func normalizeModel(name, fallback string) (string, string) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fallback, ""
	}
	normalized := strings.ToLower(trimmed)
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	if alias, ok := modelAliases[normalized]; ok {
		return alias, "alias"
	}
	return normalized, ""
}
