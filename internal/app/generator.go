package app

import (
	"context"
	"fmt"
	"net/http"

	"kira/internal/infra"
	"kira/internal/providers/textgen"
)

// newGenerator builds the configured provider client behind a circuit
// breaker. Without a key, development falls back to synthetic text and other
// environments fail.
func (c *Container) newGenerator(ctx context.Context) (textgen.Generator, error) {
	cfg := c.Config
	provider := cfg.TextGenProvider
	if provider == textgen.ProviderSynthetic {
		return textgen.Synthetic{}, nil
	}

	key, err := c.apiKey(ctx, provider)
	if err != nil {
		return nil, err
	}
	if key == "" {
		if cfg.AppEnv == "development" {
			c.Logger.Warn().Str("provider", provider).Msg("no api key configured, using synthetic text")
			return textgen.Synthetic{}, nil
		}
		return nil, fmt.Errorf("no api key configured for text provider %q", provider)
	}

	httpClient := &http.Client{Timeout: cfg.TextGenTimeout}
	var gen textgen.Generator
	switch provider {
	case textgen.ProviderXAI:
		gen, err = textgen.NewOpenAIClient(textgen.OpenAIOptions{
			Provider:   textgen.ProviderXAI,
			APIKey:     key,
			Model:      cfg.XAIModel,
			BaseURL:    cfg.XAIBaseURL,
			HTTPClient: httpClient,
			OnWarning:  c.warnModel(provider),
		})
	case textgen.ProviderOpenAI:
		gen, err = textgen.NewOpenAIClient(textgen.OpenAIOptions{
			Provider:     textgen.ProviderOpenAI,
			APIKey:       key,
			Model:        cfg.OpenAIModel,
			BaseURL:      cfg.OpenAIBaseURL,
			Organization: cfg.OpenAIOrg,
			HTTPClient:   httpClient,
			OnWarning:    c.warnModel(provider),
		})
	case textgen.ProviderGemini:
		gen, err = textgen.NewGeminiClient(textgen.GeminiOptions{
			APIKey:     key,
			Model:      cfg.GeminiModel,
			BaseURL:    cfg.GeminiBaseURL,
			HTTPClient: httpClient,
		})
	default:
		return nil, fmt.Errorf("unsupported TEXTGEN_PROVIDER %q", provider)
	}
	if err != nil {
		return nil, err
	}

	c.Logger.Info().Str("provider", provider).Msg("text generator ready")
	return textgen.NewBreaker(gen, textgen.BreakerOptions{
		FailureThreshold: uint32(max(cfg.BreakerThreshold, 1)),
		OpenTimeout:      cfg.BreakerOpenFor,
		Logger:           c.Logger,
	}), nil
}

// apiKey prefers the environment and falls back to integration_tokens when
// the postgres store is in use.
func (c *Container) apiKey(ctx context.Context, provider string) (string, error) {
	configured := configuredKey(c.Config, provider)
	if c.Credentials == nil {
		return configured, nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.Config.StoreTimeout)
	defer cancel()
	key, err := c.Credentials.Resolve(ctx, provider, configured)
	if err != nil {
		return "", fmt.Errorf("load %s api key: %w", provider, err)
	}
	return key, nil
}

func configuredKey(cfg *infra.Config, provider string) string {
	switch provider {
	case textgen.ProviderXAI:
		return cfg.XAIAPIKey
	case textgen.ProviderOpenAI:
		return cfg.OpenAIAPIKey
	case textgen.ProviderGemini:
		return cfg.GeminiAPIKey
	}
	return ""
}

func (c *Container) warnModel(provider string) func(reason, detail string) {
	return func(reason, detail string) {
		c.Logger.Warn().Str("provider", provider).Str("reason", reason).Msg(detail)
	}
}
