// Package generation turns structured birth data into prompts and forwards
// them to a text-generation provider.
package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"kira/internal/domain"
	"kira/internal/providers/textgen"
)

// Gateway assembles prompts and calls the configured provider. Every
// provider failure surfaces as domain.ErrGenerationFailed.
type Gateway struct {
	gen    textgen.Generator
	logger zerolog.Logger
}

func NewGateway(gen textgen.Generator, logger zerolog.Logger) *Gateway {
	return &Gateway{gen: gen, logger: logger}
}

// Provider returns the name of the underlying provider.
func (g *Gateway) Provider() string { return g.gen.Name() }

func (g *Gateway) Report(ctx context.Context, b domain.BirthData, date time.Time, locale string) (string, error) {
	return g.call(ctx, "report", ReportPrompt(b, date, locale), ReportMaxTokens)
}

func (g *Gateway) DailyReport(ctx context.Context, b domain.BirthData, date time.Time, locale string) (string, error) {
	return g.call(ctx, "daily_report", DailyReportPrompt(b, date, locale), DailyReportMaxTokens)
}

func (g *Gateway) DailyInsight(ctx context.Context, b domain.BirthData, date time.Time, locale string) (string, error) {
	return g.call(ctx, "daily_insight", DailyInsightPrompt(b, date, locale), DailyInsightMaxTokens)
}

func (g *Gateway) GeneralReport(ctx context.Context, b domain.BirthData, locale string) (string, error) {
	return g.call(ctx, "general_report", GeneralReportPrompt(b, locale), GeneralReportMaxTokens)
}

func (g *Gateway) Compatibility(ctx context.Context, self, partner domain.BirthData, locale string) (string, error) {
	return g.call(ctx, "compatibility", CompatibilityPrompt(self, partner, locale), CompatibilityMaxTokens)
}

func (g *Gateway) call(ctx context.Context, kind, prompt string, maxTokens int) (string, error) {
	start := time.Now()
	text, err := g.gen.Generate(ctx, textgen.Request{
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: Temperature,
	})
	if err == nil && text == "" {
		err = textgen.ErrEmptyResponse
	}
	if err != nil {
		g.logger.Error().Err(err).
			Str("provider", g.gen.Name()).
			Str("kind", kind).
			Dur("elapsed", time.Since(start)).
			Msg("generation: provider call failed")
		if errors.Is(err, domain.ErrGenerationFailed) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}
	g.logger.Debug().
		Str("provider", g.gen.Name()).
		Str("kind", kind).
		Int("chars", len(text)).
		Dur("elapsed", time.Since(start)).
		Msg("generation: provider call ok")
	return text, nil
}
