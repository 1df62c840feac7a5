package textgen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const ProviderSynthetic = "synthetic"

// Synthetic returns deterministic placeholder text derived from the prompt.
// It keeps local and CI environments working when no provider key is set.
type Synthetic struct{}

func (Synthetic) Name() string { return ProviderSynthetic }

func (Synthetic) Generate(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(req.Prompt))
	firstLine := req.Prompt
	if idx := strings.IndexByte(firstLine, '\n'); idx >= 0 {
		firstLine = firstLine[:idx]
	}
	return fmt.Sprintf("**Synthetic reading %s**\n\n%s\n\nNo text-generation provider is configured; this placeholder stands in for the model output.",
		hex.EncodeToString(sum[:6]), strings.TrimSpace(firstLine)), nil
}

var _ Generator = Synthetic{}
