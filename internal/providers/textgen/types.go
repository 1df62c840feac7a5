package textgen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrEmptyResponse is returned when a provider answers without text.
var ErrEmptyResponse = errors.New("textgen: empty response")

// Request is a single prompt plus generation parameters.
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Generator produces free text for a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

// StatusError reports a non-2xx answer from a provider.
type StatusError struct {
	Provider string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	if body := strings.TrimSpace(e.Body); body != "" {
		return fmt.Sprintf("%s status %d: %s", e.Provider, e.Status, body)
	}
	return fmt.Sprintf("%s status %d", e.Provider, e.Status)
}

const maxErrorBody = 512

func readErrorBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return string(b)
}
