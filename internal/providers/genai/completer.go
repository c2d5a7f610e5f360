// Package genai wraps the text-generation providers behind a single Completer
// contract. A disabled provider fails like any other provider error.
package genai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"optibite/internal/infra"
)

var (
	// ErrUnavailable is returned by the Disabled completer.
	ErrUnavailable = errors.New("genai: generative capability unavailable")
	// ErrEmptyResponse is returned when a provider answers without any text.
	ErrEmptyResponse = errors.New("genai: empty response")
)

const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderLangChain = "langchain"
	ProviderDisabled  = "disabled"
)

// CompletionRequest is a single-turn prompt with sampling limits.
type CompletionRequest struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
	// JSON asks the provider for a JSON-only response where it supports it.
	JSON bool
}

// Completer produces text for a prompt. Implementations make exactly one
// upstream call per Complete and never retry.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Name() string
}

// Disabled is the no-op variant used when generation is switched off or has
// no credentials.
type Disabled struct {
	Reason string
}

func (d Disabled) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if d.Reason == "" {
		return "", ErrUnavailable
	}
	return "", fmt.Errorf("%w: %s", ErrUnavailable, d.Reason)
}

func (d Disabled) Name() string {
	return ProviderDisabled
}

var _ Completer = Disabled{}

func discardLogger(l *infra.Logger) *infra.Logger {
	if l != nil {
		return l
	}
	discard := infra.Logger(zerolog.New(io.Discard))
	return &discard
}

// statusError turns a non-2xx provider response into an error that carries
// the provider message when one can be read.
func statusError(provider string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	msg := strings.TrimSpace(string(data))
	if msg == "" {
		return fmt.Errorf("%s status %d", provider, resp.StatusCode)
	}
	return fmt.Errorf("%s status %d: %s", provider, resp.StatusCode, msg)
}
