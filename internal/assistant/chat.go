// Package assistant holds the conversational helpers that sit beside the meal
// planner: ingredient swaps and the nutrition chat.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"optibite/internal/domain"
	"optibite/internal/infra"
	"optibite/internal/providers/genai"
)

const (
	SourceGenerative = domain.SourceGenerative
	SourceAssistant  = "assistant"

	chatTemperature    = 0.7
	chatMaxTokens      = 500
	defaultChatTimeout = 8 * time.Second
	maxMessageLength   = 2000
)

const chatSystemPrompt = "You are OptiBite, a friendly nutrition assistant. Give practical, evidence-based advice on meals, portions and healthy eating in a few short sentences. Suggest consulting a professional for medical conditions."

type bucket struct {
	keywords []string
	response string
}

// buckets are evaluated in order and the first match wins.
var buckets = []bucket{
	{
		keywords: []string{"breakfast"},
		response: "A balanced breakfast pairs protein with slow-release carbs: try eggs or a tofu scramble with oatmeal and berries to stay full until lunch.",
	},
	{
		keywords: []string{"lunch"},
		response: "For lunch, build a bowl with lean protein, a whole grain like quinoa or brown rice, and plenty of vegetables.",
	},
	{
		keywords: []string{"dinner"},
		response: "Keep dinner light but satisfying: a palm-sized portion of protein, roasted vegetables and a small serving of complex carbs such as sweet potato.",
	},
	{
		keywords: []string{"snack"},
		response: "Good snacks combine fiber and protein, like an apple with peanut butter, Greek yogurt, or a handful of nuts.",
	},
	{
		keywords: []string{"weight loss", "lose weight", "weight-loss", "losing weight"},
		response: "Sustainable weight loss comes from a moderate calorie deficit of around 500 kcal per day, high-protein meals and regular activity.",
	},
	{
		keywords: []string{"vegan", "vegetarian", "plant-based", "plant based"},
		response: "Plant-based eating works well when you cover protein with legumes, tofu, tempeh and whole grains, and keep an eye on vitamin B12 and iron.",
	},
}

const generalResponse = "I can help with meal ideas, portions and healthy eating habits. Ask me about breakfast, lunch, dinner, snacks, weight loss or plant-based diets."

// Options configures an Assistant.
type Options struct {
	Completer genai.Completer
	Logger    *infra.Logger
	Timeout   time.Duration
}

// Assistant answers free-text nutrition questions.
type Assistant struct {
	completer genai.Completer
	logger    *infra.Logger
	timeout   time.Duration
}

// New returns an Assistant. A nil Completer behaves as disabled.
func New(opts Options) *Assistant {
	a := &Assistant{completer: opts.Completer, logger: opts.Logger, timeout: opts.Timeout}
	if a.completer == nil {
		a.completer = genai.Disabled{Reason: "no completer configured"}
	}
	if a.logger == nil {
		discard := infra.Logger(zerolog.Nop())
		a.logger = &discard
	}
	if a.timeout <= 0 {
		a.timeout = defaultChatTimeout
	}
	return a
}

// Reply answers message, trying the generative provider once before falling
// back to the keyword buckets. It returns the response and its source.
func (a *Assistant) Reply(ctx context.Context, message string) (string, string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", "", fmt.Errorf("%w: message is required", domain.ErrInvalidRequest)
	}
	if utf8.RuneCountInString(message) > maxMessageLength {
		return "", "", fmt.Errorf("%w: message exceeds %d characters", domain.ErrInvalidRequest, maxMessageLength)
	}

	text, err := a.generate(ctx, message)
	if err == nil {
		return text, SourceGenerative, nil
	}
	evt := a.logger.Warn()
	if errors.Is(err, genai.ErrUnavailable) {
		evt = a.logger.Debug()
	}
	evt.Err(err).Str("provider", a.completer.Name()).Msg("chat fell back to keyword responses")
	return KeywordReply(message), SourceAssistant, nil
}

func (a *Assistant) generate(ctx context.Context, message string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	text, err := a.completer.Complete(ctx, genai.CompletionRequest{
		System:      chatSystemPrompt,
		User:        message,
		MaxTokens:   chatMaxTokens,
		Temperature: chatTemperature,
	})
	if err != nil {
		return "", err
	}
	if text = strings.TrimSpace(text); text == "" {
		return "", genai.ErrEmptyResponse
	}
	return text, nil
}

// KeywordReply returns the canned response of the first bucket whose keyword
// appears in message, or the general response.
func KeywordReply(message string) string {
	lower := strings.ToLower(message)
	for _, b := range buckets {
		for _, kw := range b.keywords {
			if strings.Contains(lower, kw) {
				return b.response
			}
		}
	}
	return generalResponse
}
