// Package mealplan turns a calorie target into a four-meal daily plan, either
// through the configured generative provider or from fixed templates.
package mealplan

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"optibite/internal/domain"
	"optibite/internal/infra"
	"optibite/internal/providers/genai"
)

const (
	defaultTimeout   = 8 * time.Second
	defaultMaxTokens = 1500
	planTemperature  = 0.7
)

// Options configures a Synthesizer.
type Options struct {
	Completer genai.Completer
	Logger    *infra.Logger
	Timeout   time.Duration
	MaxTokens int
}

// Synthesizer builds meal plans. It is safe for concurrent use.
type Synthesizer struct {
	completer genai.Completer
	logger    *infra.Logger
	timeout   time.Duration
	maxTokens int
}

// NewSynthesizer applies defaults to opts. A nil Completer behaves as disabled.
func NewSynthesizer(opts Options) *Synthesizer {
	s := &Synthesizer{
		completer: opts.Completer,
		logger:    opts.Logger,
		timeout:   opts.Timeout,
		maxTokens: opts.MaxTokens,
	}
	if s.completer == nil {
		s.completer = genai.Disabled{Reason: "no completer configured"}
	}
	if s.logger == nil {
		discard := infra.Logger(zerolog.Nop())
		s.logger = &discard
	}
	if s.timeout <= 0 {
		s.timeout = defaultTimeout
	}
	if s.maxTokens <= 0 {
		s.maxTokens = defaultMaxTokens
	}
	return s
}

// Provider reports the name of the configured completer.
func (s *Synthesizer) Provider() string {
	return s.completer.Name()
}

// Synthesize builds a plan with English copy.
func (s *Synthesizer) Synthesize(ctx context.Context, profile domain.UserProfile, estimate domain.EnergyEstimate) domain.MealPlan {
	return s.SynthesizeLocalized(ctx, profile, estimate, "")
}

// SynthesizeLocalized tries the generative path once and falls back to the
// template plan on any failure. It never returns a partial plan.
func (s *Synthesizer) SynthesizeLocalized(ctx context.Context, profile domain.UserProfile, estimate domain.EnergyEstimate, locale string) domain.MealPlan {
	plan, err := s.generate(ctx, profile, estimate, locale)
	if err == nil {
		return plan
	}

	reason := failureReason(err)
	evt := s.logger.Warn()
	if errors.Is(err, genai.ErrUnavailable) {
		evt = s.logger.Debug()
	}
	evt.Err(err).
		Str("provider", s.completer.Name()).
		Str("reason", reason).
		Msg("meal plan generation fell back to template")
	return TemplatePlan(profile, estimate)
}

func (s *Synthesizer) generate(ctx context.Context, profile domain.UserProfile, estimate domain.EnergyEstimate, locale string) (domain.MealPlan, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.completer.Complete(ctx, genai.CompletionRequest{
		System:      planSystemPrompt,
		User:        buildPlanPrompt(profile, estimate, locale),
		MaxTokens:   s.maxTokens,
		Temperature: planTemperature,
		JSON:        true,
	})
	if err != nil {
		return domain.MealPlan{}, err
	}
	plan, err := parsePlan(raw)
	if err != nil {
		return domain.MealPlan{}, &parseError{err: err}
	}
	plan.Source = domain.SourceGenerative
	plan.Provider = s.completer.Name()
	return plan, nil
}

type parseError struct {
	err error
}

func (e *parseError) Error() string { return "parse model response: " + e.err.Error() }
func (e *parseError) Unwrap() error { return e.err }

func failureReason(err error) string {
	var pe *parseError
	switch {
	case errors.Is(err, genai.ErrUnavailable):
		return "disabled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, errIncompletePlan):
		return "incomplete"
	case errors.As(err, &pe):
		return "malformed"
	case errors.Is(err, genai.ErrEmptyResponse):
		return "empty_response"
	default:
		return "provider_error"
	}
}
