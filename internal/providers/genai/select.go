package genai

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"optibite/internal/infra"
)

// Options selects and configures the completer for the process.
type Options struct {
	Enabled   bool
	Provider  string
	Timeout   time.Duration
	Gemini    GeminiOptions
	OpenAI    OpenAIOptions
	LangChain LangChainOptions
	Logger    *infra.Logger
}

// New picks the completer variant once at startup. Generation switched off
// or missing credentials yield Disabled rather than an error; an unknown
// provider name is a configuration error.
func New(opts Options) (Completer, error) {
	logger := discardLogger(opts.Logger)
	if !opts.Enabled {
		return Disabled{Reason: "generation disabled"}, nil
	}
	var client *http.Client
	if opts.Timeout > 0 {
		client = &http.Client{Timeout: opts.Timeout}
	}
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	switch provider {
	case ProviderGemini, "":
		if strings.TrimSpace(opts.Gemini.APIKey) == "" {
			return missingKey(logger, ProviderGemini), nil
		}
		g := opts.Gemini
		g.HTTPClient = firstClient(g.HTTPClient, client)
		g.Logger = logger
		return NewGeminiCompleter(g)
	case ProviderOpenAI:
		if strings.TrimSpace(opts.OpenAI.APIKey) == "" {
			return missingKey(logger, ProviderOpenAI), nil
		}
		o := opts.OpenAI
		o.HTTPClient = firstClient(o.HTTPClient, client)
		o.Logger = logger
		if o.OnWarning == nil {
			o.OnWarning = func(reason, detail string) {
				logger.Warn().Str("reason", reason).Str("detail", detail).Msg("genai: openai model normalized")
			}
		}
		return NewOpenAICompleter(o)
	case ProviderLangChain:
		if strings.TrimSpace(opts.LangChain.APIKey) == "" {
			return missingKey(logger, ProviderLangChain), nil
		}
		lc := opts.LangChain
		lc.HTTPClient = firstClient(lc.HTTPClient, client)
		lc.Logger = logger
		return NewLangChainCompleter(lc)
	default:
		return nil, fmt.Errorf("genai: unsupported provider %q", opts.Provider)
	}
}

func missingKey(logger *infra.Logger, provider string) Completer {
	logger.Warn().Str("provider", provider).Msg("genai: generation enabled but no api key configured; using templates")
	return Disabled{Reason: provider + " api key missing"}
}

func firstClient(clients ...*http.Client) *http.Client {
	for _, c := range clients {
		if c != nil {
			return c
		}
	}
	return nil
}

// OptionsFromConfig maps the environment configuration onto Options.
func OptionsFromConfig(cfg *infra.Config, logger *infra.Logger) Options {
	return Options{
		Enabled:  cfg.GenerativeEnabled,
		Provider: cfg.PromptProvider,
		Timeout:  cfg.GenerativeTimeout,
		Logger:   logger,
		Gemini: GeminiOptions{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
		},
		OpenAI: OpenAIOptions{
			APIKey:       cfg.OpenAIAPIKey,
			Model:        cfg.OpenAIModel,
			BaseURL:      cfg.OpenAIBaseURL,
			Organization: cfg.OpenAIOrg,
		},
		LangChain: LangChainOptions{
			APIKey:  cfg.LLMAPIKey,
			Model:   cfg.LLMModel,
			BaseURL: cfg.LLMBaseURL,
		},
	}
}
