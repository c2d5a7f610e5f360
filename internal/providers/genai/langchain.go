package genai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"optibite/internal/infra"
)

// LangChainOptions configures an OpenAI-compatible endpoint (OpenRouter,
// vLLM, Ollama's /v1 API, ...) driven through langchaingo.
type LangChainOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

type LangChainCompleter struct {
	llm    *openai.LLM
	model  string
	logger *infra.Logger
}

func NewLangChainCompleter(opts LangChainOptions) (*LangChainCompleter, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("llm api key is required")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		return nil, errors.New("llm model is required")
	}
	llmOpts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}
	if baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"); baseURL != "" {
		llmOpts = append(llmOpts, openai.WithBaseURL(baseURL))
	}
	if opts.HTTPClient != nil {
		llmOpts = append(llmOpts, openai.WithHTTPClient(opts.HTTPClient))
	}
	llm, err := openai.New(llmOpts...)
	if err != nil {
		return nil, fmt.Errorf("langchain openai client: %w", err)
	}
	return &LangChainCompleter{llm: llm, model: model, logger: discardLogger(opts.Logger)}, nil
}

func (l *LangChainCompleter) Name() string {
	return ProviderLangChain
}

func (l *LangChainCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	var messages []llms.MessageContent
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, llms.TextParts(schema.ChatMessageTypeSystem, req.System))
	}
	messages = append(messages, llms.TextParts(schema.ChatMessageTypeHuman, req.User))

	callOpts := []llms.CallOption{llms.WithTemperature(req.Temperature)}
	if req.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(req.MaxTokens))
	}

	start := time.Now()
	resp, err := l.llm.GenerateContent(ctx, messages, callOpts...)
	if err != nil {
		return "", fmt.Errorf("invoke langchain: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	l.logger.Debug().
		Str("model", l.model).
		Dur("elapsed", time.Since(start)).
		Msg("genai: langchain completion finished")
	return text, nil
}

var _ Completer = (*LangChainCompleter)(nil)
