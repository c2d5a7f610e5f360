package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"optibite/internal/infra"
	"optibite/internal/providers/genai"
)

// providercheck sends one short completion through the configured provider so
// operators can confirm credentials before enabling generation.
func main() {
	var (
		keyFlag      string
		providerFlag string
		modelFlag    string
		promptFlag   string
		timeoutFlag  time.Duration
	)
	flag.StringVar(&keyFlag, "key", "", "API key for the selected provider (falls back to the environment)")
	flag.StringVar(&providerFlag, "provider", "", "provider to check (gemini, openai, langchain); defaults to PROMPT_PROVIDER")
	flag.StringVar(&modelFlag, "model", "", "model override")
	flag.StringVar(&promptFlag, "prompt", "Reply with the single word: ok", "prompt to send")
	flag.DurationVar(&timeoutFlag, "timeout", 20*time.Second, "request timeout")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := infra.LoadConfig()
	if err != nil {
		exitWithError(fmt.Errorf("load config: %w", err))
	}

	opts := genai.OptionsFromConfig(cfg, nil)
	opts.Enabled = true
	opts.Timeout = timeoutFlag
	if p := strings.TrimSpace(strings.ToLower(providerFlag)); p != "" {
		opts.Provider = p
	}
	if key := strings.TrimSpace(keyFlag); key != "" {
		opts.Gemini.APIKey, opts.OpenAI.APIKey, opts.LangChain.APIKey = key, key, key
	}
	if model := strings.TrimSpace(modelFlag); model != "" {
		opts.Gemini.Model, opts.OpenAI.Model, opts.LangChain.Model = model, model, model
	}
	logger := infra.NewLogger(infra.LogOptions{AppEnv: cfg.AppEnv, Component: "providercheck", Level: coalesce(cfg.LogLevel, "warn"), Out: os.Stderr})
	opts.Logger = &logger

	completer, err := genai.New(opts)
	if err != nil {
		exitWithError(err)
	}
	if completer.Name() == genai.ProviderDisabled {
		exitWithError(fmt.Errorf("%s api key is required via -key or environment", strings.ToUpper(coalesce(opts.Provider, genai.ProviderGemini))))
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeoutFlag)
	defer cancel()
	start := time.Now()
	text, err := completer.Complete(ctx, genai.CompletionRequest{User: promptFlag, MaxTokens: 32, Temperature: 0})
	if err != nil {
		exitWithError(fmt.Errorf("%s: %w", completer.Name(), err))
	}
	fmt.Printf("provider=%s latency=%s reply=%q\n", completer.Name(), time.Since(start).Round(time.Millisecond), strings.TrimSpace(text))
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "providercheck: %v\n", err)
	os.Exit(1)
}
