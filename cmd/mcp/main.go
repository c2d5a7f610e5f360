package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"optibite/internal/assistant"
	"optibite/internal/infra"
	"optibite/internal/mcptools"
	"optibite/internal/mealplan"
	"optibite/internal/providers/genai"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(infra.LogOptions{AppEnv: cfg.AppEnv, Component: "mcp", Level: cfg.LogLevel})

	completer, err := genai.New(genai.OptionsFromConfig(cfg, &logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure generative provider")
	}

	srv := mcptools.NewServer(
		mealplan.NewSynthesizer(mealplan.Options{
			Completer: completer,
			Logger:    &logger,
			Timeout:   cfg.GenerativeTimeout,
			MaxTokens: cfg.GenerativeMaxTokens,
		}),
		assistant.New(assistant.Options{Completer: completer, Logger: &logger, Timeout: cfg.GenerativeTimeout}),
		&logger,
	)

	server := infra.NewHTTPServer(cfg, cfg.MCPPort, srv.Handler(logger))

	go func() {
		logger.Info().Str("addr", server.Addr()).Strs("tools", srv.Tools()).Msg("MCP tool server listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("mcp server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown mcp server")
	}
	logger.Info().Msg("mcp server stopped")
}
