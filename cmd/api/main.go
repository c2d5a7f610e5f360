package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"optibite/internal/assistant"
	"optibite/internal/http/handlers"
	httpapi "optibite/internal/http/httpapi"
	"optibite/internal/infra"
	"optibite/internal/infra/geoip"
	"optibite/internal/mealplan"
	"optibite/internal/middleware"
	"optibite/internal/providers/genai"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(infra.LogOptions{AppEnv: cfg.AppEnv, Component: "api", Level: cfg.LogLevel})

	completer, err := genai.New(genai.OptionsFromConfig(cfg, &logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure generative provider")
	}
	logger.Info().Str("provider", completer.Name()).Msg("generative provider selected")

	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()

	synth := mealplan.NewSynthesizer(mealplan.Options{
		Completer: completer,
		Logger:    &logger,
		Timeout:   cfg.GenerativeTimeout,
		MaxTokens: cfg.GenerativeMaxTokens,
	})
	asst := assistant.New(assistant.Options{
		Completer: completer,
		Logger:    &logger,
		Timeout:   cfg.GenerativeTimeout,
	})
	app := handlers.NewApp(synth, asst, &logger)

	proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid TRUSTED_PROXIES")
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		DefaultLocale:  cfg.DefaultLocale,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimit:      cfg.RateLimitPerMin,
		CountryLookup:  resolver.Lookup(),
		TrustedProxies: proxies,
		Logger:         logger,
	})

	server := infra.NewHTTPServer(cfg, cfg.Port, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
