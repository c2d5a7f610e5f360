package infra

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	LogLevel           string
	Port               string
	MCPPort            string
	DefaultLocale      string
	GeoIPDBPath        string
	CORSAllowedOrigins []string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
	TrustedProxies     []string

	GenerativeEnabled   bool
	PromptProvider      string
	GenerativeTimeout   time.Duration
	GenerativeMaxTokens int
	GeminiAPIKey        string
	GeminiModel         string
	GeminiBaseURL       string
	OpenAIAPIKey        string
	OpenAIModel         string
	OpenAIBaseURL       string
	OpenAIOrg           string
	LLMAPIKey           string
	LLMModel            string
	LLMBaseURL          string
}

var supportedPromptProviders = map[string]struct{}{
	"gemini":    {},
	"openai":    {},
	"langchain": {},
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		LogLevel:            strings.ToLower(os.Getenv("LOG_LEVEL")),
		Port:                getEnv("PORT", "8002"),
		MCPPort:             getEnv("MCP_PORT", "8011"),
		DefaultLocale:       getEnv("DEFAULT_LOCALE", "en"),
		GeoIPDBPath:         os.Getenv("GEOIP_DB_PATH"),
		CORSAllowedOrigins:  getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:3001"}),
		HTTPReadTimeout:     time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:    time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:     time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:     getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		TrustedProxies:      getEnvList("TRUSTED_PROXIES", nil),
		GenerativeEnabled:   getEnvBool("GENERATIVE_ENABLED", false),
		PromptProvider:      strings.ToLower(getEnv("PROMPT_PROVIDER", "gemini")),
		GenerativeTimeout:   time.Second * time.Duration(getEnvInt("GENERATIVE_TIMEOUT_SECONDS", 8)),
		GenerativeMaxTokens: getEnvInt("GENERATIVE_MAX_TOKENS", 1500),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL:       getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIOrg:           os.Getenv("OPENAI_ORG"),
		LLMAPIKey:           os.Getenv("LLM_API_KEY"),
		LLMModel:            os.Getenv("LLM_MODEL"),
		LLMBaseURL:          os.Getenv("LLM_BASE_URL"),
	}

	if _, ok := supportedPromptProviders[cfg.PromptProvider]; !ok {
		return nil, fmt.Errorf("PROMPT_PROVIDER %q is not supported (gemini, openai, langchain)", cfg.PromptProvider)
	}
	if cfg.GenerativeTimeout <= 0 {
		return nil, fmt.Errorf("GENERATIVE_TIMEOUT_SECONDS must be positive")
	}
	if cfg.GenerativeMaxTokens <= 0 {
		return nil, fmt.Errorf("GENERATIVE_MAX_TOKENS must be positive")
	}
	if cfg.LogLevel != "" {
		if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
			return nil, fmt.Errorf("LOG_LEVEL %q is not a log level", cfg.LogLevel)
		}
	}
	for _, entry := range cfg.TrustedProxies {
		if !isIPOrCIDR(entry) {
			return nil, fmt.Errorf("TRUSTED_PROXIES entry %q is not an IP or CIDR", entry)
		}
	}
	if cfg.GenerativeEnabled && cfg.PromptProvider == "langchain" && cfg.LLMAPIKey != "" && cfg.LLMModel == "" {
		return nil, fmt.Errorf("LLM_MODEL is required when PROMPT_PROVIDER=langchain")
	}

	return cfg, nil
}

func isIPOrCIDR(v string) bool {
	if _, _, err := net.ParseCIDR(v); err == nil {
		return true
	}
	return net.ParseIP(v) != nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
