package config

import (
	"os"
	"strconv"
)

type Config struct {
	APIPort  string
	LogLevel string

	// Empty DSN keeps runs in the in-process store.
	PostgresDSN string

	NATSURL     string
	NATSSubject string

	ChatBaseURL string
	ChatAPIKey  string
	ChatModel   string

	SerperBaseURL string
	SerperAPIKey  string

	CompanyPageSize      int
	PeoplePageSize       int
	CompanySearchDelayMS int
	PeopleSearchDelayMS  int

	RunListLimit int

	APIRateLimitRPS        int
	APIRateLimitBurst      int
	APIMaxInFlightRequests int

	WorkerMetricsPort string
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		PostgresDSN: mustEnv("POSTGRES_DSN", ""),

		NATSURL:     mustEnv("NATS_URL", "nats://localhost:4222"),
		NATSSubject: mustEnv("NATS_SUBJECT", "research.runs"),

		ChatBaseURL: mustEnv("CHAT_BASE_URL", "https://api.openai.com/v1"),
		ChatAPIKey:  mustEnv("CHAT_API_KEY", ""),
		ChatModel:   mustEnv("CHAT_MODEL", "gpt-4o-mini"),

		SerperBaseURL: mustEnv("SERPER_BASE_URL", "https://google.serper.dev"),
		SerperAPIKey:  mustEnv("SERPER_API_KEY", ""),

		CompanyPageSize:      mustEnvInt("COMPANY_PAGE_SIZE", 12),
		PeoplePageSize:       mustEnvInt("PEOPLE_PAGE_SIZE", 15),
		CompanySearchDelayMS: mustEnvInt("COMPANY_SEARCH_DELAY_MS", 1500),
		PeopleSearchDelayMS:  mustEnvInt("PEOPLE_SEARCH_DELAY_MS", 1800),

		RunListLimit: mustEnvInt("RUN_LIST_LIMIT", 50),

		APIRateLimitRPS:        mustEnvInt("API_RATE_LIMIT_RPS", 10),
		APIRateLimitBurst:      mustEnvInt("API_RATE_LIMIT_BURST", 20),
		APIMaxInFlightRequests: mustEnvInt("API_MAX_IN_FLIGHT_REQUESTS", 100),

		WorkerMetricsPort: mustEnv("WORKER_METRICS_PORT", "9090"),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
