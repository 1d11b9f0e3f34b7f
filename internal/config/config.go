package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAPIBaseURL = "http://localhost:8000"
	defaultPort       = "8080"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port            int
	APIBaseURL      string
	APITimeout      time.Duration
	RedisURL        string
	SessionSecret   string
	SessionTTL      time.Duration
	WorkspaceTTL    time.Duration
	SecureCookies   bool
	AllowOrigins    []string
	RateLimitPublic RateLimitConfig
	RateLimitAuth   RateLimitConfig
	Log             LogConfig
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// LogConfig descreve destino e nível dos logs.
type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	Console    bool
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	port, err := strconv.Atoi(getEnv("PORT", defaultPort))
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(getEnv("API_BASE_URL", "")), "/")
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	if !strings.HasPrefix(cfg.APIBaseURL, "http://") && !strings.HasPrefix(cfg.APIBaseURL, "https://") {
		return nil, errors.New("API_BASE_URL deve incluir protocolo http/https")
	}

	if cfg.APITimeout, err = parseDurationEnv("API_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	cfg.RedisURL = strings.TrimSpace(getEnv("REDIS_URL", ""))

	cfg.SessionSecret = strings.TrimSpace(getEnv("SESSION_SECRET", ""))
	if len(cfg.SessionSecret) < 32 {
		return nil, errors.New("SESSION_SECRET deve ter pelo menos 32 caracteres")
	}

	if cfg.SessionTTL, err = parseDurationEnv("SESSION_TTL", 12*time.Hour); err != nil {
		return nil, err
	}
	if cfg.WorkspaceTTL, err = parseDurationEnv("WORKSPACE_TTL", 30*time.Minute); err != nil {
		return nil, err
	}

	cfg.SecureCookies = parseBoolEnv("SECURE_COOKIES", false)

	for _, origin := range strings.Split(getEnv("ALLOW_ORIGINS", ""), ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 10, Burst: 20}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 2, Burst: 5}

	cfg.Log = LogConfig{
		Level:      strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", "info"))),
		File:       strings.TrimSpace(getEnv("LOG_FILE", "")),
		MaxSizeMB:  parseIntEnv("LOG_MAX_SIZE_MB", 10),
		MaxBackups: parseIntEnv("LOG_MAX_BACKUPS", 5),
		Console:    parseBoolEnv("LOG_CONSOLE", true),
	}

	return cfg, nil
}

// APIBaseURLFromEnv resolve somente a URL do backend, usada por ferramentas de linha de comando.
func APIBaseURLFromEnv() string {
	_ = godotenv.Load()
	base := strings.TrimRight(strings.TrimSpace(getEnv("API_BASE_URL", "")), "/")
	if base == "" {
		return defaultAPIBaseURL
	}
	return base
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil || dur <= 0 {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}

func parseBoolEnv(key string, def bool) bool {
	val := strings.TrimSpace(getEnv(key, ""))
	if val == "" {
		return def
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return def
	}
	return parsed
}

func parseIntEnv(key string, def int) int {
	val := strings.TrimSpace(getEnv(key, ""))
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
