package config

import (
	"errors"
	"os"
	"strconv"
)

// Default model names and generation parameters.
const (
	DefaultPrimaryModel  = "gpt-4.1"
	DefaultFallbackModel = "claude-3-5-sonnet-20241022"

	DefaultMaxTokens        = 256
	DefaultTemperature      = 0.3
	DefaultPresencePenalty  = 0.1
	DefaultFrequencyPenalty = 0.1
)

// Config holds application configuration
type Config struct {
	Port   string
	LogDir string

	OpenAIKey    string // required
	AnthropicKey string // optional; empty disables fallback

	PrimaryModel  string
	FallbackModel string

	ArchivePath string // empty disables the transcript archive

	TTSWorkers   int
	TTSChunkSize int

	Debug bool
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		Port:          getEnv("TENANG_PORT", "8000"),
		LogDir:        getEnv("TENANG_LOG_DIR", "logs"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		AnthropicKey:  os.Getenv("ANTHROPIC_API_KEY"),
		PrimaryModel:  getEnv("TENANG_PRIMARY_MODEL", DefaultPrimaryModel),
		FallbackModel: getEnv("TENANG_FALLBACK_MODEL", DefaultFallbackModel),
		ArchivePath:   getEnv("TENANG_ARCHIVE_PATH", "tenangchat.db"),
		TTSWorkers:    getIntEnv("TENANG_TTS_WORKERS", 8),
		TTSChunkSize:  getIntEnv("TENANG_TTS_CHUNK_SIZE", 100),
		Debug:         getBoolEnv("TENANG_DEBUG", false),
	}

	if cfg.OpenAIKey == "" {
		return Config{}, errors.New("OPENAI_API_KEY must be set")
	}
	return cfg, nil
}

// FallbackEnabled reports whether the secondary provider is configured.
func (c Config) FallbackEnabled() bool {
	return c.AnthropicKey != ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "TRUE"
}
