package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	Port int `env:"PORT" envDefault:"8000"`

	// LLM settings
	LLMProvider      string `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string `env:"OPENAI_BASE_URL"`
	Model            string `env:"MODEL" envDefault:"gpt-4o-mini"`
	MaxTokens        int    `env:"TOKENS" envDefault:"4096"`
	YandexOAuthToken string `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string `env:"YANDEX_FOLDER_ID"`

	// Tool credentials
	SerperAPIKey        string `env:"SERPER_API_KEY"`
	SpotifyClientID     string `env:"CLIENT_ID"`
	SpotifyClientSecret string `env:"CLIENT_SECRET"`

	// Generated image storage: local directory and the URL prefix it is
	// served under.
	FilePath         string `env:"FILE_PATH" envDefault:"files"`
	OutboundFilePath string `env:"OUTBOUND_FILE_PATH" envDefault:"http://localhost:8000/files"`

	// Sessions
	SessionTimeout time.Duration `env:"SESSION_TIMEOUT" envDefault:"1h"`

	// Agent loop budget per task and LLM requests-per-minute cap per agent
	MaxIterations int `env:"MAX_ITER" envDefault:"10"`
	RPM           int `env:"RPM" envDefault:"10"`

	// CORS
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
