package config

import (
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/pkg/errors"
)

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN,required,notEmpty"`

	// LLM settings
	OpenAIAPIKey       string        `env:"OPENAI_API_KEY,required,notEmpty"`
	OpenAIBaseURL      string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenAIModel        string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	DefaultTemperature float64       `env:"DEFAULT_TEMPERATURE" envDefault:"0"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5m"`

	// Prompts
	SystemPromptPath string `env:"SYSTEM_PROMPT_PATH"`

	// Sessions
	ContainerName        string        `env:"CONTAINER_NAME" envDefault:"user-container"`
	SessionIdleTTL       time.Duration `env:"SESSION_IDLE_TTL" envDefault:"24h"`
	SessionSweepSchedule string        `env:"SESSION_SWEEP_SCHEDULE" envDefault:"@every 10m"`
	MaxDatasetBytes      int           `env:"MAX_DATASET_BYTES" envDefault:"20971520"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
}

func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}
	if cfg.DefaultTemperature < 0 || cfg.DefaultTemperature > 1 {
		return nil, errors.Errorf("DEFAULT_TEMPERATURE must be within [0, 1], got %v", cfg.DefaultTemperature)
	}
	return cfg, nil
}
