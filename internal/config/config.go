package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Session SessionConfig `yaml:"session"`
	Naming  NamingConfig  `yaml:"naming"`
	Log     LogConfig     `yaml:"log"`
	Random  RandomConfig  `yaml:"random"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"             env:"HTTP_ADDR"               env-default:":8080"`
	GinMode         string        `yaml:"gin_mode"         env:"GIN_MODE"                env-default:"release"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// SessionConfig controls per-browser sessions.
type SessionConfig struct {
	CookieName      string        `yaml:"cookie_name"      env:"SESSION_COOKIE_NAME"      env-default:"teamdraw_session"`
	TTL             time.Duration `yaml:"ttl"              env:"SESSION_TTL"              env-default:"1h"`
	JanitorInterval time.Duration `yaml:"janitor_interval" env:"SESSION_JANITOR_INTERVAL" env-default:"10m"`
}

// NamingConfig selects and configures the naming collaborator.
type NamingConfig struct {
	Provider          string        `yaml:"provider"            env:"NAMING_PROVIDER"       env-default:"gemini"`
	GeminiAPIKey      string        `yaml:"gemini_api_key"      env:"GEMINI_API_KEY"`
	GeminiModel       string        `yaml:"gemini_model"        env:"GEMINI_MODEL"          env-default:"gemini-2.5-flash"`
	OpenRouterAPIKey  string        `yaml:"openrouter_api_key"  env:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL string        `yaml:"openrouter_base_url" env:"OPENROUTER_BASE_URL"   env-default:"https://openrouter.ai/api/v1"`
	OpenRouterModel   string        `yaml:"openrouter_model"    env:"OPENROUTER_MODEL"      env-default:"qwen/qwen3-4b:free"`
	FallbackModelsRaw string        `yaml:"fallback_models"     env:"LLM_FALLBACK_MODELS"`
	Timeout           time.Duration `yaml:"timeout"             env:"NAMING_TIMEOUT"        env-default:"8s"`

	// FallbackModels is parsed from FallbackModelsRaw during validation.
	FallbackModels []string `yaml:"-" env:"-"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Verbose bool   `yaml:"verbose" env:"LOG_VERBOSE" env-default:"true"`
	File    string `yaml:"file"    env:"LOG_FILE"`
}

// RandomConfig holds the RNG seed. Zero means auto-seeded.
type RandomConfig struct {
	Seed uint64 `yaml:"seed" env:"RANDOM_SEED" env-default:"0"`
}

const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderNone       = "none"
)
