package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// placeholderAPIKey is the sample value shipped in .env templates; treated as unset.
const placeholderAPIKey = "your_actual_gemini_api_key_here"

// Config holds all configuration for the medequip server and CLI.
type Config struct {
	Server   ServerConfig
	Upload   UploadConfig
	Vision   VisionConfig
	Database DatabaseConfig
	Redis    RedisConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type UploadConfig struct {
	MaxBytes int64
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Enabled reports whether API-key storage is configured.
func (c DatabaseConfig) Enabled() bool { return c.URL != "" }

type RedisConfig struct {
	URL                string
	RateLimitPerMinute int
	ClassificationTTL  time.Duration
}

// Enabled reports whether the Redis cache is configured.
func (c RedisConfig) Enabled() bool { return c.URL != "" }

type VisionConfig struct {
	Provider        string
	Timeout         time.Duration
	Temperature     float64
	MaxOutputTokens int
	Gemini          GeminiConfig
	OpenAI          OpenAIConfig
	VLLM            VLLMConfig
	Anthropic       AnthropicConfig
	Ollama          OllamaConfig
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type VLLMConfig struct {
	BaseURL string
	Model   string
}

type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

// Configured reports whether the selected provider has what it needs to make a
// network call. A missing or placeholder credential means the pipeline runs the
// heuristic classifier only.
func (c VisionConfig) Configured() bool {
	switch c.Provider {
	case "gemini":
		return usableKey(c.Gemini.APIKey)
	case "openai":
		return usableKey(c.OpenAI.APIKey)
	case "anthropic":
		return usableKey(c.Anthropic.APIKey)
	case "vllm":
		return c.VLLM.BaseURL != "" && c.VLLM.Model != ""
	case "ollama":
		return c.Ollama.BaseURL != "" && c.Ollama.Model != ""
	default:
		return false
	}
}

func usableKey(k string) bool {
	k = strings.TrimSpace(k)
	return k != "" && k != placeholderAPIKey
}

var validProviders = map[string]bool{
	"gemini":    true,
	"openai":    true,
	"vllm":      true,
	"anthropic": true,
	"ollama":    true,
	"none":      true,
}

// Load reads configuration from environment variables (and the optional YAML
// file named by MEDEQUIP_CONFIG) and returns a validated Config.
func Load() (*Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom is Load over a caller-supplied viper instance, so CLI flags bound to
// v take precedence over the environment.
func LoadFrom(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()

	if path := v.GetString("MEDEQUIP_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: envInt(v, "MEDEQUIP_PORT", 3000),
			Env:  envString(v, "MEDEQUIP_ENV", "development"),
		},
		Upload: UploadConfig{
			MaxBytes: int64(envInt(v, "UPLOAD_MAX_BYTES", 10*1024*1024)),
		},
		Vision: VisionConfig{
			Provider:        strings.ToLower(envString(v, "VISION_PROVIDER", "gemini")),
			Timeout:         envDurationSecs(v, "VISION_TIMEOUT_SECS", 45*time.Second),
			Temperature:     envFloat(v, "VISION_TEMPERATURE", 0.1),
			MaxOutputTokens: envInt(v, "VISION_MAX_OUTPUT_TOKENS", 1000),
			Gemini: GeminiConfig{
				APIKey:  v.GetString("GEMINI_API_KEY"),
				Model:   envString(v, "GEMINI_MODEL", "gemini-2.0-flash"),
				BaseURL: v.GetString("GEMINI_BASE_URL"),
			},
			OpenAI: OpenAIConfig{
				APIKey:  v.GetString("OPENAI_API_KEY"),
				Model:   envString(v, "OPENAI_MODEL", "gpt-4o-mini"),
				BaseURL: v.GetString("OPENAI_BASE_URL"),
			},
			VLLM: VLLMConfig{
				BaseURL: envString(v, "VLLM_BASE_URL", "http://localhost:8000"),
				Model:   v.GetString("VLLM_MODEL"),
			},
			Anthropic: AnthropicConfig{
				APIKey:  v.GetString("ANTHROPIC_API_KEY"),
				Model:   envString(v, "ANTHROPIC_MODEL", "claude-haiku-4-5-20251001"),
				BaseURL: v.GetString("ANTHROPIC_BASE_URL"),
			},
			Ollama: OllamaConfig{
				BaseURL: envString(v, "OLLAMA_BASE_URL", "http://localhost:11434"),
				Model:   envString(v, "OLLAMA_MODEL", "llava"),
			},
		},
		Database: DatabaseConfig{
			URL:             v.GetString("DATABASE_URL"),
			MaxOpenConns:    envInt(v, "DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    envInt(v, "DATABASE_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: envDuration(v, "DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:                v.GetString("REDIS_URL"),
			RateLimitPerMinute: envInt(v, "RATE_LIMIT_PER_MINUTE", 60),
			ClassificationTTL:  envDuration(v, "CLASSIFICATION_CACHE_TTL", 24*time.Hour),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("MEDEQUIP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}

	if !validProviders[c.Vision.Provider] {
		return fmt.Errorf("VISION_PROVIDER must be one of gemini, openai, vllm, anthropic, ollama, none; got %q", c.Vision.Provider)
	}
	if c.Vision.Timeout <= 0 {
		return fmt.Errorf("VISION_TIMEOUT_SECS must be positive")
	}
	if c.Vision.Temperature < 0 || c.Vision.Temperature > 2 {
		return fmt.Errorf("VISION_TEMPERATURE must be between 0 and 2, got %v", c.Vision.Temperature)
	}
	if c.Vision.MaxOutputTokens <= 0 {
		return fmt.Errorf("VISION_MAX_OUTPUT_TOKENS must be positive")
	}

	urls := map[string]string{
		"GEMINI_BASE_URL":    c.Vision.Gemini.BaseURL,
		"OPENAI_BASE_URL":    c.Vision.OpenAI.BaseURL,
		"VLLM_BASE_URL":      c.Vision.VLLM.BaseURL,
		"ANTHROPIC_BASE_URL": c.Vision.Anthropic.BaseURL,
		"OLLAMA_BASE_URL":    c.Vision.Ollama.BaseURL,
	}
	for key, u := range urls {
		if u == "" {
			continue
		}
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("%s must start with http:// or https://, got %q", key, u)
		}
	}

	if c.Redis.Enabled() && c.Redis.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}

	return nil
}

func envString(v *viper.Viper, key, defaultVal string) string {
	if s := v.GetString(key); s != "" {
		return s
	}
	return defaultVal
}

func envInt(v *viper.Viper, key string, defaultVal int) int {
	s := v.GetString(key)
	if s == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return i
}

func envFloat(v *viper.Viper, key string, defaultVal float64) float64 {
	s := v.GetString(key)
	if s == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func envDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	s := v.GetString(key)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	s := v.GetString(key)
	if s == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
