package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Database DatabaseConfig  `mapstructure:"database"`
	Redis    RedisConfig     `mapstructure:"redis"`
	Storage  StorageConfig   `mapstructure:"storage"`
	Text     TextModelConfig `mapstructure:"text_model"`
	Vision   VisionConfig    `mapstructure:"vision_model"`
	Speech   SpeechConfig    `mapstructure:"speech"`
	Pipeline PipelineConfig  `mapstructure:"pipeline"`
	Auth     AuthConfig      `mapstructure:"auth"`
	Log      LogConfig       `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// DSN returns the database connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StorageConfig holds object storage configuration.
type StorageConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Bucket          string `mapstructure:"bucket"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
}

// TextModelConfig holds text-generation model configuration.
type TextModelConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	TitleModel  string        `mapstructure:"title_model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// VisionConfig holds vision model configuration.
type VisionConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SpeechConfig holds speech synthesis configuration.
type SpeechConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	Model        string        `mapstructure:"model"`
	OutputFormat string        `mapstructure:"output_format"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// PipelineConfig holds generation pipeline configuration.
type PipelineConfig struct {
	MaxConcurrentJobs int           `mapstructure:"max_concurrent_jobs"`
	MaxImages         int           `mapstructure:"max_images"`
	NarrationMaxChars int           `mapstructure:"narration_max_chars"`
	StatusCacheTTL    time.Duration `mapstructure:"status_cache_ttl"`
	MusicCacheTTL     time.Duration `mapstructure:"music_cache_ttl"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	JWTSecret         string        `mapstructure:"jwt_secret"`
	AccessTokenExpiry time.Duration `mapstructure:"access_token_expiry"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Set config file name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/lullaby")

	// Set defaults
	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found, use defaults and env
	}

	// Read from environment variables
	v.SetEnvPrefix("LULLABY")
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Override with environment variables for sensitive values
	if secret := os.Getenv("LULLABY_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if password := os.Getenv("LULLABY_DB_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}
	if password := os.Getenv("LULLABY_REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if key := os.Getenv("LULLABY_STORAGE_SECRET_KEY"); key != "" {
		cfg.Storage.SecretAccessKey = key
	}
	if key := os.Getenv("LULLABY_TEXT_MODEL_API_KEY"); key != "" {
		cfg.Text.APIKey = key
	}
	if key := os.Getenv("LULLABY_VISION_MODEL_API_KEY"); key != "" {
		cfg.Vision.APIKey = key
	}
	if key := os.Getenv("LULLABY_SPEECH_API_KEY"); key != "" {
		cfg.Speech.APIKey = key
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.database", "lullaby")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", 30*time.Minute)

	// Redis defaults
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)

	// Storage defaults
	v.SetDefault("storage.region", "auto")
	v.SetDefault("storage.bucket", "lullaby-media")

	// Text model defaults
	v.SetDefault("text_model.base_url", "https://api.openai.com/v1")
	v.SetDefault("text_model.model", "gpt-4o")
	v.SetDefault("text_model.title_model", "gpt-4o-mini")
	v.SetDefault("text_model.temperature", 0.7)
	v.SetDefault("text_model.max_tokens", 2000)
	v.SetDefault("text_model.timeout", 2*time.Minute)

	// Vision model defaults
	v.SetDefault("vision_model.base_url", "https://api.openai.com/v1")
	v.SetDefault("vision_model.model", "gpt-4o-mini")
	v.SetDefault("vision_model.timeout", time.Minute)

	// Speech defaults
	v.SetDefault("speech.base_url", "https://api.openai.com/v1")
	v.SetDefault("speech.model", "tts-1")
	v.SetDefault("speech.output_format", "mp3")
	v.SetDefault("speech.timeout", 2*time.Minute)

	// Pipeline defaults
	v.SetDefault("pipeline.max_concurrent_jobs", 10)
	v.SetDefault("pipeline.max_images", 5)
	v.SetDefault("pipeline.narration_max_chars", 5000)
	v.SetDefault("pipeline.status_cache_ttl", 30*time.Second)
	v.SetDefault("pipeline.music_cache_ttl", 10*time.Minute)

	// Auth defaults
	v.SetDefault("auth.access_token_expiry", 15*time.Minute)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
