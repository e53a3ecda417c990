package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	GenAI    GenAIConfig    `mapstructure:"genai"`
	App      AppConfig      `mapstructure:"app"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// DatabaseConfig selects the store. Driver is "memory" or "mongo".
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URI    string `mapstructure:"uri"`
	Name   string `mapstructure:"name"`
}

// S3Config points at the bucket holding exercise demo videos. An empty bucket
// disables video links.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// GenAIConfig configures the plan-adaptation model.
type GenAIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"` // 0 = no limit beyond the transport
}

// AppConfig holds behavior knobs of the care flow.
type AppConfig struct {
	OverlayDismiss time.Duration `mapstructure:"overlay_dismiss"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// LoadConfig reads configuration from path/config.yaml, a .env file in the
// working directory, and environment variables (server.address -> SERVER_ADDRESS).
// The model credential is also accepted as a bare API_KEY.
func LoadConfig(path string) (config Config, err error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))
	if err = v.BindEnv("genai.api_key", "GENAI_API_KEY", "API_KEY"); err != nil {
		return
	}

	// Every key needs a default so AutomaticEnv can fill it during Unmarshal.
	v.SetDefault("server.address", ":8080")
	v.SetDefault("database.driver", "memory")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "care_app")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "1h")
	v.SetDefault("genai.model", "gemini-3-flash-preview")
	v.SetDefault("genai.base_url", "")
	v.SetDefault("genai.timeout", "0s")
	v.SetDefault("app.overlay_dismiss", "2s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	err = v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		// Running on defaults and env vars alone is fine.
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	return config, config.Validate()
}

// Validate rejects configurations the server can't start with.
func (c Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	switch c.Database.Driver {
	case "memory", "mongo":
	default:
		return errors.New(`database.driver must be "memory" or "mongo"`)
	}
	if c.App.OverlayDismiss < 0 {
		return errors.New("app.overlay_dismiss must not be negative")
	}
	return nil
}
