package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds the application's configuration
type Config struct {
	BackendBaseURL           string        `mapstructure:"BACKEND_BASE_URL"`
	WebPort                  int           `mapstructure:"WEB_PORT"`
	LogLevel                 string        `mapstructure:"LOG_LEVEL"`
	RequestTimeout           time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	UploadTimeout            time.Duration `mapstructure:"UPLOAD_TIMEOUT"`
	MaxFileSizeMB            int64         `mapstructure:"MAX_FILE_SIZE_MB"`
	PreferencesPath          string        `mapstructure:"PREFERENCES_PATH"`
	SessionCacheSize         int           `mapstructure:"SESSION_CACHE_SIZE"`
	TransferRetentionSeconds time.Duration `mapstructure:"TRANSFER_RETENTION_SECONDS"`
	EnableWebSearchDefault   bool          `mapstructure:"ENABLE_WEB_SEARCH_DEFAULT"`
}

func Load(logger *zap.Logger) *Config {
	var config Config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")        // For running locally
	viper.AddConfigPath("./config") // Common config folder
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("BACKEND_BASE_URL", "http://localhost:8000")
	viper.SetDefault("WEB_PORT", 3000)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("REQUEST_TIMEOUT", 120)
	viper.SetDefault("UPLOAD_TIMEOUT", 600)
	viper.SetDefault("MAX_FILE_SIZE_MB", 256)
	viper.SetDefault("PREFERENCES_PATH", "preferences.json")
	viper.SetDefault("SESSION_CACHE_SIZE", 256)
	viper.SetDefault("TRANSFER_RETENTION_SECONDS", 5)
	viper.SetDefault("ENABLE_WEB_SEARCH_DEFAULT", false)

	if err := viper.ReadInConfig(); err != nil {
		if logger != nil {
			logger.Warn("Could not read config file, using defaults/env vars", zap.Error(err))
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		// Config unmarshaling is critical - fail fast during bootstrap
		if logger != nil {
			logger.Fatal("Unable to decode config into struct", zap.Error(err))
		} else {
			fmt.Fprintf(os.Stderr, "FATAL: Unable to decode config into struct: %v\n", err)
			os.Exit(1)
		}
	}

	config.BackendBaseURL = strings.TrimRight(strings.TrimSpace(config.BackendBaseURL), "/")
	if config.BackendBaseURL == "" {
		config.BackendBaseURL = "http://localhost:8000"
	}
	if config.SessionCacheSize <= 0 {
		config.SessionCacheSize = 256
	}
	if config.MaxFileSizeMB <= 0 {
		config.MaxFileSizeMB = 256
	}

	// Convert seconds to proper time.Duration
	config.RequestTimeout = config.RequestTimeout * time.Second
	config.UploadTimeout = config.UploadTimeout * time.Second
	config.TransferRetentionSeconds = config.TransferRetentionSeconds * time.Second

	return &config
}

// MaxFileSizeBytes returns the upload size cap in bytes.
func (c *Config) MaxFileSizeBytes() int64 {
	return c.MaxFileSizeMB * 1024 * 1024
}
