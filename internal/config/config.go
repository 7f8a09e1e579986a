package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Client ClientConfig `mapstructure:"client"`
	API    APIConfig    `mapstructure:"api"`
	Auth   AuthConfig   `mapstructure:"auth"`
}

type ClientConfig struct {
	// Mode is "debug" or "release"; controls log verbosity.
	Mode string `mapstructure:"mode"`
}

type APIConfig struct {
	BaseURL        string  `mapstructure:"base_url"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	RequestsPerSec float64 `mapstructure:"requests_per_sec"`
}

type AuthConfig struct {
	// StoragePath points at the persisted auth blob written by the login flow.
	StoragePath string `mapstructure:"storage_path"`
}

func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("LEARNAI")
	viper.AutomaticEnv()

	viper.BindEnv("api.base_url", "API_BASE_URL")
	viper.BindEnv("api.timeout_seconds", "API_TIMEOUT_SECONDS")
	viper.BindEnv("api.requests_per_sec", "API_REQUESTS_PER_SEC")
	viper.BindEnv("auth.storage_path", "AUTH_STORAGE_PATH")
	viper.BindEnv("client.mode", "CLIENT_MODE")

	viper.SetDefault("client.mode", "release")
	viper.SetDefault("api.base_url", "http://localhost:3001")
	viper.SetDefault("api.timeout_seconds", 30)
	viper.SetDefault("api.requests_per_sec", 5)
	viper.SetDefault("auth.storage_path", "auth-storage.json")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("api.base_url must not be empty")
	}
	if cfg.API.TimeoutSeconds <= 0 {
		cfg.API.TimeoutSeconds = 30
	}

	return &cfg, nil
}
