// Package config loads the backend configuration from file and environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrTokenSecretMissing is returned when no secret for signing session
// tokens is configured. There is no safe default for it.
var ErrTokenSecretMissing = errors.New("the token secret must be configured, set token.secret or FINBOOK_TOKEN_SECRET")

type ServerConfig struct {
	Address string `mapstructure:"address"` // Address for the HTTP server to listen on
	Mode    string `mapstructure:"mode"`    // gin mode, one of "debug", "release", "test"
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"` // Path to the sqlite database file
}

type TokenConfig struct {
	Secret      string `mapstructure:"secret"`       // Secret used to sign session tokens
	ExpiryHours int    `mapstructure:"expiry_hours"` // Validity of issued tokens in hours
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Token    TokenConfig    `mapstructure:"token"`
}

// TokenExpiry returns the configured token lifetime.
func (c Config) TokenExpiry() time.Duration {
	hours := c.Token.ExpiryHours
	if hours <= 0 {
		hours = 24
	}

	return time.Duration(hours) * time.Hour
}

// Load reads the configuration from the file at path. If path is empty,
// "config.yaml" in the working directory is used when it exists.
//
// Every value can be overridden with a FINBOOK_* environment variable,
// e.g. FINBOOK_SERVER_ADDRESS or FINBOOK_TOKEN_SECRET.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.path", "data/finbook.db")
	v.SetDefault("token.expiry_hours", 24)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("finbook")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		// A missing default config file is fine, everything can come
		// from the environment
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("could not read configuration: %w", err)
		}
	}

	var config Config
	err = v.Unmarshal(&config)
	if err != nil {
		return Config{}, fmt.Errorf("could not parse configuration: %w", err)
	}

	if config.Token.Secret == "" {
		return Config{}, ErrTokenSecretMissing
	}

	return config, nil
}
