package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	apperrors "github.com/edgard/tgcollector/internal/errors"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "COLLECTOR"

// secretKeys have no default, so they are bound explicitly to be visible
// to AutomaticEnv during Unmarshal.
var secretKeys = []string{
	"telegram.token",
	"telegram.admin_user_id",
	"media.s3.endpoint",
	"media.s3.bucket",
	"media.s3.prefix",
	"media.s3.access_key_id",
	"media.s3.secret_access_key",
}

// Load loads and validates configuration from:
// 1. Default values
// 2. The YAML file at path (config.yaml in the working directory when empty)
// 3. COLLECTOR_* environment variables
//
// A missing config file is not an error.
func Load(path string) (*Config, error) {
	return load(path)
}

// LoadOffline is Load for commands that only read the database. The
// telegram section is not required.
func LoadOffline(path string) (*Config, error) {
	return load(path, "Telegram")
}

func load(path string, except ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range secretKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, apperrors.NewConfigError("bind env "+key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewConfigError("failed to read config file", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to parse config", err)
	}

	if err := cfg.validate(except...); err != nil {
		return nil, apperrors.NewConfigError("invalid configuration", err)
	}

	return cfg, nil
}
