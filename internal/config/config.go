// Package config manages application configuration from a YAML file,
// COLLECTOR_* environment variables, and default values.
package config

import "time"

// Config defines the application configuration. Values can be set via environment
// variables prefixed with COLLECTOR_ (e.g., COLLECTOR_TELEGRAM_TOKEN) or through config.yaml.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Media     MediaConfig     `mapstructure:"media"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"  validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

type TelegramConfig struct {
	Token              string `mapstructure:"token"                validate:"required"`
	AdminUserID        int64  `mapstructure:"admin_user_id"        validate:"required,gt=0"`
	DropPendingUpdates bool   `mapstructure:"drop_pending_updates"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// MediaConfig controls downloading of message attachments.
type MediaConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Backend       string        `mapstructure:"backend"        validate:"required,oneof=local s3"`
	Dir           string        `mapstructure:"dir"            validate:"required_if=Backend local"`
	Timeout       time.Duration `mapstructure:"timeout"        validate:"gt=0"`
	MaxConcurrent int64         `mapstructure:"max_concurrent" validate:"gt=0"`
	MaxSize       int64         `mapstructure:"max_size"       validate:"gt=0"`
	S3            S3Config      `mapstructure:"s3"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"          validate:"omitempty,url"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// SchedulerConfig maps task names to their schedule.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// MessagesConfig holds the replies of the administrative commands.
type MessagesConfig struct {
	Welcome       string `mapstructure:"welcome"        validate:"required"`
	NotAuthorized string `mapstructure:"not_authorized" validate:"required"`
	GeneralError  string `mapstructure:"general_error"  validate:"required"`
	ExportUsage   string `mapstructure:"export_usage"   validate:"required"`
	InvalidDate   string `mapstructure:"invalid_date"   validate:"required"`
	NoChats       string `mapstructure:"no_chats"       validate:"required"`
	NoMessages    string `mapstructure:"no_messages"    validate:"required"`
}

// IsAdmin reports whether userID is the configured administrator.
func (c *Config) IsAdmin(userID int64) bool {
	return userID != 0 && userID == c.Telegram.AdminUserID
}
