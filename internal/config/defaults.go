package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values for configuration
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultDBPath = "collector.db"

	DefaultMediaBackend       = "local"
	DefaultMediaDir           = "media"
	DefaultMediaTimeout       = 60 * time.Second
	DefaultMediaMaxConcurrent = 4
	DefaultMediaMaxSize       = 20 * 1024 * 1024 // Bot API download limit
	DefaultS3Region           = "us-east-1"

	DefaultDropPendingUpdates = false

	// Seconds field first; VACUUM at 04:00 every day.
	DefaultSQLMaintenanceSchedule = "0 0 4 * * *"
)

// DefaultMessages are the replies of the administrative commands.
var DefaultMessages = MessagesConfig{
	Welcome: "Message collector is running.\n\n" +
		"Commands:\n" +
		"/chats - list collected chats\n" +
		"/export <chat_id> <days> - export the last N days\n" +
		"/export_date <chat_id> <YYYY-MM-DD> <YYYY-MM-DD> - export a date range",
	NotAuthorized: "You are not authorized to use this command.",
	GeneralError:  "An error occurred. Please try again later.",
	ExportUsage:   "Usage: /export <chat_id> <days> or /export_date <chat_id> <YYYY-MM-DD> <YYYY-MM-DD>",
	InvalidDate:   "Invalid date. Use the YYYY-MM-DD format and make sure the start is not after the end.",
	NoChats:       "No chats collected yet.",
	NoMessages:    "No messages found for this period.",
}

// setDefaults registers default values for every optional key on v.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)

	v.SetDefault("telegram.drop_pending_updates", DefaultDropPendingUpdates)

	v.SetDefault("database.path", DefaultDBPath)

	v.SetDefault("media.enabled", false)
	v.SetDefault("media.backend", DefaultMediaBackend)
	v.SetDefault("media.dir", DefaultMediaDir)
	v.SetDefault("media.timeout", DefaultMediaTimeout)
	v.SetDefault("media.max_concurrent", DefaultMediaMaxConcurrent)
	v.SetDefault("media.max_size", DefaultMediaMaxSize)
	v.SetDefault("media.s3.region", DefaultS3Region)

	v.SetDefault("scheduler.tasks", map[string]any{
		"sql_maintenance": map[string]any{
			"enabled":  true,
			"schedule": DefaultSQLMaintenanceSchedule,
		},
	})

	v.SetDefault("messages.welcome", DefaultMessages.Welcome)
	v.SetDefault("messages.not_authorized", DefaultMessages.NotAuthorized)
	v.SetDefault("messages.general_error", DefaultMessages.GeneralError)
	v.SetDefault("messages.export_usage", DefaultMessages.ExportUsage)
	v.SetDefault("messages.invalid_date", DefaultMessages.InvalidDate)
	v.SetDefault("messages.no_chats", DefaultMessages.NoChats)
	v.SetDefault("messages.no_messages", DefaultMessages.NoMessages)
}
