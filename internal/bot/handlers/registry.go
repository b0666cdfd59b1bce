package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler represents a command handler with its middleware.
// It encapsulates all information needed to register a command.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands initializes and returns a map of all available bot commands.
// Every command is restricted to the configured administrator.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)
	adminMiddleware := []tgbot.Middleware{AdminOnly(deps)}

	command := func(name string, h tgbot.HandlerFunc) {
		handlers["/"+name] = RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     name,
			Handler:     h,
			MatchType:   tgbot.MatchTypeCommandStartOnly,
			Middleware:  adminMiddleware,
		}
	}

	command("start", NewStartHandler(deps))
	command("chats", NewChatsHandler(deps))
	command("export", NewExportHandler(deps))
	command("export_date", NewExportDateHandler(deps))

	return handlers
}
