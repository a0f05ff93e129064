package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler represents a command handler with its middleware.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

func command(pattern string, handler tgbot.HandlerFunc, mw ...tgbot.Middleware) RegisteredHandler {
	return RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     pattern,
		Handler:     handler,
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  mw,
	}
}

// RegisterAllCommands returns every bot command keyed by its slash name.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	return map[string]RegisteredHandler{
		"/start":   command("start", NewStartHandler(deps)),
		"/help":    command("help", NewHelpHandler(deps)),
		"/profile": command("profile", NewProfileHandler(deps)),
		"/set":     command("set", NewSetHandler(deps)),
		"/suggest": command("suggest", NewSuggestHandler(deps)),
		"/ask":     command("ask", NewAskHandler(deps)),
		"/history": command("history", NewHistoryHandler(deps)),
		"/stats":   command("stats", NewStatsHandler(deps), AdminOnly(deps)),
	}
}
