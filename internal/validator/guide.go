package validator

// Guide is the user-facing help text for configuring a bot on one platform
type Guide struct {
	Platform           string `json:"platform"`
	TokenExample       string `json:"token_example"`
	ChatIDExample      string `json:"chat_id_example"`
	TokenInstructions  string `json:"token_instructions"`
	ChatIDInstructions string `json:"chat_id_instructions"`
}

var guides = map[string]Guide{
	PlatformTelegram: {
		Platform:          PlatformTelegram,
		TokenExample:      "1234567890:ABCdefGHIjklMNOpqrSTUvwxYZ123456789",
		ChatIDExample:     "@my_channel or -1001234567890",
		TokenInstructions: "Open @BotFather in Telegram, send /newbot, follow the prompts and copy the token it returns.",
		ChatIDInstructions: "Use the public @username of the channel, or forward a channel post to @userinfobot " +
			"to get the numeric id. Add the bot to the channel as an administrator.",
	},
	PlatformMax: {
		Platform:          PlatformMax,
		TokenExample:      "f9LHodD0cOKiEz4Ru3bMyuaZ0dk4jGXv1s8Rj9wLLcZ",
		ChatIDExample:     "123456789",
		TokenInstructions: "Register the bot on the MAX business platform (Chat bots > Create) and copy the access token from the bot settings.",
		ChatIDInstructions: "Add the bot to the chat or channel, then read the numeric chat_id from a bot_added " +
			"update or from GET /chats.",
	},
	PlatformDiscord: {
		Platform:          PlatformDiscord,
		TokenExample:      "MTA4NjU5MjQ3NzU2NzQ4ODA1Mg.GZcl2P.1b4ZqU3rTzq2VwS8fLxYq0hJkPm7NnA9sXoEe4",
		ChatIDExample:     "1086592477567488052",
		TokenInstructions: "Create an application in the Discord Developer Portal, add a Bot and press Reset Token to reveal it.",
		ChatIDInstructions: "Enable Developer Mode in Discord settings, right-click the channel and choose Copy Channel ID. " +
			"Invite the bot with the Send Messages permission.",
	},
}

// GuideFor returns the help text for a platform and whether one exists
func GuideFor(platform string) (Guide, bool) {
	g, ok := guides[platform]
	return g, ok
}

// TokenExample returns a sample token for the platform
func TokenExample(platform string) string {
	return guides[platform].TokenExample
}

// ChatIDExample returns a sample chat id for the platform
func ChatIDExample(platform string) string {
	return guides[platform].ChatIDExample
}

// TokenInstructions explains how to obtain a bot token
func TokenInstructions(platform string) string {
	return guides[platform].TokenInstructions
}

// ChatIDInstructions explains how to find a channel identifier
func ChatIDInstructions(platform string) string {
	return guides[platform].ChatIDInstructions
}
