package secrets

import "strings"

// Mask returns a masked version of a secret string for safe logging.
// Returns the first 4 characters followed by "..." if the secret is longer than 8 chars,
// otherwise returns "***" to avoid exposing short secrets.
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:4] + "..."
}

// MaskBotToken masks the secret portion of a Telegram bot token.
// Tokens have the form "<bot id>:<secret>"; the bot id is not sensitive
// and is useful in logs, so only the part after the colon is redacted.
func MaskBotToken(token string) string {
	if token == "" {
		return ""
	}

	colonIdx := strings.Index(token, ":")
	if colonIdx == -1 {
		return Mask(token)
	}

	return token[:colonIdx+1] + "***"
}
