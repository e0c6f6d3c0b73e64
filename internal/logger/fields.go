package logger

import (
	"unicode/utf8"

	"go.uber.org/zap"
)

// DefaultPreviewLen bounds prompt and response previews in log lines.
const DefaultPreviewLen = 200

// TruncateForLog cuts s to at most maxLen runes and marks the cut with "...".
func TruncateForLog(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + "..."
}

// CommonFields returns the provider/model fields attached to every AI call log line.
func CommonFields(provider, model string) []zap.Field {
	return []zap.Field{
		zap.String("ai_provider", provider),
		zap.String("ai_model", model),
	}
}
