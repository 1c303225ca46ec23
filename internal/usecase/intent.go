// File: internal/usecase/intent.go
package usecase

import (
	"regexp"
	"strings"

	"sixseven-backend/internal/domain/model"
)

var (
	researchPrefix = regexp.MustCompile(`(?i)^research\s*:?\s*`)
	imaginePrefix  = regexp.MustCompile(`(?i)^imagine\s*:?\s*`)
	thisPrefix     = regexp.MustCompile(`(?i)^this\s*:?\s*`)
)

// parseIntent classifies a command by prefix/keyword match, in priority order,
// and extracts the remaining query or prompt for task intents.
func parseIntent(commandText string) (model.Intent, string) {
	trimmed := strings.TrimSpace(commandText)
	lower := strings.ToLower(trimmed)

	switch {
	case strings.HasPrefix(lower, "research"):
		query := researchPrefix.ReplaceAllString(trimmed, "")
		query = strings.TrimSpace(thisPrefix.ReplaceAllString(query, ""))
		return model.IntentResearch, query
	case strings.HasPrefix(lower, "imagine"):
		prompt := imaginePrefix.ReplaceAllString(trimmed, "")
		prompt = strings.TrimSpace(thisPrefix.ReplaceAllString(prompt, ""))
		return model.IntentCreative, prompt
	case lower == "status":
		return model.IntentStatus, ""
	case lower == "stop", lower == "cancel":
		return model.IntentStop, ""
	}
	return model.IntentUnknown, ""
}
