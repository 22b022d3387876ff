package service

import (
	"github.com/opengrove/ragchat/internal/config"
)

// DeriveTitle builds a session title from a first user message: content up
// to the title limit, with the tail replaced by an ellipsis when truncated.
func DeriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= config.TitleMaxLen {
		return content
	}
	return string(runes[:config.TitleMaxLen-3]) + "..."
}
