package telegram

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/opengrove/ragchat/internal/domain"
)

const (
	maxSources       = 3
	sourceSnippetLen = 120
)

// FormatSources renders context passages as a compact footer under an
// answer. Returns an empty string when there is nothing to show.
func FormatSources(passages []domain.ContextPassage) string {
	if len(passages) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n\n📚 *Sources:*")

	shown := passages
	if len(shown) > maxSources {
		shown = shown[:maxSources]
	}

	for i, p := range shown {
		snippet := strings.Join(strings.Fields(StripHTML(p.Content)), " ")
		runes := []rune(snippet)
		if len(runes) > sourceSnippetLen {
			snippet = string(runes[:sourceSnippetLen-3]) + "..."
		}
		if p.Score > 0 {
			sb.WriteString(fmt.Sprintf("\n%d. %s _(%.0f%%)_", i+1, snippet, p.Score*100))
		} else {
			sb.WriteString(fmt.Sprintf("\n%d. %s", i+1, snippet))
		}
	}

	if len(passages) > maxSources {
		sb.WriteString(fmt.Sprintf("\n… and %d more", len(passages)-maxSources))
	}
	return sb.String()
}

// StripHTML extracts the text content from an HTML fragment. Retrieved
// passages may carry markup from web documents; plain text passes through
// unchanged.
func StripHTML(content string) string {
	if !strings.Contains(content, "<") {
		return content
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return content
	}
	return strings.TrimSpace(doc.Text())
}
