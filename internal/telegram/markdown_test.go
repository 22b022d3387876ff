package telegram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMessageShortPassthrough(t *testing.T) {
	parts := SplitMessage("short text", 100)
	assert.Equal(t, []string{"short text"}, parts)
}

func TestSplitMessagePrefersNewline(t *testing.T) {
	text := strings.Repeat("a", 60) + "\n" + strings.Repeat("b", 60)
	parts := SplitMessage(text, 100)

	require.Len(t, parts, 2)
	assert.Equal(t, strings.Repeat("a", 60)+"\n", parts[0])
	assert.Equal(t, strings.Repeat("b", 60), parts[1])
}

func TestSplitMessageHardSplitWithoutNewline(t *testing.T) {
	text := strings.Repeat("x", 250)
	parts := SplitMessage(text, 100)

	require.Len(t, parts, 3)
	assert.Equal(t, 100, len([]rune(parts[0])))
	assert.Equal(t, 100, len([]rune(parts[1])))
	assert.Equal(t, 50, len([]rune(parts[2])))
	assert.Equal(t, text, strings.Join(parts, ""))
}

func TestSplitMessageMultibyteWithNewline(t *testing.T) {
	text := strings.Repeat("я", 99) + "\n" + strings.Repeat("я", 60)
	parts := SplitMessage(text, 100)

	require.Len(t, parts, 2)
	assert.Equal(t, strings.Repeat("я", 99)+"\n", parts[0])
	assert.Equal(t, strings.Repeat("я", 60), parts[1])
}

func TestSplitMessageMultibyteNewlineBeforeMidpointIgnored(t *testing.T) {
	text := strings.Repeat("я", 30) + "\n" + strings.Repeat("я", 120)
	parts := SplitMessage(text, 100)

	require.Len(t, parts, 2)
	assert.Equal(t, 100, len([]rune(parts[0])))
	assert.Equal(t, text, strings.Join(parts, ""))
}

func TestSplitMessageCountsRunes(t *testing.T) {
	text := strings.Repeat("ю", 150)
	parts := SplitMessage(text, 100)

	require.Len(t, parts, 2)
	assert.Equal(t, 100, len([]rune(parts[0])))
	assert.Equal(t, 50, len([]rune(parts[1])))
}

func TestFixMarkdownClosesCodeBlock(t *testing.T) {
	got := FixMarkdown("```go\nfmt.Println(\"hi\")")
	assert.True(t, strings.HasSuffix(got, "\n```"))
	assert.Equal(t, 2, strings.Count(got, "```"))
}

func TestFixMarkdownClosesInlineCode(t *testing.T) {
	got := FixMarkdown("use `fmt.Println to print")
	assert.Equal(t, "use `fmt.Println to print`", got)
}

func TestFixMarkdownBalancedUnchanged(t *testing.T) {
	text := "a `b` c\n```\ncode\n```\ndone"
	assert.Equal(t, text, FixMarkdown(text))
}

func TestFixMarkdownBacktickInsideCodeBlockIgnored(t *testing.T) {
	text := "```\na ` inside\n```"
	assert.Equal(t, text, FixMarkdown(text))
}
