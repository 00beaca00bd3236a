package pipeline

import (
	"strings"

	"github.com/sells-group/claims-cli/pkg/anthropic"
)

// extractText concatenates the text blocks of a model response.
func extractText(resp *anthropic.MessageResponse) string {
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}

// jsonObjectSpan returns the widest {...} span in text, after stripping any
// markdown code fences. Models sometimes wrap JSON in prose; taking the
// first opening brace through the last closing brace recovers the object.
func jsonObjectSpan(text string) (string, bool) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return text[start : end+1], true
}
