package usecase

import (
	"fmt"
	"strings"
)

const blogWordCount = 200

// buildBlogPrompt wraps the topic in the Llama 2 chat instruction format.
func buildBlogPrompt(topic string) string {
	return fmt.Sprintf(
		"<s>[INST]Human: Write a %d words blog on the topic %s\n      Assistant:[/INST]\n      ",
		blogWordCount,
		normalizePromptInput(topic),
	)
}

func normalizePromptInput(s string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
}
