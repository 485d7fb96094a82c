package assistant

import "strings"

const DefaultPromptTemplate = "Screen content: {{screen}}\nUser instruction: {{instruction}}"

func ComposePrompt(template, screen, instruction string) string {
	if template == "" {
		template = DefaultPromptTemplate
	}
	return strings.NewReplacer(
		"{{screen}}", screen,
		"{{instruction}}", instruction,
	).Replace(template)
}
