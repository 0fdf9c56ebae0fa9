package summarizer

import (
	"github.com/akolanti/GoSummary/internal/config"
	"github.com/akolanti/GoSummary/internal/summarizer/llm"
)

// BuildPrompt places the instruction lines ahead of the text. Models without system message
// support receive every line as a user message.
func BuildPrompt(text string, hasSystemMessageSupport bool) llm.Prompt {
	role := llm.RoleUser
	if hasSystemMessageSupport {
		role = llm.RoleSystem
	}
	messages := make([]llm.Message, 0, len(config.PromptInstructions)+1)
	for _, line := range config.PromptInstructions {
		messages = append(messages, llm.Message{Role: role, Content: line})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: text})
	return llm.Prompt{Messages: messages}
}

// PromptTemplate is the prompt as recorded in metadata, with the text left as a placeholder.
func PromptTemplate(hasSystemMessageSupport bool) string {
	return BuildPrompt("{text}", hasSystemMessageSupport).String()
}
