package llm

import "context"

type Message struct {
	Role    string
	Content string

	// Set when replaying an assistant turn that requested tool calls.
	ToolCalls []ToolCall
	// Set on role "tool" messages carrying a tool result.
	ToolCallID string
	Name       string
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	ToolCalls        []ToolCall
}

// Client is the minimal surface the workflows need from a language model.
// Providers without native tool calling implement GenerateWithTools by
// ignoring the tool list.
type Client interface {
	Generate(ctx context.Context, messages []Message) (Response, error)
	GenerateWithTools(ctx context.Context, messages []Message, tools []Tool) (Response, error)
}

// ImageGenerator produces an image for a prompt and returns it as base64 PNG
// data. Only the OpenAI provider implements it.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}
