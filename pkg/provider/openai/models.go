package openai

import (
	"github.com/neverliie/ai-sdk-go/pkg/provider"
)

// The unified types double as the OpenAI wire shape, so the request embeds
// them directly and the non-streaming response decodes into
// provider.Response without translation.
type chatCompletionRequest struct {
	Model string `json:"model,omitempty"`

	Messages []provider.Message `json:"messages"`

	Tools      []provider.Tool      `json:"tools,omitempty"`
	ToolChoice *provider.ToolChoice `json:"tool_choice,omitempty"`

	Temperature *float32 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`

	Stream bool `json:"stream,omitempty"`
}

type chatCompletionChunk struct {
	Choices []chunkChoice `json:"choices"`
}

type chunkChoice struct {
	Delta chunkDelta `json:"delta"`

	FinishReason string `json:"finish_reason"`
}

type chunkDelta struct {
	Content string `json:"content"`

	ToolCalls []toolCallDelta `json:"tool_calls"`
}

type toolCallDelta struct {
	Index int    `json:"index"`
	ID    string `json:"id"`

	Function functionCallDelta `json:"function"`
}

type functionCallDelta struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}
