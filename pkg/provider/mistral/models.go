package mistral

import (
	"github.com/neverliie/ai-sdk-go/pkg/provider"
)

// Mistral speaks the OpenAI chat wire format, so the unified types embed
// directly. The chunk structs are kept per-provider rather than shared so
// the wire surface can drift independently.
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
