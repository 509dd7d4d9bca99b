package anthropic

import (
	"encoding/json"
)

type messageRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`

	System string `json:"system,omitempty"`

	Messages []messageParam `json:"messages"`

	Tools      []toolParam      `json:"tools,omitempty"`
	ToolChoice *toolChoiceParam `json:"tool_choice,omitempty"`

	Temperature *float32 `json:"temperature,omitempty"`

	Stream bool `json:"stream,omitempty"`
}

// Content is either a plain string or a list of content blocks.
type messageParam struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentBlockParam struct {
	Type string `json:"type"`

	Text string `json:"text,omitempty"`

	// tool_use
	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`

	// tool_result
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

type toolParam struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	InputSchema map[string]any `json:"input_schema"`
}

type toolChoiceParam struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

type messageResponse struct {
	ID    string `json:"id"`
	Model string `json:"model"`

	Content []contentBlock `json:"content"`

	StopReason string `json:"stop_reason"`

	Usage usage `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`

	Text string `json:"text"`

	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type streamEvent struct {
	Type string `json:"type"`

	Index int `json:"index"`

	ContentBlock *contentBlock `json:"content_block"`
	Delta        *streamDelta  `json:"delta"`

	Error *streamError `json:"error"`
}

type streamDelta struct {
	Type string `json:"type"`

	Text        string `json:"text"`
	PartialJSON string `json:"partial_json"`
}

type streamError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
