package provider

import (
	"context"
	"iter"
)

// Completer is the capability set shared by all provider clients. One type
// per provider implements it; selection happens at construction time.
type Completer interface {
	Complete(ctx context.Context, messages []Message, options *CompleteOptions) (*Response, error)
	Stream(ctx context.Context, messages []Message, options *CompleteOptions) iter.Seq2[StreamEvent, error]
	Close() error
}

type MessageRole string

const (
	MessageRoleSystem    MessageRole = "system"
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleTool      MessageRole = "tool"
)

type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`

	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`

	Name string `json:"name,omitempty"`
}

func SystemMessage(content string) Message {
	return Message{
		Role:    MessageRoleSystem,
		Content: content,
	}
}

func UserMessage(content string) Message {
	return Message{
		Role:    MessageRoleUser,
		Content: content,
	}
}

func AssistantMessage(content string) Message {
	return Message{
		Role:    MessageRoleAssistant,
		Content: content,
	}
}

func ToolMessage(id, name, content string) Message {
	return Message{
		Role:    MessageRoleTool,
		Content: content,

		ToolCallID: id,

		Name: name,
	}
}

type CompleteOptions struct {
	Model string

	Tools      []Tool
	ToolChoice *ToolChoice

	Temperature *float32
	MaxTokens   *int
}

type Response struct {
	ID      string `json:"id,omitempty"`
	Object  string `json:"object,omitempty"`
	Created int64  `json:"created,omitempty"`
	Model   string `json:"model,omitempty"`

	Choices []Choice `json:"choices"`

	Usage *Usage `json:"usage,omitempty"`
}

type Choice struct {
	Index int `json:"index"`

	Message Message `json:"message"`

	FinishReason string `json:"finish_reason,omitempty"`
}

type StreamEventType string

const (
	StreamEventContent  StreamEventType = "content"
	StreamEventToolCall StreamEventType = "tool_call"
)

// StreamEvent is one element of a chat stream. Events are independent
// values; the library never retains them after yielding.
type StreamEvent struct {
	Type StreamEventType

	Content string

	ToolCall     *ToolCall
	FinishReason string
}

func ContentEvent(text string) StreamEvent {
	return StreamEvent{
		Type: StreamEventContent,

		Content: text,
	}
}

func ToolCallEvent(call ToolCall) StreamEvent {
	return StreamEvent{
		Type: StreamEventToolCall,

		ToolCall:     &call,
		FinishReason: "tool_calls",
	}
}
