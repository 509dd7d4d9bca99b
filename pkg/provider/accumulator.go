package provider

import (
	"github.com/google/uuid"
)

type toolCallState int

const (
	toolCallStarted toolCallState = iota
	toolCallAccumulating
	toolCallComplete
)

// ToolCallAccumulator assembles tool calls whose fragments arrive spread
// across stream chunks, keyed by the provider-assigned index. Flushed calls
// are emitted in first-seen order and never re-emitted.
type ToolCallAccumulator struct {
	calls map[int]*pendingToolCall
	order []int
}

type pendingToolCall struct {
	state toolCallState
	call  ToolCall
}

func NewToolCallAccumulator() *ToolCallAccumulator {
	return &ToolCallAccumulator{
		calls: map[int]*pendingToolCall{},
	}
}

// Add merges one chunk fragment. The first fragment of an index fixes the
// call's ID; name and argument fragments concatenate across chunks.
func (a *ToolCallAccumulator) Add(index int, delta ToolCall) {
	pending, ok := a.calls[index]

	if !ok {
		pending = &pendingToolCall{
			state: toolCallStarted,

			call: ToolCall{
				Type: ToolTypeFunction,
			},
		}

		a.calls[index] = pending
		a.order = append(a.order, index)
	}

	if pending.state == toolCallComplete {
		return
	}

	if pending.call.ID == "" {
		pending.call.ID = delta.ID
	}

	if delta.ThoughtSignature != "" {
		pending.call.ThoughtSignature = delta.ThoughtSignature
	}

	pending.call.Function.Name += delta.Function.Name
	pending.call.Function.Arguments += delta.Function.Arguments

	pending.state = toolCallAccumulating
}

// Flush completes every pending call and returns them in first-seen order.
// A call that never carried an ID gets a synthesized one.
func (a *ToolCallAccumulator) Flush() []ToolCall {
	var result []ToolCall

	for _, index := range a.order {
		pending := a.calls[index]

		if pending.state == toolCallComplete {
			continue
		}

		pending.state = toolCallComplete

		if pending.call.ID == "" {
			pending.call.ID = "call_" + uuid.NewString()
		}

		result = append(result, pending.call)
	}

	return result
}
