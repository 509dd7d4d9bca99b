package provider

import (
	"encoding/json"
)

type ToolType string

const (
	ToolTypeFunction ToolType = "function"
)

type Tool struct {
	Type ToolType `json:"type"`

	Function ToolFunction `json:"function"`
}

type ToolFunction struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	Parameters map[string]any `json:"parameters,omitempty"`
}

func NewTool(name, description string, parameters map[string]any) Tool {
	return Tool{
		Type: ToolTypeFunction,

		Function: ToolFunction{
			Name:        name,
			Description: description,

			Parameters: parameters,
		},
	}
}

type ToolCall struct {
	ID   string   `json:"id"`
	Type ToolType `json:"type"`

	Function FunctionCall `json:"function"`

	// ThoughtSignature carries Google Gemini thought signatures so callers
	// can round-trip them through the assistant history.
	ThoughtSignature string `json:"thought_signature,omitempty"`
}

type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type ToolChoiceMode string

const (
	ToolChoiceModeAuto     ToolChoiceMode = "auto"
	ToolChoiceModeNone     ToolChoiceMode = "none"
	ToolChoiceModeRequired ToolChoiceMode = "required"
	ToolChoiceModeFunction ToolChoiceMode = "function"
)

// ToolChoice selects how the model may use the supplied tools. The modes
// marshal as bare strings, a function-specific choice marshals as the
// OpenAI-style object form.
type ToolChoice struct {
	Mode ToolChoiceMode
	Name string
}

var (
	ToolChoiceAuto     = ToolChoice{Mode: ToolChoiceModeAuto}
	ToolChoiceNone     = ToolChoice{Mode: ToolChoiceModeNone}
	ToolChoiceRequired = ToolChoice{Mode: ToolChoiceModeRequired}
)

func ToolChoiceFunction(name string) ToolChoice {
	return ToolChoice{
		Mode: ToolChoiceModeFunction,
		Name: name,
	}
}

func (c ToolChoice) MarshalJSON() ([]byte, error) {
	if c.Mode == ToolChoiceModeFunction {
		return json.Marshal(map[string]any{
			"type": "function",

			"function": map[string]string{
				"name": c.Name,
			},
		})
	}

	return json.Marshal(string(c.Mode))
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
