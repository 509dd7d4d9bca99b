package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"iter"
	"net/http"

	"github.com/neverliie/ai-sdk-go/pkg/provider"
)

var _ provider.Completer = (*Client)(nil)

const defaultMaxTokens = 1024

type Client struct {
	*Config

	session *provider.Session
}

func New(apiKey string, options ...Option) (*Client, error) {
	cfg := &Config{
		url: "https://api.anthropic.com/v1",

		token: apiKey,
		model: "claude-3-haiku-20240307",
	}

	for _, option := range options {
		option(cfg)
	}

	header := http.Header{}
	header.Set("x-api-key", cfg.token)
	header.Set("anthropic-version", "2023-06-01")

	return &Client{
		Config: cfg,

		session: provider.NewSession(cfg.client, cfg.url, header),
	}, nil
}

func (c *Client) Complete(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Response, error) {
	if options == nil {
		options = new(provider.CompleteOptions)
	}

	req := c.newRequest(messages, options)

	var resp messageResponse

	if err := c.session.Post(ctx, "/messages", req, &resp); err != nil {
		return nil, err
	}

	return toResponse(&resp), nil
}

func (c *Client) Stream(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) iter.Seq2[provider.StreamEvent, error] {
	if options == nil {
		options = new(provider.CompleteOptions)
	}

	req := c.newRequest(messages, options)
	req.Stream = true

	return func(yield func(provider.StreamEvent, error) bool) {
		scanner, err := c.session.PostStream(ctx, "/messages", req)

		if err != nil {
			yield(provider.StreamEvent{}, err)
			return
		}

		defer scanner.Close()

		calls := provider.NewToolCallAccumulator()

		flush := func() bool {
			for _, call := range calls.Flush() {
				if !yield(provider.ToolCallEvent(call), nil) {
					return false
				}
			}

			return true
		}

		for {
			data, err := scanner.Next()

			if errors.Is(err, io.EOF) {
				flush()
				return
			}

			if err != nil {
				yield(provider.StreamEvent{}, err)
				return
			}

			var event streamEvent

			if err := json.Unmarshal(data, &event); err != nil {
				continue
			}

			switch event.Type {
			case "content_block_start":
				if event.ContentBlock != nil && event.ContentBlock.Type == "tool_use" {
					calls.Add(event.Index, provider.ToolCall{
						ID: event.ContentBlock.ID,

						Function: provider.FunctionCall{
							Name: event.ContentBlock.Name,
						},
					})
				}

			case "content_block_delta":
				if event.Delta == nil {
					continue
				}

				switch event.Delta.Type {
				case "text_delta":
					if event.Delta.Text == "" {
						continue
					}

					if !yield(provider.ContentEvent(event.Delta.Text), nil) {
						return
					}

				case "input_json_delta":
					calls.Add(event.Index, provider.ToolCall{
						Function: provider.FunctionCall{
							Arguments: event.Delta.PartialJSON,
						},
					})
				}

			case "content_block_stop":
				if !flush() {
					return
				}

			case "message_stop":
				return

			case "error":
				message := "stream error"

				if event.Error != nil {
					message = event.Error.Message
				}

				yield(provider.StreamEvent{}, &provider.APIError{Message: message})
				return
			}
		}
	}
}

func (c *Client) Close() error {
	return c.session.Close()
}

func (c *Client) newRequest(messages []provider.Message, options *provider.CompleteOptions) *messageRequest {
	model := options.Model

	if model == "" {
		model = c.model
	}

	maxTokens := defaultMaxTokens

	if options.MaxTokens != nil {
		maxTokens = *options.MaxTokens
	}

	system, converted := convertMessages(messages)

	req := &messageRequest{
		Model:     model,
		MaxTokens: maxTokens,

		System: system,

		Messages: converted,

		Temperature: options.Temperature,
	}

	if options.Tools != nil {
		req.Tools = convertTools(options.Tools)
	}

	if options.ToolChoice != nil {
		req.ToolChoice = convertToolChoice(*options.ToolChoice)
	}

	return req
}

// convertMessages lifts system messages into the top-level system prompt
// (last one wins) and maps tool results and tool calls to their block forms.
func convertMessages(messages []provider.Message) (string, []messageParam) {
	var system string

	result := []messageParam{}

	for _, m := range messages {
		switch m.Role {
		case provider.MessageRoleSystem:
			system = m.Content

		case provider.MessageRoleTool:
			result = append(result, messageParam{
				Role: "user",

				Content: []contentBlockParam{
					{
						Type: "tool_result",

						ToolUseID: m.ToolCallID,
						Content:   m.Content,
					},
				},
			})

		default:
			if len(m.ToolCalls) > 0 {
				var blocks []contentBlockParam

				if m.Content != "" {
					blocks = append(blocks, contentBlockParam{
						Type: "text",
						Text: m.Content,
					})
				}

				for _, call := range m.ToolCalls {
					blocks = append(blocks, contentBlockParam{
						Type: "tool_use",

						ID:    call.ID,
						Name:  call.Function.Name,
						Input: unmarshalArguments(call.Function.Arguments),
					})
				}

				result = append(result, messageParam{
					Role:    string(m.Role),
					Content: blocks,
				})

				continue
			}

			result = append(result, messageParam{
				Role:    string(m.Role),
				Content: m.Content,
			})
		}
	}

	return system, result
}

func unmarshalArguments(arguments string) map[string]any {
	input := map[string]any{}

	if arguments != "" {
		_ = json.Unmarshal([]byte(arguments), &input)
	}

	return input
}

func convertTools(tools []provider.Tool) []toolParam {
	result := []toolParam{}

	for _, t := range tools {
		if t.Type != provider.ToolTypeFunction {
			continue
		}

		parameters := t.Function.Parameters

		if parameters == nil {
			parameters = map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			}
		}

		result = append(result, toolParam{
			Name:        t.Function.Name,
			Description: t.Function.Description,

			InputSchema: parameters,
		})
	}

	return result
}

func convertToolChoice(choice provider.ToolChoice) *toolChoiceParam {
	switch choice.Mode {
	case provider.ToolChoiceModeAuto:
		return &toolChoiceParam{Type: "auto"}

	case provider.ToolChoiceModeNone:
		return &toolChoiceParam{Type: "none"}

	case provider.ToolChoiceModeRequired:
		return &toolChoiceParam{Type: "any"}

	case provider.ToolChoiceModeFunction:
		return &toolChoiceParam{Type: "tool", Name: choice.Name}
	}

	return nil
}

func toResponse(resp *messageResponse) *provider.Response {
	message := provider.Message{
		Role: provider.MessageRoleAssistant,
	}

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			message.Content += block.Text

		case "tool_use":
			arguments := "{}"

			if len(block.Input) > 0 {
				arguments = string(block.Input)
			}

			message.ToolCalls = append(message.ToolCalls, provider.ToolCall{
				ID:   block.ID,
				Type: provider.ToolTypeFunction,

				Function: provider.FunctionCall{
					Name:      block.Name,
					Arguments: arguments,
				},
			})
		}
	}

	return &provider.Response{
		ID:    resp.ID,
		Model: resp.Model,

		Choices: []provider.Choice{
			{
				Message:      message,
				FinishReason: resp.StopReason,
			},
		},

		Usage: &provider.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}
}
