// Package google targets the Gemini generateContent REST API. Gemini
// authenticates through a `key` query parameter rather than a header, and
// streams whole content parts per chunk, so no incremental diffing is
// needed on the way out.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/url"

	"github.com/neverliie/ai-sdk-go/pkg/provider"
)

var _ provider.Completer = (*Client)(nil)

type Client struct {
	*Config

	session *provider.Session
}

func New(apiKey string, options ...Option) (*Client, error) {
	cfg := &Config{
		url: "https://generativelanguage.googleapis.com/v1beta",

		token: apiKey,
		model: "gemini-1.5-flash",
	}

	for _, option := range options {
		option(cfg)
	}

	return &Client{
		Config: cfg,

		session: provider.NewSession(cfg.client, cfg.url, nil),
	}, nil
}

func (c *Client) Complete(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Response, error) {
	if options == nil {
		options = new(provider.CompleteOptions)
	}

	model := c.modelFor(options)
	path := fmt.Sprintf("/models/%s:generateContent?key=%s", model, url.QueryEscape(c.token))

	var resp generateResponse

	if err := c.session.Post(ctx, path, newRequest(messages, options), &resp); err != nil {
		return nil, err
	}

	return toResponse(&resp, model)
}

func (c *Client) Stream(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) iter.Seq2[provider.StreamEvent, error] {
	if options == nil {
		options = new(provider.CompleteOptions)
	}

	model := c.modelFor(options)
	path := fmt.Sprintf("/models/%s:streamGenerateContent?key=%s&alt=sse", model, url.QueryEscape(c.token))

	req := newRequest(messages, options)

	return func(yield func(provider.StreamEvent, error) bool) {
		scanner, err := c.session.PostStream(ctx, path, req)

		if err != nil {
			yield(provider.StreamEvent{}, err)
			return
		}

		defer scanner.Close()

		// Gemini repeats whole functionCall parts across chunks
		emitted := map[string]bool{}

		for {
			data, err := scanner.Next()

			if errors.Is(err, io.EOF) {
				return
			}

			if err != nil {
				yield(provider.StreamEvent{}, err)
				return
			}

			var chunk generateResponse

			if err := json.Unmarshal(data, &chunk); err != nil {
				continue
			}

			if len(chunk.Candidates) == 0 {
				continue
			}

			for _, p := range chunk.Candidates[0].Content.Parts {
				if p.Text != "" {
					if !yield(provider.ContentEvent(p.Text), nil) {
						return
					}
				}

				if p.FunctionCall != nil {
					if emitted[p.FunctionCall.Name] {
						continue
					}

					emitted[p.FunctionCall.Name] = true

					call, err := toToolCall(p, "call_"+p.FunctionCall.Name)

					if err != nil {
						yield(provider.StreamEvent{}, err)
						return
					}

					if !yield(provider.ToolCallEvent(call), nil) {
						return
					}
				}
			}
		}
	}
}

func (c *Client) Close() error {
	return c.session.Close()
}

func (c *Client) modelFor(options *provider.CompleteOptions) string {
	if options.Model != "" {
		return options.Model
	}

	return c.model
}

func newRequest(messages []provider.Message, options *provider.CompleteOptions) *generateRequest {
	req := &generateRequest{
		Contents: convertMessages(messages),
	}

	if options.Temperature != nil || options.MaxTokens != nil {
		req.GenerationConfig = &generationConfig{
			Temperature:     options.Temperature,
			MaxOutputTokens: options.MaxTokens,
		}
	}

	if options.Tools != nil {
		req.Tools = convertTools(options.Tools)
	}

	if options.ToolChoice != nil {
		req.ToolConfig = convertToolChoice(*options.ToolChoice)
	}

	return req
}

// convertMessages maps the unified history to Gemini contents. Gemini knows
// only the user and model roles; system and tool messages go out as user
// turns. Messages that end up without parts are dropped.
func convertMessages(messages []provider.Message) []content {
	result := []content{}

	for _, m := range messages {
		role := "user"

		if m.Role == provider.MessageRoleAssistant {
			role = "model"
		}

		var parts []part

		if m.Role == provider.MessageRoleTool {
			name := m.Name

			if name == "" {
				name = "unknown"
			}

			parts = []part{
				{
					FunctionResponse: &functionResponse{
						Name: name,

						Response: map[string]any{
							"result": m.Content,
						},
					},
				},
			}
		} else {
			if m.Content != "" {
				parts = append(parts, part{Text: m.Content})
			}

			for _, call := range m.ToolCalls {
				args := map[string]any{}

				if call.Function.Arguments != "" {
					_ = json.Unmarshal([]byte(call.Function.Arguments), &args)
				}

				parts = append(parts, part{
					FunctionCall: &functionCall{
						Name: call.Function.Name,
						Args: args,
					},

					ThoughtSignature: call.ThoughtSignature,
				})
			}
		}

		if len(parts) == 0 {
			continue
		}

		result = append(result, content{
			Role:  role,
			Parts: parts,
		})
	}

	return result
}

func convertTools(tools []provider.Tool) []toolParam {
	declarations := []functionDeclaration{}

	for _, t := range tools {
		if t.Type != provider.ToolTypeFunction {
			continue
		}

		declarations = append(declarations, functionDeclaration{
			Name:        t.Function.Name,
			Description: t.Function.Description,

			Parameters: t.Function.Parameters,
		})
	}

	return []toolParam{
		{FunctionDeclarations: declarations},
	}
}

func convertToolChoice(choice provider.ToolChoice) *toolConfig {
	switch choice.Mode {
	case provider.ToolChoiceModeAuto:
		return &toolConfig{FunctionCallingConfig: functionCallingConfig{Mode: "AUTO"}}

	case provider.ToolChoiceModeNone:
		return &toolConfig{FunctionCallingConfig: functionCallingConfig{Mode: "NONE"}}

	case provider.ToolChoiceModeRequired:
		return &toolConfig{FunctionCallingConfig: functionCallingConfig{Mode: "ANY"}}

	case provider.ToolChoiceModeFunction:
		return &toolConfig{
			FunctionCallingConfig: functionCallingConfig{
				Mode: "ANY",

				AllowedFunctionNames: []string{choice.Name},
			},
		}
	}

	return nil
}

func toResponse(resp *generateResponse, model string) (*provider.Response, error) {
	if len(resp.Candidates) == 0 {
		return nil, &provider.APIError{Message: "response contains no candidates"}
	}

	candidate := resp.Candidates[0]

	message := provider.Message{
		Role: provider.MessageRoleAssistant,
	}

	for _, p := range candidate.Content.Parts {
		if p.Text != "" {
			message.Content += p.Text
		}

		if p.FunctionCall != nil {
			// Gemini supplies no call IDs; synthesize position-ordinal ones
			call, err := toToolCall(p, fmt.Sprintf("call_%d", len(message.ToolCalls)))

			if err != nil {
				return nil, err
			}

			message.ToolCalls = append(message.ToolCalls, call)
		}
	}

	result := &provider.Response{
		Model: model,

		Choices: []provider.Choice{
			{
				Message:      message,
				FinishReason: candidate.FinishReason,
			},
		},
	}

	if resp.UsageMetadata != nil {
		result.Usage = &provider.Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		}
	}

	return result, nil
}

func toToolCall(p part, id string) (provider.ToolCall, error) {
	args := []byte("{}")

	if p.FunctionCall.Args != nil {
		var err error

		if args, err = json.Marshal(p.FunctionCall.Args); err != nil {
			return provider.ToolCall{}, err
		}
	}

	return provider.ToolCall{
		ID:   id,
		Type: provider.ToolTypeFunction,

		Function: provider.FunctionCall{
			Name:      p.FunctionCall.Name,
			Arguments: string(args),
		},

		ThoughtSignature: p.ThoughtSignature,
	}, nil
}
