package mistral

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

type Client struct {
	*Config

	session *provider.Session
}

func New(apiKey string, options ...Option) (*Client, error) {
	cfg := &Config{
		url: "https://api.mistral.ai/v1",

		token: apiKey,
		model: "mistral-small-latest",
	}

	for _, option := range options {
		option(cfg)
	}

	header := http.Header{}

	if cfg.token != "" {
		header.Set("Authorization", "Bearer "+cfg.token)
	}

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

	var result provider.Response

	if err := c.session.Post(ctx, "/chat/completions", req, &result); err != nil {
		return nil, err
	}

	if len(result.Choices) == 0 {
		return nil, &provider.APIError{Message: "response contains no choices"}
	}

	return &result, nil
}

func (c *Client) Stream(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) iter.Seq2[provider.StreamEvent, error] {
	if options == nil {
		options = new(provider.CompleteOptions)
	}

	req := c.newRequest(messages, options)
	req.Stream = true

	return func(yield func(provider.StreamEvent, error) bool) {
		scanner, err := c.session.PostStream(ctx, "/chat/completions", req)

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

			var chunk chatCompletionChunk

			if err := json.Unmarshal(data, &chunk); err != nil {
				continue
			}

			if len(chunk.Choices) == 0 {
				continue
			}

			choice := chunk.Choices[0]

			if choice.Delta.Content != "" {
				if !yield(provider.ContentEvent(choice.Delta.Content), nil) {
					return
				}
			}

			for _, delta := range choice.Delta.ToolCalls {
				calls.Add(delta.Index, provider.ToolCall{
					ID: delta.ID,

					Function: provider.FunctionCall{
						Name:      delta.Function.Name,
						Arguments: delta.Function.Arguments,
					},
				})
			}

			if choice.FinishReason == "tool_calls" {
				if !flush() {
					return
				}
			}
		}
	}
}

func (c *Client) Close() error {
	return c.session.Close()
}

func (c *Client) newRequest(messages []provider.Message, options *provider.CompleteOptions) *chatCompletionRequest {
	model := options.Model

	if model == "" {
		model = c.model
	}

	return &chatCompletionRequest{
		Model: model,

		Messages: messages,

		Tools:      options.Tools,
		ToolChoice: options.ToolChoice,

		Temperature: options.Temperature,
		MaxTokens:   options.MaxTokens,
	}
}
