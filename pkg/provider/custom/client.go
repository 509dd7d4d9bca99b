// Package custom targets generic OpenAI-compatible endpoints such as
// NVIDIA NIM, OpenRouter, or self-hosted backends. It wraps the openai
// client with a caller-supplied base URL, optional extra headers, and no
// default model: unless WithModel is given, requests omit the field and the
// backend decides.
package custom

import (
	"errors"

	"github.com/neverliie/ai-sdk-go/pkg/provider"
	"github.com/neverliie/ai-sdk-go/pkg/provider/openai"
)

var _ provider.Completer = (*Client)(nil)

type Client struct {
	*openai.Client
}

func New(url string, options ...Option) (*Client, error) {
	if url == "" {
		return nil, errors.New("invalid url")
	}

	cfg := &Config{}

	for _, option := range options {
		option(cfg)
	}

	opts := []openai.Option{
		openai.WithURL(url),
		openai.WithModel(cfg.model),
	}

	if cfg.client != nil {
		opts = append(opts, openai.WithClient(cfg.client))
	}

	if cfg.headers != nil {
		opts = append(opts, openai.WithHeaders(cfg.headers))
	}

	client, err := openai.New(cfg.token, opts...)

	if err != nil {
		return nil, err
	}

	return &Client{
		Client: client,
	}, nil
}
