package openai

import (
	"net/http"
)

type Config struct {
	url string

	token string
	model string

	headers http.Header

	client *http.Client
}

type Option func(*Config)

func WithClient(client *http.Client) Option {
	return func(c *Config) {
		c.client = client
	}
}

func WithURL(url string) Option {
	return func(c *Config) {
		c.url = url
	}
}

func WithModel(model string) Option {
	return func(c *Config) {
		c.model = model
	}
}

// WithHeaders merges extra headers over the default auth header, for
// OpenAI-compatible backends that expect additional attribution headers.
func WithHeaders(headers http.Header) Option {
	return func(c *Config) {
		c.headers = headers
	}
}
