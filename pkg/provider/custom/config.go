package custom

import (
	"net/http"
)

type Config struct {
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

func WithToken(token string) Option {
	return func(c *Config) {
		c.token = token
	}
}

func WithModel(model string) Option {
	return func(c *Config) {
		c.model = model
	}
}

// WithHeaders adds extra request headers, e.g. the attribution headers
// OpenRouter expects alongside the bearer token.
func WithHeaders(headers http.Header) Option {
	return func(c *Config) {
		c.headers = headers
	}
}
