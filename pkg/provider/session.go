package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// Session is the HTTP session shared by all calls of one client. It is
// created at construction, holds the provider's constant headers, and owns
// no mutable state beyond the connection pool of its *http.Client.
type Session struct {
	client *http.Client

	url    string
	header http.Header
}

func NewSession(client *http.Client, url string, header http.Header) *Session {
	if client == nil {
		client = http.DefaultClient
	}

	return &Session{
		client: client,

		url:    strings.TrimRight(url, "/"),
		header: header,
	}
}

// Post issues one blocking POST and decodes a 2xx response into result.
// Unknown response fields are ignored.
func (s *Session) Post(ctx context.Context, path string, payload, result any) error {
	resp, err := s.post(ctx, path, payload, "")

	if err != nil {
		return err
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return NewAPIError(resp.StatusCode, body)
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

// PostStream issues the same POST with streaming enabled and hands the
// response body to an EventScanner. The caller owns closing the scanner.
func (s *Session) PostStream(ctx context.Context, path string, payload any) (*EventScanner, error) {
	resp, err := s.post(ctx, path, payload, "text/event-stream")

	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		return nil, NewAPIError(resp.StatusCode, body)
	}

	return NewEventScanner(resp.Body), nil
}

func (s *Session) post(ctx context.Context, path string, payload any, accept string) (*http.Response, error) {
	data, err := json.Marshal(payload)

	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url+path, bytes.NewReader(data))

	if err != nil {
		return nil, err
	}

	for key, values := range s.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	req.Header.Set("Content-Type", "application/json")

	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	return s.client.Do(req)
}

// Close releases idle connections. Safe to call multiple times; calls after
// Close still work but pay connection setup again.
func (s *Session) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
