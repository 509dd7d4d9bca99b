package custom_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/neverliie/ai-sdk-go/pkg/provider"
	"github.com/neverliie/ai-sdk-go/pkg/provider/custom"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("requires url", func(t *testing.T) {
		_, err := custom.New("")
		require.Error(t, err)
	})

	t.Run("url is enough", func(t *testing.T) {
		client, err := custom.New("http://localhost:11434/v1")
		require.NoError(t, err)

		require.NoError(t, client.Close())
	})
}

func TestComplete(t *testing.T) {
	var request map[string]any
	var authorization, referer string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))

		authorization = r.Header.Get("Authorization")
		referer = r.Header.Get("HTTP-Referer")

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{
					"message": map[string]any{
						"role":    "assistant",
						"content": "hi from the backend",
					},
				},
			},
		})
	}))
	t.Cleanup(server.Close)

	headers := http.Header{}
	headers.Set("HTTP-Referer", "https://example.com")

	client, err := custom.New(server.URL,
		custom.WithToken("secret"),
		custom.WithHeaders(headers),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
	})

	response, err := client.Complete(context.Background(), []provider.Message{provider.UserMessage("hello")}, nil)
	require.NoError(t, err)

	require.Equal(t, "hi from the backend", response.Choices[0].Message.Content)

	// extra headers merge over the bearer token
	require.Equal(t, "Bearer secret", authorization)
	require.Equal(t, "https://example.com", referer)

	// without WithModel the request omits the field and the backend decides
	_, hasModel := request["model"]
	require.False(t, hasModel)
}

func TestCompleteWithModel(t *testing.T) {
	var request map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "ok"}},
			},
		})
	}))
	t.Cleanup(server.Close)

	client, err := custom.New(server.URL, custom.WithModel("llama-3.1-8b-instruct"))
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
	})

	_, err = client.Complete(context.Background(), []provider.Message{provider.UserMessage("hello")}, nil)
	require.NoError(t, err)

	require.Equal(t, "llama-3.1-8b-instruct", request["model"])
}
