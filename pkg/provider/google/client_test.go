package google_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/neverliie/ai-sdk-go/pkg/provider"
	"github.com/neverliie/ai-sdk-go/pkg/provider/google"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *google.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := google.New("test-key", google.WithURL(server.URL))
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
	})

	return client
}

func TestComplete(t *testing.T) {
	var request map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))

		// auth travels as a query parameter, not a header
		require.Equal(t, "/models/gemini-1.5-flash:generateContent", r.URL.Path)
		require.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.Empty(t, r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{
					"content": map[string]any{
						"role": "model",
						"parts": []map[string]any{
							{"text": "Hello "},
							{"text": "there!"},
						},
					},
					"finishReason": "STOP",
				},
			},

			"usageMetadata": map[string]any{
				"promptTokenCount":     7,
				"candidatesTokenCount": 3,
				"totalTokenCount":      10,
			},
		})
	})

	messages := []provider.Message{
		provider.SystemMessage("be brief"),
		provider.UserMessage("hello"),
	}

	response, err := client.Complete(context.Background(), messages, nil)
	require.NoError(t, err)

	require.Equal(t, "Hello there!", response.Choices[0].Message.Content)
	require.Equal(t, "STOP", response.Choices[0].FinishReason)
	require.Equal(t, "gemini-1.5-flash", response.Model)
	require.Equal(t, 10, response.Usage.TotalTokens)

	// system and user roles both map to the user role
	contents := request["contents"].([]any)
	require.Len(t, contents, 2)
	require.Equal(t, "user", contents[0].(map[string]any)["role"])
	require.Equal(t, "user", contents[1].(map[string]any)["role"])
}

func TestCompleteToolCall(t *testing.T) {
	var request map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))

		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{
					"content": map[string]any{
						"role": "model",
						"parts": []map[string]any{
							{
								"functionCall": map[string]any{
									"name": "web_search",
									"args": map[string]any{"query": "weather"},
								},
								"thoughtSignature": "sig-123",
							},
						},
					},
					"finishReason": "STOP",
				},
			},
		})
	})

	options := &provider.CompleteOptions{
		Tools: []provider.Tool{
			provider.NewTool("web_search", "search the web", nil),
		},

		ToolChoice: &provider.ToolChoiceRequired,
	}

	response, err := client.Complete(context.Background(), []provider.Message{provider.UserMessage("weather?")}, options)
	require.NoError(t, err)

	calls := response.Choices[0].Message.ToolCalls
	require.Len(t, calls, 1)

	// Gemini supplies no IDs, so the client synthesizes ordinal ones
	require.Equal(t, "call_0", calls[0].ID)
	require.Equal(t, "web_search", calls[0].Function.Name)
	require.JSONEq(t, `{"query": "weather"}`, calls[0].Function.Arguments)
	require.Equal(t, "sig-123", calls[0].ThoughtSignature)

	// tools nest under functionDeclarations
	tools := request["tools"].([]any)
	declarations := tools[0].(map[string]any)["functionDeclarations"].([]any)
	require.Equal(t, "web_search", declarations[0].(map[string]any)["name"])

	// "required" approximates to mode ANY
	config := request["toolConfig"].(map[string]any)["functionCallingConfig"].(map[string]any)
	require.Equal(t, "ANY", config["mode"])
}

func TestCompleteToolHistory(t *testing.T) {
	var request map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))

		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{
					"content": map[string]any{
						"parts": []map[string]any{{"text": "It is sunny."}},
					},
					"finishReason": "STOP",
				},
			},
		})
	})

	messages := []provider.Message{
		provider.UserMessage("weather?"),
		{
			Role: provider.MessageRoleAssistant,

			ToolCalls: []provider.ToolCall{
				{
					ID:   "call_0",
					Type: provider.ToolTypeFunction,

					Function: provider.FunctionCall{
						Name:      "web_search",
						Arguments: `{"query": "weather"}`,
					},

					ThoughtSignature: "sig-123",
				},
			},
		},
		provider.ToolMessage("call_0", "web_search", "sunny, 22C"),
	}

	_, err := client.Complete(context.Background(), messages, nil)
	require.NoError(t, err)

	contents := request["contents"].([]any)
	require.Len(t, contents, 3)

	// assistant turns map to the model role, calls to functionCall parts
	assistant := contents[1].(map[string]any)
	require.Equal(t, "model", assistant["role"])

	callPart := assistant["parts"].([]any)[0].(map[string]any)
	require.Equal(t, map[string]any{"query": "weather"}, callPart["functionCall"].(map[string]any)["args"])
	require.Equal(t, "sig-123", callPart["thoughtSignature"])

	// tool results map to user-role functionResponse parts
	tool := contents[2].(map[string]any)
	require.Equal(t, "user", tool["role"])

	responsePart := tool["parts"].([]any)[0].(map[string]any)["functionResponse"].(map[string]any)
	require.Equal(t, "web_search", responsePart["name"])
	require.Equal(t, map[string]any{"result": "sunny, 22C"}, responsePart["response"])
}

func TestCompleteNoCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	})

	_, err := client.Complete(context.Background(), []provider.Message{provider.UserMessage("hello")}, nil)

	var target *provider.APIError
	require.ErrorAs(t, err, &target)
}

func TestCompleteError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": {"message": "API key not valid"}}`))
	})

	_, err := client.Complete(context.Background(), []provider.Message{provider.UserMessage("hello")}, nil)

	var target *provider.AuthenticationError
	require.ErrorAs(t, err, &target)
}

func TestStream(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/models/gemini-1.5-flash:streamGenerateContent", r.URL.Path)
		require.Equal(t, "sse", r.URL.Query().Get("alt"))

		w.Header().Set("Content-Type", "text/event-stream")

		chunks := []string{
			`{"candidates": [{"content": {"parts": [{"text": "Hello "}]}}]}`,
			`{"candidates": [{"content": {"parts": [{"text": "there!"}]}}]}`,
			`{"candidates": [{"content": {"parts": [{"functionCall": {"name": "web_search", "args": {"query": "weather"}}}]}}]}`,
			`{"candidates": [{"content": {"parts": [{"functionCall": {"name": "web_search", "args": {"query": "weather"}}}]}, "finishReason": "STOP"}]}`,
		}

		for _, chunk := range chunks {
			w.Write([]byte("data: " + chunk + "\n\n"))
		}
	})

	var events []provider.StreamEvent

	for event, err := range client.Stream(context.Background(), []provider.Message{provider.UserMessage("hello")}, nil) {
		require.NoError(t, err)
		events = append(events, event)
	}

	// repeated functionCall parts deduplicate by name
	require.Len(t, events, 3)

	require.Equal(t, "Hello ", events[0].Content)
	require.Equal(t, "there!", events[1].Content)

	require.Equal(t, provider.StreamEventToolCall, events[2].Type)
	require.Equal(t, "call_web_search", events[2].ToolCall.ID)
	require.JSONEq(t, `{"query": "weather"}`, events[2].ToolCall.Function.Arguments)
}

func TestCloseTwice(t *testing.T) {
	client, err := google.New("test-key")
	require.NoError(t, err)

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
}
