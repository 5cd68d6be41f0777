package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kiranshivaraju/medequip/internal/config"
	"github.com/kiranshivaraju/medequip/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRequest() models.VisionRequest {
	return models.VisionRequest{
		Prompt:          "grade this",
		Image:           []byte("fake-jpeg"),
		MIMEType:        "image/jpeg",
		Temperature:     0.1,
		MaxOutputTokens: 1000,
	}
}

func completion(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	}
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(config.OpenAIConfig{Model: "gpt-4o-mini"})
	require.Error(t, err)
}

func TestGenerate_SendsImageAsDataURL(t *testing.T) {
	var got map[string]any
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completion(`{"equipment":"monitor","condition":"fair"}`))
	}))
	t.Cleanup(server.Close)

	b, err := New(config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o-mini", BaseURL: server.URL})
	require.NoError(t, err)

	text, err := b.Generate(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, `{"equipment":"monitor","condition":"fair"}`, text)
	assert.Equal(t, "Bearer sk-test", gotAuth)

	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.EqualValues(t, 1000, got["max_tokens"])

	msgs := got["messages"].([]any)
	require.Len(t, msgs, 1)
	parts := msgs[0].(map[string]any)["content"].([]any)
	require.Len(t, parts, 2)
	img := parts[1].(map[string]any)["image_url"].(map[string]any)
	assert.True(t, strings.HasPrefix(img["url"].(string), "data:image/jpeg;base64,"))
}

func TestGenerate_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`))
	}))
	t.Cleanup(server.Close)

	b, err := New(config.OpenAIConfig{APIKey: "sk-bad", Model: "gpt-4o-mini", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = b.Generate(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrModelUnavailable)
	assert.Contains(t, err.Error(), "401")
}

func TestGenerate_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		resp := completion("")
		resp["choices"] = []any{}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)

	b, err := New(config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o-mini", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = b.Generate(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, models.ErrMalformedResponse)
}

func TestNewVLLM_UsesV1Path(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completion("The microscope looks excellent."))
	}))
	t.Cleanup(server.Close)

	b, err := NewVLLM(config.VLLMConfig{BaseURL: server.URL + "/", Model: "llava-hf/llava-1.5-7b-hf"})
	require.NoError(t, err)
	assert.Equal(t, "vllm", b.Name())

	text, err := b.Generate(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "The microscope looks excellent.", text)
	assert.Equal(t, "/v1/chat/completions", gotPath)
}

func TestNewVLLM_RequiresModel(t *testing.T) {
	_, err := NewVLLM(config.VLLMConfig{BaseURL: "http://localhost:8000"})
	require.Error(t, err)
}
