package providers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assurecode/compliance/oracle"
)

func TestRegistration(t *testing.T) {
	for _, name := range []string{"ollama", "openai", "anthropic"} {
		assert.NotNil(t, oracle.GetProvider(name), "provider %s not registered", name)
	}
}

func TestOllamaBuildURL(t *testing.T) {
	p := &OllamaProvider{}

	assert.Equal(t, "http://localhost:11434/v1/chat/completions", p.BuildURL(""))
	assert.Equal(t, "http://host:8000/v1/chat/completions", p.BuildURL("http://host:8000/v1"))
	assert.Equal(t, "http://host:8000/v1/chat/completions", p.BuildURL("http://host:8000/v1/"))
	assert.Equal(t, "http://host:8000/v1/chat/completions", p.BuildURL("http://host:8000/v1/chat/completions"))
}

func TestOpenAIBuildURL(t *testing.T) {
	p := &OpenAIProvider{}

	assert.Equal(t, "https://api.openai.com/v1/chat/completions", p.BuildURL(""))
	assert.Equal(t, "https://openrouter.ai/api/v1/chat/completions", p.BuildURL("https://openrouter.ai/api/v1"))
}

func TestAnthropicBuildURL(t *testing.T) {
	p := &AnthropicProvider{}

	assert.Equal(t, "https://api.anthropic.com/v1/messages", p.BuildURL(""))
	assert.Equal(t, "http://proxy:9000/v1/messages", p.BuildURL("http://proxy:9000/"))
}

func TestOllamaBuildRequestBody(t *testing.T) {
	p := &OllamaProvider{}
	messages := []oracle.Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hello"},
	}

	t.Run("defaults omitted", func(t *testing.T) {
		body, err := p.BuildRequestBody("m1", messages, nil, 0)
		require.NoError(t, err)

		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "m1", req["model"])
		assert.NotContains(t, req, "temperature")
		assert.NotContains(t, req, "max_tokens")
		assert.Len(t, req["messages"], 2)
	})

	t.Run("explicit values included", func(t *testing.T) {
		temp := 0.0
		body, err := p.BuildRequestBody("m1", messages, &temp, 256)
		require.NoError(t, err)

		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		// Zero temperature is deterministic sampling, not "unset".
		assert.Equal(t, 0.0, req["temperature"])
		assert.Equal(t, float64(256), req["max_tokens"])
	})
}

func TestOllamaParseResponse(t *testing.T) {
	p := &OllamaProvider{}

	body := []byte(`{
		"model": "m1",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "hi"}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 3, "completion_tokens": 1, "total_tokens": 4}
	}`)

	resp, err := p.ParseResponse(body, "m1")
	require.NoError(t, err)
	assert.Equal(t, "hi", resp.Content)
	assert.Equal(t, "m1", resp.Model)
	assert.Equal(t, 4, resp.Usage.TotalTokens)
	assert.Equal(t, "stop", resp.FinishReason)
}

func TestOllamaParseResponse_NoChoices(t *testing.T) {
	p := &OllamaProvider{}

	_, err := p.ParseResponse([]byte(`{"model": "m1", "choices": []}`), "m1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestAnthropicBuildRequestBody(t *testing.T) {
	p := &AnthropicProvider{}
	messages := []oracle.Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hello"},
	}

	body, err := p.BuildRequestBody("claude-x", messages, nil, 0)
	require.NoError(t, err)

	var req map[string]any
	require.NoError(t, json.Unmarshal(body, &req))

	// System messages become the top-level system field.
	assert.Equal(t, "be brief", req["system"])
	assert.Len(t, req["messages"], 1)
	// max_tokens is mandatory for the Anthropic API.
	assert.Equal(t, float64(4096), req["max_tokens"])
}

func TestAnthropicParseResponse(t *testing.T) {
	p := &AnthropicProvider{}

	body := []byte(`{
		"model": "claude-x",
		"content": [{"type": "text", "text": "part one "}, {"type": "text", "text": "part two"}],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 5, "output_tokens": 2}
	}`)

	resp, err := p.ParseResponse(body, "claude-x")
	require.NoError(t, err)
	assert.Equal(t, "part one part two", resp.Content)
	assert.Equal(t, "end_turn", resp.FinishReason)
	assert.Equal(t, 7, resp.Usage.TotalTokens)
}
