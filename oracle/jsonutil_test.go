package oracle

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "bare object",
			content: `{"status": "ok"}`,
			want:    `{"status": "ok"}`,
		},
		{
			name:    "markdown fence with language",
			content: "Sure, here it is:\n```json\n{\"status\": \"ok\"}\n```\nLet me know!",
			want:    `{"status": "ok"}`,
		},
		{
			name:    "markdown fence without language",
			content: "```\n{\"status\": \"ok\"}\n```",
			want:    `{"status": "ok"}`,
		},
		{
			name:    "object surrounded by prose",
			content: "The answer is {\"status\": \"ok\"} as requested.",
			want:    `{"status": "ok"}`,
		},
		{
			name:    "trailing comma removed",
			content: `{"items": [1, 2, 3,], "status": "ok",}`,
			want:    `{"items": [1, 2, 3], "status": "ok"}`,
		},
		{
			name:    "no JSON at all",
			content: "I cannot help with that.",
			want:    "",
		},
		{
			name:    "empty input",
			content: "",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.content))
		})
	}
}

func TestExtractJSON_LineComments(t *testing.T) {
	content := `{
  "url": "http://example.com", // keep the URL intact
  "status": "ok" // trailing note
}`

	got := ExtractJSON(content)
	require.NotEmpty(t, got)
	require.True(t, json.Valid([]byte(got)), "cleaned JSON should parse: %s", got)

	var parsed struct {
		URL    string `json:"url"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(got), &parsed))
	assert.Equal(t, "http://example.com", parsed.URL)
	assert.Equal(t, "ok", parsed.Status)
}

func TestExtractJSON_EscapedQuotes(t *testing.T) {
	content := `{"note": "she said \"hi\" // not a comment"}`

	got := ExtractJSON(content)
	require.True(t, json.Valid([]byte(got)))

	var parsed struct {
		Note string `json:"note"`
	}
	require.NoError(t, json.Unmarshal([]byte(got), &parsed))
	assert.Equal(t, `she said "hi" // not a comment`, parsed.Note)
}

func TestExtractJSON_MultilineNested(t *testing.T) {
	content := "```json\n{\n  \"outer\": {\n    \"inner\": [1, 2],\n  },\n}\n```"

	got := ExtractJSON(content)
	require.True(t, json.Valid([]byte(got)), "got: %s", got)
}
