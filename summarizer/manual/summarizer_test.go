package manual

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &out))
	return out
}

func TestSummarizeTable(t *testing.T) {
	s := NewSummarizer()

	out, err := s.Summarize(context.Background(), "which services are down?",
		`[{"name":"billing","status":"down"},{"name":"auth","status":"down"}]`)
	require.NoError(t, err)

	env := decode(t, out)
	assert.Equal(t, "table", env["type"])
	assert.ElementsMatch(t, []any{"name", "status"}, env["headers"])
}

func TestSummarizeEmptyResult(t *testing.T) {
	s := NewSummarizer()

	out, err := s.Summarize(context.Background(), "q", `[]`)
	require.NoError(t, err)

	env := decode(t, out)
	assert.Equal(t, "message", env["type"])
	assert.Equal(t, "No results found.", env["content"])
}

func TestSummarizeMalformedPayload(t *testing.T) {
	s := NewSummarizer()

	out, err := s.Summarize(context.Background(), "q", `not json at all`)
	require.NoError(t, err)

	env := decode(t, out)
	assert.Equal(t, "error", env["type"])
	assert.Equal(t, "Failed to parse query result.", env["content"])
}
