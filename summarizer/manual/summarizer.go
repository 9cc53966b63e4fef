package manual

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/qiwang999/service-topo-agent/summarizer"
)

// manualSummarizer formats query results with predefined logic for frontend
// consumption, without calling a model. Output is a JSON envelope tagged
// with one of: table, message, key_value, error.
type manualSummarizer struct{}

func (s *manualSummarizer) Summarize(ctx context.Context, question string, resultJSON string) (string, error) {
	var rows []map[string]any
	if err := json.Unmarshal([]byte(resultJSON), &rows); err != nil {
		return s.envelope(map[string]any{
			"type":    "error",
			"content": "Failed to parse query result.",
		}), nil
	}

	if len(rows) == 0 {
		return s.envelope(map[string]any{
			"type":    "message",
			"content": "No results found.",
		}), nil
	}

	headers := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		headers = append(headers, k)
	}
	sort.Strings(headers)

	if len(headers) == 0 {
		return s.envelope(map[string]any{
			"type": "key_value",
			"data": rows,
		}), nil
	}

	return s.envelope(map[string]any{
		"type":    "table",
		"headers": headers,
		"data":    rows,
	}), nil
}

func (s *manualSummarizer) envelope(payload map[string]any) string {
	bs, err := json.Marshal(payload)
	if err != nil {
		return `{"type":"error","content":"Failed to encode summary."}`
	}
	return string(bs)
}

func NewSummarizer(opts ...summarizer.Option) summarizer.Summarizer {
	return &manualSummarizer{}
}
