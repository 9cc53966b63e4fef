package summarizer

import "context"

// Summarizer converts a raw query result into the final answer shown to the
// user. resultJSON is the JSON-encoded record list from the executor.
type Summarizer interface {
	Summarize(ctx context.Context, question string, resultJSON string) (string, error)
}
