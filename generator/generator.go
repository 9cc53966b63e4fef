package generator

import "context"

// Generator is the text-completion oracle. Its output carries no format
// guarantee beyond free text; callers strip fences and extract what they
// need.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
