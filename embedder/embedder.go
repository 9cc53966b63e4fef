package embedder

import "context"

// Embedder turns text into a fixed-length vector. Implementations wrap an
// external embedding service; callers treat any error as a retrieval miss,
// never as a fault.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
