package executor

import "context"

// Executor is the query-execution oracle: an opaque graph database that can
// describe its schema and run a Cypher statement. Results are
// JSON-serializable records; errors are returned, never panicked, and the
// orchestrator converts them into bounded retries.
type Executor interface {
	Schema(ctx context.Context) (string, error)
	Query(ctx context.Context, cypher string) ([]map[string]any, error)
}
