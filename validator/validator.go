package validator

import "context"

// Validator is a syntax-only check on a candidate Cypher query. It never
// executes the query. An error means the validation oracle itself could not
// be reached; the caller decides how to degrade.
type Validator interface {
	Validate(ctx context.Context, schema string, cypher string) (bool, error)
}
