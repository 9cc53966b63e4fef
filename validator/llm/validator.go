package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/qiwang999/service-topo-agent/validator"
)

const validationPrompt = `# Task
You are an expert Neo4j syntax validator. Determine if the following Cypher query is syntactically correct based on the provided Neo4j database schema. Do not execute the query or check whether the data exists. Focus exclusively on syntax.

- Check for correct Cypher keywords (e.g., MATCH, WHERE, RETURN).
- Check for balanced parentheses (), brackets [], and curly braces {}.
- Check for typos in relationship types, labels, and properties based on the schema.

Respond with a single word: 'valid' if the query is syntactically correct, or 'invalid' if it is not.

# Neo4j Schema:
%s

# Cypher Query to Validate:
%s`

type llmValidator struct {
	options validator.Options
}

// Validate asks the generation oracle for a verdict. Any reply containing
// the substring "invalid" (case-insensitive) fails the query; anything else
// passes it.
func (v *llmValidator) Validate(ctx context.Context, schema string, cypher string) (bool, error) {
	rsp, err := v.options.Generator.Generate(ctx, fmt.Sprintf(validationPrompt, schema, cypher))
	if err != nil {
		return false, err
	}

	verdict := strings.ToLower(strings.TrimSpace(rsp))

	return !strings.Contains(verdict, "invalid"), nil
}

func NewValidator(opts ...validator.Option) validator.Validator {
	options := validator.NewOptions(opts...)

	if options.Generator == nil {
		panic("llm validator requires a generator")
	}

	return &llmValidator{
		options: options,
	}
}
