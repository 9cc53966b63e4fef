package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/qiwang999/service-topo-agent/selector"
)

const generationInstructions = `You are a Cypher query generator for a Neo4j graph database.
Given the schema and examples below, translate the user's question into a single Cypher query.
Return only the Cypher statement, with no explanation and no markdown fences.`

// buildPrompt assembles the generation prompt for the current turn: the
// graph schema, similar examples, high-rated feedback corrections, and the
// conversation so far.
func (o *Orchestrator) buildPrompt(ctx context.Context, conv *Conversation) (string, map[string]any) {
	var sel *selector.Selection

	if o.options.Selector != nil {
		var err error
		sel, err = o.options.Selector.Select(ctx, conv.Question)
		if err != nil {
			slog.WarnContext(ctx, "example selection failed, generating without examples", "error", err)
		}
	}

	if sel == nil {
		sel = &selector.Selection{}
	}

	var sb strings.Builder

	sb.WriteString(generationInstructions)
	sb.WriteString("\n\nSchema:\n")
	sb.WriteString(o.schema)
	sb.WriteString("\n\nExamples:\n")
	sb.WriteString(selector.FormatExamples(sel.Examples))

	if len(sel.Feedback) > 0 {
		sb.WriteString("\n\nUser feedback on similar questions (preferred corrections):\n")
		sb.WriteString(selector.FormatExamples(sel.Feedback))
	}

	sb.WriteString("\n\nConversation:\n")
	for _, turn := range conv.Turns {
		sb.WriteString(fmt.Sprintf("%s: %s\n", turn.Role, turn.Text))
	}

	sb.WriteString("\nCypher:")

	meta := map[string]any{
		"examples_used":          sel.Metadata.ExamplesUsed,
		"dynamic_examples":       sel.Metadata.DynamicExamples,
		"feedback_used":          sel.Metadata.FeedbackUsed,
		"avg_example_similarity": sel.Metadata.AvgExampleSimilarity,
	}

	return sb.String(), meta
}
