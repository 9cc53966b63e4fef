package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/qiwang999/service-topo-agent/summarizer"
)

const summaryPrompt = `# Task
You are an expert data analyst. Provide a clear, concise, and friendly summary of the data returned from a database query.
The user asked a question, and a query was run against a database, which returned the following JSON data.
Synthesize this information into a natural language response that directly answers the user's original question.
Do not just restate the data; interpret it and present it in a helpful way. If the data is empty, inform the user that no results were found.

# User's Original Question:
%s

# JSON Query Result:
%s

# Your Summary:`

type llmSummarizer struct {
	options summarizer.Options
}

func (s *llmSummarizer) Summarize(ctx context.Context, question string, resultJSON string) (string, error) {
	rsp, err := s.options.Generator.Generate(ctx, fmt.Sprintf(summaryPrompt, question, resultJSON))
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(rsp), nil
}

func NewSummarizer(opts ...summarizer.Option) summarizer.Summarizer {
	options := summarizer.NewOptions(opts...)

	if options.Generator == nil {
		panic("llm summarizer requires a generator")
	}

	return &llmSummarizer{
		options: options,
	}
}
