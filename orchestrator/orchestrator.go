package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const (
	invalidSyntaxMsg  = "The previously generated query has invalid syntax. Please generate a new, syntactically correct query."
	execFailedMsgFmt  = "The query execution failed. Please fix it. Error: %s"
	fallbackSummary   = "I'm sorry, I couldn't process that."
	exhaustedReason   = "no answer, max retries reached"
	stepLimitReason   = "no answer, step limit reached"
	execFailurePrefix = "Query execution failed with error: "
)

// Result is the terminal output of one turn.
type Result struct {
	Summary         string           `json:"summary"`
	Cypher          string           `json:"generated_cypher"`
	Rows            []map[string]any `json:"raw_result,omitempty"`
	Retries         int              `json:"retries"`
	Steps           int              `json:"steps"`
	CacheHit        bool             `json:"cache_hit,omitempty"`
	CacheSimilarity float64          `json:"cache_similarity,omitempty"`
	Exhausted       bool             `json:"exhausted,omitempty"`
	FailureReason   string           `json:"failure_reason,omitempty"`
	Metadata        map[string]any   `json:"prompt_metadata,omitempty"`
	History         []Turn           `json:"updated_history"`
}

// Orchestrator drives one conversational turn through the generation,
// validation, execution and summarization oracles with bounded retries,
// consulting the semantic cache before generating at all.
//
// An Orchestrator is immutable after construction. Reconfiguration means
// building a new one and swapping the shared reference; in-flight turns
// keep the instance they started with.
type Orchestrator struct {
	options     Options
	transitions Transitions
	schema      string
}

// Respond runs the state machine for question against history. It never
// returns an error for oracle trouble; only an empty question is rejected.
func (o *Orchestrator) Respond(ctx context.Context, history []Turn, question string) (*Result, error) {
	question = strings.TrimSpace(question)
	if len(question) == 0 {
		return nil, errors.New("question is required")
	}

	if o.options.Cache != nil {
		if hit, _ := o.options.Cache.Lookup(ctx, question); hit != nil {
			slog.InfoContext(ctx, "cache hit", "similarity", hit.Similarity)
			return &Result{
				Summary:         hit.Summary,
				Cypher:          hit.Cypher,
				CacheHit:        true,
				CacheSimilarity: hit.Similarity,
				History:         appendAnswer(history, question, hit.Summary),
			}, nil
		}
	}

	conv := NewConversation(history, question)

	var meta map[string]any

	state := StateGenerate
	steps := 0

	for state != StateDone {
		if steps >= o.options.MaxSteps {
			slog.WarnContext(ctx, "step bound reached, terminating turn", "steps", steps)
			conv.FailureReason = stepLimitReason
			break
		}
		steps++

		var event Event

		switch state {
		case StateGenerate:
			event, meta = o.generate(ctx, conv)
		case StateValidate:
			event = o.validate(ctx, conv)
		case StateExecute:
			event = o.execute(ctx, conv)
		case StateSummarize:
			event = o.summarize(ctx, conv)
		default:
			event = EventExhausted
		}

		next := o.transitions.Next(state, event)
		slog.DebugContext(ctx, "state transition", "from", state.String(), "event", event.String(), "to", next.String())
		state = next
	}

	result := &Result{
		Summary:       conv.Summary,
		Cypher:        conv.Generation,
		Rows:          conv.Rows,
		Retries:       conv.Retries,
		Steps:         steps,
		FailureReason: conv.FailureReason,
		Metadata:      meta,
	}

	if len(conv.FailureReason) > 0 {
		result.Exhausted = true
		result.Summary = fallbackSummary
		result.History = appendAnswer(history, question, fallbackSummary)
		return result, nil
	}

	result.History = appendAnswer(history, question, conv.Summary)

	if o.options.Cache != nil {
		if err := o.options.Cache.Record(ctx, question, conv.Generation, conv.Summary); err != nil {
			slog.WarnContext(ctx, "failed to record answer in cache", "error", err)
		}
	}

	return result, nil
}

// Schema returns the graph schema the orchestrator was constructed with.
func (o *Orchestrator) Schema() string {
	return o.schema
}

// FastMode reports whether validation is being skipped.
func (o *Orchestrator) FastMode() bool {
	return o.options.FastMode
}

func (o *Orchestrator) generate(ctx context.Context, conv *Conversation) (Event, map[string]any) {
	conv.Retries++

	prompt, meta := o.buildPrompt(ctx, conv)

	raw, err := o.options.Generator.Generate(ctx, prompt)
	if err != nil {
		// Recovered locally: an empty candidate fails validation or
		// execution and re-enters generation under the same bounds.
		slog.WarnContext(ctx, "generation oracle failed", "error", err)
		conv.Generation = ""
		conv.append(RoleAgent, "Error generating Cypher query")
		return EventGenerated, meta
	}

	conv.Generation = StripFences(raw)
	conv.Validation = Unvalidated
	conv.append(RoleAgent, conv.Generation)

	return EventGenerated, meta
}

func (o *Orchestrator) validate(ctx context.Context, conv *Conversation) Event {
	ok, err := o.options.Validator.Validate(ctx, o.schema, conv.Generation)
	if err != nil {
		// Validation is advisory: when its oracle is unreachable the turn
		// proceeds to execution, which is bounded on its own.
		slog.WarnContext(ctx, "validation oracle failed, proceeding to execution", "error", err)
		conv.Validation = Valid
		return EventValid
	}

	if !ok {
		conv.Validation = Invalid
		conv.append(RoleUser, invalidSyntaxMsg)
		return EventInvalid
	}

	conv.Validation = Valid

	return EventValid
}

func (o *Orchestrator) execute(ctx context.Context, conv *Conversation) Event {
	rows, err := o.options.Executor.Query(ctx, conv.Generation)
	if err != nil {
		failure := execFailurePrefix + err.Error()
		conv.Execution = ExecutionFailed
		conv.append(RoleTool, failure)

		if conv.Retries >= o.options.MaxRetries {
			conv.FailureReason = exhaustedReason
			return EventExhausted
		}

		conv.append(RoleUser, fmt.Sprintf(execFailedMsgFmt, failure))
		return EventExecFailed
	}

	conv.Execution = ExecutionSuccess
	conv.Rows = rows

	bs, err := json.Marshal(rows)
	if err != nil {
		conv.ResultJSON = `"could not serialize result"`
	} else {
		conv.ResultJSON = string(bs)
	}

	conv.append(RoleTool, conv.ResultJSON)

	return EventExecuted
}

func (o *Orchestrator) summarize(ctx context.Context, conv *Conversation) Event {
	summary, err := o.options.Summarizer.Summarize(ctx, conv.Question, conv.ResultJSON)
	if err != nil {
		slog.WarnContext(ctx, "summarization oracle failed", "error", err)
		summary = fallbackSummary
	}

	conv.Summary = summary
	conv.append(RoleAgent, summary)

	return EventSummarized
}

// StripFences removes markdown code fences from a raw oracle response so a
// plain statement remains.
func StripFences(raw string) string {
	out := strings.TrimSpace(raw)
	out = strings.ReplaceAll(out, "```cypher", "")
	out = strings.ReplaceAll(out, "```", "")
	return strings.TrimSpace(out)
}

func appendAnswer(history []Turn, question string, answer string) []Turn {
	out := make([]Turn, 0, len(history)+2)
	out = append(out, history...)
	out = append(out, Turn{Role: RoleUser, Text: question})
	out = append(out, Turn{Role: RoleAgent, Text: answer})
	return out
}

func New(opts ...Option) *Orchestrator {
	options := NewOptions(opts...)

	if options.Generator == nil {
		panic("orchestrator requires a generator")
	}
	if options.Executor == nil {
		panic("orchestrator requires an executor")
	}
	if options.Summarizer == nil {
		panic("orchestrator requires a summarizer")
	}
	if !options.FastMode && options.Validator == nil {
		panic("orchestrator requires a validator unless fast mode is on")
	}

	o := &Orchestrator{
		options:     options,
		transitions: NewTransitions(options.FastMode),
	}

	schema, err := options.Executor.Schema(options.Context)
	if err != nil {
		slog.Warn("schema unavailable at construction", "error", err)
	}
	o.schema = schema

	return o
}
