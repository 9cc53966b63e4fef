package orchestrator

// Role tags who produced a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
	RoleTool  Role = "tool"
)

// Turn is one message in a conversation.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// ValidationOutcome is the last syntax verdict of a turn.
type ValidationOutcome int

const (
	Unvalidated ValidationOutcome = iota
	Valid
	Invalid
)

// ExecutionOutcome is the last execution verdict of a turn.
type ExecutionOutcome int

const (
	ExecutionPending ExecutionOutcome = iota
	ExecutionSuccess
	ExecutionFailed
)

// Conversation is the mutable state of one turn through the machine. It is
// owned exclusively by the orchestrator and discarded when the turn
// terminates.
type Conversation struct {
	Turns         []Turn
	Question      string
	Generation    string
	Retries       int
	Validation    ValidationOutcome
	Execution     ExecutionOutcome
	FailureReason string
	ResultJSON    string
	Rows          []map[string]any
	Summary       string
}

// NewConversation seeds a turn with prior history plus the new question.
func NewConversation(history []Turn, question string) *Conversation {
	turns := make([]Turn, 0, len(history)+1)
	turns = append(turns, history...)
	turns = append(turns, Turn{Role: RoleUser, Text: question})

	return &Conversation{
		Turns:    turns,
		Question: question,
	}
}

func (c *Conversation) append(role Role, text string) {
	c.Turns = append(c.Turns, Turn{Role: role, Text: text})
}
