package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitions(t *testing.T) {
	trans := NewTransitions(false)

	assert.Equal(t, StateValidate, trans.Next(StateGenerate, EventGenerated))
	assert.Equal(t, StateExecute, trans.Next(StateValidate, EventValid))
	assert.Equal(t, StateGenerate, trans.Next(StateValidate, EventInvalid))
	assert.Equal(t, StateSummarize, trans.Next(StateExecute, EventExecuted))
	assert.Equal(t, StateGenerate, trans.Next(StateExecute, EventExecFailed))
	assert.Equal(t, StateDone, trans.Next(StateExecute, EventExhausted))
	assert.Equal(t, StateDone, trans.Next(StateSummarize, EventSummarized))
}

func TestTransitionsFastMode(t *testing.T) {
	trans := NewTransitions(true)

	assert.Equal(t, StateExecute, trans.Next(StateGenerate, EventGenerated))

	// the validate row is gone entirely
	_, ok := trans[StateValidate]
	assert.False(t, ok)
}

func TestTransitionsUnknownPairTerminates(t *testing.T) {
	trans := NewTransitions(false)

	assert.Equal(t, StateDone, trans.Next(StateGenerate, EventExecuted))
	assert.Equal(t, StateDone, trans.Next(StateSummarize, EventInvalid))
	assert.Equal(t, StateDone, trans.Next(StateDone, EventGenerated))
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, "MATCH (n) RETURN n", StripFences("```cypher\nMATCH (n) RETURN n\n```"))
	assert.Equal(t, "MATCH (n) RETURN n", StripFences("```\nMATCH (n) RETURN n\n```"))
	assert.Equal(t, "MATCH (n) RETURN n", StripFences("  MATCH (n) RETURN n  "))
}
