package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcomeText(t *testing.T) {
	for o := OutcomePending; o <= OutcomeAlreadySolved; o++ {
		parsed, err := ParseOutcome(o.String())
		require.NoError(t, err)
		assert.Equal(t, o, parsed)
	}

	_, err := ParseOutcome("maybe")
	assert.Error(t, err)
	assert.Equal(t, "outcome(42)", Outcome(42).String())
}

func TestOutcomeJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Outcome Outcome `json:"outcome"`
	}{OutcomeNoAttemptsLeft})
	require.NoError(t, err)
	assert.JSONEq(t, `{"outcome":"no_attempts"}`, string(b))
}

func TestOutcomeScan(t *testing.T) {
	var o Outcome
	require.NoError(t, o.Scan([]byte("incorrect")))
	assert.Equal(t, OutcomeIncorrect, o)
	require.NoError(t, o.Scan("solved"))
	assert.Equal(t, OutcomeAlreadySolved, o)
	assert.Error(t, o.Scan(12))

	v, err := OutcomeCorrect.Value()
	require.NoError(t, err)
	assert.Equal(t, "correct", v)
}

func TestOutcomeRecorded(t *testing.T) {
	assert.True(t, OutcomeCorrect.Recorded())
	assert.True(t, OutcomeIncorrect.Recorded())
	assert.False(t, OutcomeDuplicate.Recorded())
	assert.False(t, OutcomeNoAttemptsLeft.Recorded())
	assert.False(t, OutcomeAlreadySolved.Recorded())
	assert.False(t, OutcomePending.Recorded())
}
