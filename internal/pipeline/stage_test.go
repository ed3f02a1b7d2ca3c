package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStagesCatalogOrder(t *testing.T) {
	stages := Stages()
	require.Len(t, stages, 6)

	for i := 1; i < len(stages); i++ {
		assert.Greater(t, stages[i].Rank, stages[i-1].Rank)
	}
	assert.Equal(t, StageRejected, stages[len(stages)-1].ID)
}

func TestNextStageSkipsRejected(t *testing.T) {
	next, ok := NextStage(StageInterviewed)
	require.True(t, ok)
	assert.Equal(t, StageAccepted, next)
}

func TestNextStageTerminal(t *testing.T) {
	_, ok := NextStage(StageAccepted)
	assert.False(t, ok)

	_, ok = NextStage(StageRejected)
	assert.False(t, ok)
}

func TestNextStageMainLine(t *testing.T) {
	want := map[StageID]StageID{
		StagePending:     StageReviewed,
		StageReviewed:    StageShortlisted,
		StageShortlisted: StageInterviewed,
		StageInterviewed: StageAccepted,
	}
	for from, to := range want {
		next, ok := NextStage(from)
		require.True(t, ok, "expected successor for %s", from)
		assert.Equal(t, to, next)
	}
}

func TestParseStageID(t *testing.T) {
	id, err := ParseStageID("  Shortlisted ")
	require.NoError(t, err)
	assert.Equal(t, StageShortlisted, id)

	_, err = ParseStageID("archived")
	te, ok := AsTransitionError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonUnknownStage, te.Reason)
}

func TestRejectionDetailsString(t *testing.T) {
	assert.Equal(t, "not a fit", RejectionDetails{Reason: "not a fit"}.String())
	assert.Equal(t, "not a fit | feedback: try backend roles",
		RejectionDetails{Reason: "not a fit", Feedback: "try backend roles"}.String())
	assert.Equal(t, "not a fit | reapplication welcome",
		RejectionDetails{Reason: "not a fit", CanReapply: true}.String())
}
