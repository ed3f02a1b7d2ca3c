package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAdvance(t *testing.T) {
	tests := []struct {
		name      string
		current   StageID
		requested StageID
	}{
		{"pending to reviewed", StagePending, StageReviewed},
		{"pending to shortlisted", StagePending, StageShortlisted},
		{"reviewed to interviewed", StageReviewed, StageInterviewed},
		{"shortlisted to interviewed", StageShortlisted, StageInterviewed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class, err := Validate(tt.current, tt.requested)
			require.NoError(t, err)
			assert.Equal(t, ClassificationAdvance, class)
		})
	}
}

func TestValidateRegress(t *testing.T) {
	class, err := Validate(StageInterviewed, StageReviewed)
	require.NoError(t, err)
	assert.Equal(t, ClassificationRegress, class)

	class, err = Validate(StageShortlisted, StagePending)
	require.NoError(t, err)
	assert.Equal(t, ClassificationRegress, class)
}

func TestValidateUnknownStage(t *testing.T) {
	_, err := Validate(StagePending, StageID("archived"))
	te, ok := AsTransitionError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonUnknownStage, te.Reason)
	assert.False(t, te.Retryable)
}

func TestValidateTerminalStagesAcceptNothing(t *testing.T) {
	for _, current := range []StageID{StageAccepted, StageRejected} {
		for _, requested := range []StageID{StagePending, StageReviewed, StageShortlisted, StageInterviewed, StageAccepted, StageRejected} {
			_, err := Validate(current, requested)
			te, ok := AsTransitionError(err)
			require.True(t, ok, "expected denial for %s -> %s", current, requested)
			assert.Equal(t, ReasonApplicationClosed, te.Reason)
		}
	}
}

func TestValidateNoOp(t *testing.T) {
	_, err := Validate(StageReviewed, StageReviewed)
	te, ok := AsTransitionError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonNoOp, te.Reason)
}

func TestValidateRejectFromAnyOpenStage(t *testing.T) {
	for _, current := range []StageID{StagePending, StageReviewed, StageShortlisted, StageInterviewed} {
		class, err := Validate(current, StageRejected)
		require.NoError(t, err, "rejection from %s should be allowed", current)
		assert.Equal(t, ClassificationTerminal, class)
	}
}

func TestValidateAcceptRequiresShortlist(t *testing.T) {
	for _, current := range []StageID{StagePending, StageReviewed} {
		_, err := Validate(current, StageAccepted)
		te, ok := AsTransitionError(err)
		require.True(t, ok, "acceptance from %s should be denied", current)
		assert.Equal(t, ReasonSkippedRequiredStage, te.Reason)
	}

	for _, current := range []StageID{StageShortlisted, StageInterviewed} {
		class, err := Validate(current, StageAccepted)
		require.NoError(t, err, "acceptance from %s should be allowed", current)
		assert.Equal(t, ClassificationTerminal, class)
	}
}

func TestValidateUnknownCheckedBeforeTerminal(t *testing.T) {
	// An unknown target on a closed application reports unknown_stage, not
	// application_closed.
	_, err := Validate(StageAccepted, StageID("archived"))
	te, ok := AsTransitionError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonUnknownStage, te.Reason)
}
