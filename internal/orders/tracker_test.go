package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerStageIndex(t *testing.T) {
	cases := []struct {
		status Status
		index  int
	}{
		{StatusPending, 0},
		{StatusAccepted, 0}, // legacy alias renders as Placed
		{StatusPreparing, 1},
		{StatusReady, 2},
		{StatusCompleted, 3},
	}
	for _, tc := range cases {
		st := Tracker(tc.status)
		assert.Equal(t, tc.index, st.StageIndex, "status %s", tc.status)
		assert.False(t, st.Terminal)
		assert.False(t, st.Unknown)
	}
}

func TestTrackerReadyStage(t *testing.T) {
	st := Tracker(StatusReady)
	require.Len(t, st.Stages, 4)

	assert.Equal(t, 2, st.StageIndex)
	assert.True(t, st.Stages[2].Active)
	assert.Equal(t, "Pick Up", st.Stages[2].Label)

	for i, stage := range st.Stages {
		assert.Equal(t, i <= 2, stage.Completed, "stage %d completed", i)
		assert.Equal(t, i == 2, stage.Active, "stage %d active", i)
	}
}

func TestTrackerTerminalBanner(t *testing.T) {
	for _, s := range []Status{StatusRejected, StatusCancelled} {
		st := Tracker(s)
		assert.True(t, st.Terminal, "status %s", s)
		assert.Empty(t, st.Stages, "terminal states render a banner, not a bar")
	}
}

func TestTrackerUnknownStatusIsFlagged(t *testing.T) {
	st := Tracker(Status("Shipped"))
	assert.True(t, st.Unknown, "an unrecognized status must not pass as freshly placed")
	assert.Equal(t, 0, st.StageIndex)
	assert.False(t, st.Terminal)
}
