package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	legal := []struct{ from, to Status }{
		{StatusPending, StatusPreparing},
		{StatusPending, StatusRejected},
		{StatusAccepted, StatusPreparing},
		{StatusAccepted, StatusRejected},
		{StatusPreparing, StatusReady},
		{StatusReady, StatusCompleted},
	}
	for _, tc := range legal {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be legal", tc.from, tc.to)
	}

	illegal := []struct{ from, to Status }{
		{StatusPending, StatusReady},
		{StatusPending, StatusCompleted},
		{StatusPreparing, StatusRejected},
		{StatusPreparing, StatusCompleted},
		{StatusReady, StatusPreparing},
		{StatusCompleted, StatusPending},
		{StatusRejected, StatusPreparing},
		{StatusCancelled, StatusPending},
		{StatusPreparing, StatusPending}, // no regressions on the happy path
	}
	for _, tc := range illegal {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s should be illegal", tc.from, tc.to)
	}
}

func TestTerminalStatesAreAbsorbing(t *testing.T) {
	all := []Status{StatusPending, StatusAccepted, StatusPreparing, StatusReady,
		StatusCompleted, StatusRejected, StatusCancelled}
	for _, terminal := range []Status{StatusCompleted, StatusRejected, StatusCancelled} {
		assert.True(t, IsTerminal(terminal))
		for _, to := range all {
			assert.False(t, CanTransition(terminal, to), "%s must not leave terminal state", terminal)
		}
	}
}

func TestCanCancel(t *testing.T) {
	assert.True(t, CanCancel(StatusPending))

	for _, s := range []Status{StatusAccepted, StatusPreparing, StatusReady,
		StatusCompleted, StatusRejected, StatusCancelled} {
		assert.False(t, CanCancel(s), "cancel from %s must be refused", s)
	}
}

func TestKnown(t *testing.T) {
	assert.True(t, Known(StatusPending))
	assert.True(t, Known(StatusCancelled))
	assert.False(t, Known(Status("Shipped")))
	assert.False(t, Known(Status("")))
}
