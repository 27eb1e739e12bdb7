package orders

// TrackerStage is one step of the customer-facing progress bar.
type TrackerStage struct {
	Status    Status `json:"status"`
	Label     string `json:"label"`
	Completed bool   `json:"completed"`
	Active    bool   `json:"active"`
}

// TrackerState is the derived, read-only view of an order's progress.
// Pure data; rendering and persistence never feed back into it.
type TrackerState struct {
	StageIndex int            `json:"stageIndex"`
	Stages     []TrackerStage `json:"stages"`
	// Terminal marks Rejected/Cancelled: rendered as a banner, not a bar.
	Terminal bool `json:"terminal"`
	// Unknown flags a status outside the lifecycle instead of silently
	// rendering it as freshly placed.
	Unknown bool `json:"unknown,omitempty"`
}

var trackerStages = []struct {
	status Status
	label  string
}{
	{StatusPending, "Placed"},
	{StatusPreparing, "Preparing"},
	{StatusReady, "Pick Up"},
	{StatusCompleted, "Completed"},
}

// Tracker maps a status to progress-bar state. Accepted is a legacy
// alias of Pending and shares index 0.
func Tracker(status Status) TrackerState {
	if status == StatusRejected || status == StatusCancelled {
		return TrackerState{Terminal: true}
	}

	idx := -1
	lookup := status
	if lookup == StatusAccepted {
		lookup = StatusPending
	}
	for i, st := range trackerStages {
		if st.status == lookup {
			idx = i
			break
		}
	}

	state := TrackerState{}
	if idx < 0 {
		idx = 0
		state.Unknown = true
	}
	state.StageIndex = idx

	state.Stages = make([]TrackerStage, len(trackerStages))
	for i, st := range trackerStages {
		state.Stages[i] = TrackerStage{
			Status:    st.status,
			Label:     st.label,
			Completed: i <= idx,
			Active:    i == idx,
		}
	}
	return state
}
