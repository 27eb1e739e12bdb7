package orders

type Status string

const (
	StatusPending   Status = "Pending"
	StatusAccepted  Status = "Accepted" // legacy alias of Pending in old documents
	StatusPreparing Status = "Preparing"
	StatusReady     Status = "Ready"
	StatusCompleted Status = "Completed"
	StatusRejected  Status = "Rejected"
	StatusCancelled Status = "Cancelled"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusPreparing: true, StatusRejected: true},
	StatusAccepted:  {StatusPreparing: true, StatusRejected: true},
	StatusPreparing: {StatusReady: true},
	StatusReady:     {StatusCompleted: true},
	StatusCompleted: {},
	StatusRejected:  {},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// CanCancel: customers may cancel only while the order is still Pending.
func CanCancel(s Status) bool {
	return s == StatusPending
}

func IsTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusRejected || s == StatusCancelled
}

func Known(s Status) bool {
	_, ok := validNext[s]
	return ok
}
