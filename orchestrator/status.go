package orchestrator

type StatusKind string

const (
	StatusActive      StatusKind = "active"
	StatusBlocked     StatusKind = "blocked"
	StatusWaiting     StatusKind = "waiting"
	StatusMaintenance StatusKind = "maintenance"
)

// Status is the single operational state of the orchestrator. Blocked means
// an operator has to change something; Waiting resolves on its own;
// Maintenance is transient while lego runs.
type Status struct {
	Kind   StatusKind `json:"kind"`
	Reason string     `json:"reason,omitempty"`
}

func Active() Status {
	return Status{Kind: StatusActive}
}

func Blocked(reason string) Status {
	return Status{Kind: StatusBlocked, Reason: reason}
}

func Waiting(reason string) Status {
	return Status{Kind: StatusWaiting, Reason: reason}
}

func Maintenance(reason string) Status {
	return Status{Kind: StatusMaintenance, Reason: reason}
}

// StatusSink receives every status transition.
type StatusSink interface {
	Set(status Status)
}
