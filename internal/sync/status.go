// Package sync contains the synchronization core: the retire-then-register
// orchestrator, its status/event protocol, and the scheduling loop that
// drives it.
package sync

// State is the orchestrator's lifecycle state. Idle and Error are resting
// states; Updating is the only transitional one and is re-entered on every
// replace cycle.
type State int

const (
	StateIdle State = iota
	StateUpdating
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateUpdating:
		return "updating"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Status is the current derived state. Observers get copies, never a live
// reference.
type Status struct {
	State   State
	Message string
}

func StatusIdle() Status            { return Status{State: StateIdle} }
func StatusUpdating() Status        { return Status{State: StateUpdating} }
func StatusError(msg string) Status { return Status{State: StateError, Message: msg} }

// EventType tags the things that happened, as opposed to the current state.
type EventType string

const (
	EventTorrentAdded EventType = "TorrentAdded"
	EventError        EventType = "Error"
)

// Event is a lifecycle notification. ID is set for TorrentAdded, Message
// for Error.
type Event struct {
	Type    EventType
	ID      uint64
	Message string
}

// Notifier is the outward sink for events and status snapshots. Delivery is
// best-effort: implementations must never block the caller and never report
// failure.
type Notifier interface {
	Event(ev Event)
	Status(st Status)
}
