package communication

import "fmt"

// Tag is the kind of a message.
type Tag uint8

const (
	RequestWork Tag = iota + 1 // Worker is ready, empty payload
	Assignment                 // Task sent to a worker
	Result                     // Valued task sent back to the coordinator
	Shutdown                   // Game is over, empty payload
)

func (t Tag) Valid() bool {
	switch t {
	case RequestWork, Assignment, Result, Shutdown:
		return true
	default:
		return false
	}
}

func (t Tag) String() string {
	switch t {
	case RequestWork:
		return "request-work"
	case Assignment:
		return "assignment"
	case Result:
		return "result"
	case Shutdown:
		return "shutdown"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}
