package communication

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("communicator closed")

// Message is a tagged message received from another rank.
type Message struct {
	Source  int
	Tag     Tag
	Payload []byte
}

// Communicator abstracts a fixed process group. Ranks are 0..Size()-1 and
// never change for the lifetime of the communicator.
type Communicator interface {
	Rank() int
	Size() int
	// Send delivers a tagged payload to the dest rank.
	Send(ctx context.Context, dest int, tag Tag, payload []byte) error
	// Receive blocks until a message from any rank arrives or ctx is done.
	Receive(ctx context.Context) (Message, error)
	Close() error
}

// GroupSizeHeader carries the group size in the coordinator's handshake response.
const GroupSizeHeader = "X-Group-Size"
