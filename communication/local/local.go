// Package local implements an in-process process group: every rank is an
// Endpoint with its own mailbox, typically driven by its own goroutine.
package local

import (
	"context"
	"fmt"
	"sync"

	"connect4/communication"
)

type group struct {
	mailboxes []chan communication.Message
	done      chan struct{}
	closeOnce sync.Once
}

// Endpoint is one rank of an in-process group.
type Endpoint struct {
	rank  int
	group *group
}

// NewGroup returns the endpoints of a group of the given size, indexed by rank.
func NewGroup(size int) ([]*Endpoint, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid group size %d", size)
	}
	g := &group{
		mailboxes: make([]chan communication.Message, size),
		done:      make(chan struct{}),
	}
	endpoints := make([]*Endpoint, size)
	for rank := range endpoints {
		// Every rank has at most a few messages in flight towards any other
		g.mailboxes[rank] = make(chan communication.Message, 2*size)
		endpoints[rank] = &Endpoint{rank: rank, group: g}
	}
	return endpoints, nil
}

func (e *Endpoint) Rank() int {
	return e.rank
}

func (e *Endpoint) Size() int {
	return len(e.group.mailboxes)
}

func (e *Endpoint) Send(ctx context.Context, dest int, tag communication.Tag, payload []byte) error {
	if dest < 0 || dest >= e.Size() {
		return fmt.Errorf("send to rank %d: out of range 0..%d", dest, e.Size()-1)
	}
	msg := communication.Message{
		Source:  e.rank,
		Tag:     tag,
		Payload: append([]byte(nil), payload...),
	}
	select {
	case <-e.group.done:
		return communication.ErrClosed
	default:
	}
	select {
	case e.group.mailboxes[dest] <- msg:
		return nil
	case <-e.group.done:
		return communication.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Endpoint) Receive(ctx context.Context) (communication.Message, error) {
	select {
	case msg := <-e.group.mailboxes[e.rank]:
		return msg, nil
	case <-e.group.done:
		return communication.Message{}, communication.ErrClosed
	case <-ctx.Done():
		return communication.Message{}, ctx.Err()
	}
}

// Close shuts the whole group down; blocked calls on any rank return ErrClosed.
func (e *Endpoint) Close() error {
	e.group.closeOnce.Do(func() {
		close(e.group.done)
	})
	return nil
}
