package gamemaster

import (
	"context"
	"fmt"

	"connect4/communication"
	"connect4/searcher"

	"github.com/rs/zerolog/log"
)

// distribute hands the tasks out to whichever worker asks first and returns
// once every dispatched task has come back. Requests that arrive after the
// last task was handed out are parked for the next turn.
func (m *Master) distribute(ctx context.Context, tasks []searcher.Task) ([]searcher.Task, error) {
	if m.comm.Size() == 1 {
		return m.evaluateInline(tasks), nil
	}

	results := make([]searcher.Task, 0, len(tasks))
	outstanding := make(map[searcher.Slot]int, len(tasks)) // Slot -> rank
	next := 0

	// Serve the workers parked during the previous turn first
	for len(m.idle) > 0 && next < len(tasks) {
		rank := m.idle[0]
		m.idle = m.idle[1:]
		if err := m.assign(ctx, rank, tasks[next], outstanding); err != nil {
			return nil, err
		}
		next++
	}

	for len(results) < len(tasks) {
		msg, err := m.comm.Receive(ctx)
		if err != nil {
			return nil, err
		}

		switch msg.Tag {
		case communication.RequestWork:
			if next == len(tasks) {
				m.idle = append(m.idle, msg.Source)
				continue
			}
			if err := m.assign(ctx, msg.Source, tasks[next], outstanding); err != nil {
				return nil, err
			}
			next++
		case communication.Result:
			result, err := communication.Decode[searcher.Task](msg.Payload)
			if err != nil {
				return nil, fmt.Errorf("result from rank %d: %w", msg.Source, err)
			}
			slot := result.Slot()
			rank, ok := outstanding[slot]
			if !ok || rank != msg.Source {
				return nil, fmt.Errorf("rank %d returned slot %s it was not assigned", msg.Source, slot)
			}
			delete(outstanding, slot)
			results = append(results, result)
			m.collector.AddResult(msg.Source)
		default:
			return nil, fmt.Errorf("unexpected %s from rank %d", msg.Tag, msg.Source)
		}
	}
	return results, nil
}

func (m *Master) assign(ctx context.Context, rank int, task searcher.Task, outstanding map[searcher.Slot]int) error {
	payload, err := communication.Encode(task)
	if err != nil {
		return err
	}
	if err := m.comm.Send(ctx, rank, communication.Assignment, payload); err != nil {
		return err
	}
	outstanding[task.Slot()] = rank
	m.collector.AddDispatched(rank)
	log.Trace().Int("rank", rank).Stringer("slot", task.Slot()).Msg("task assigned")
	return nil
}

func (m *Master) evaluateInline(tasks []searcher.Task) []searcher.Task {
	results := make([]searcher.Task, 0, len(tasks))
	for _, task := range tasks {
		m.collector.AddDispatched(m.comm.Rank())
		results = append(results, m.evaluate(task))
		m.collector.AddResult(m.comm.Rank())
	}
	return results
}
