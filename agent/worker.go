package agent

import (
	"context"
	"errors"
	"fmt"

	"connect4/communication"
	"connect4/game"
	"connect4/meta"
	"connect4/searcher"

	"github.com/rs/zerolog/log"
)

type Option func(*Worker)

// WithMaster sets the rank work is requested from.
func WithMaster(rank int) Option {
	return func(w *Worker) {
		if rank >= 0 {
			w.master = rank
		}
	}
}

// WithColors sets the colors the coordinator plays as (cpu) and against (player).
func WithColors(cpu, player game.Color) Option {
	return func(w *Worker) {
		if cpu != player {
			w.cpu = cpu
			w.player = player
		}
	}
}

// WithDepth sets the depth a task is expanded from and the bound it is expanded to.
func WithDepth(start, max int) Option {
	return func(w *Worker) {
		if start >= 0 && max >= start {
			w.startDepth = start
			w.maxDepth = max
		}
	}
}

// Worker evaluates tasks pulled from the coordinator until told to stop.
type Worker struct {
	comm       communication.Communicator
	master     int
	cpu        game.Color
	player     game.Color
	startDepth int
	maxDepth   int
	evaluated  int
}

func NewWorker(comm communication.Communicator, options ...Option) *Worker {
	w := &Worker{
		comm:       comm,
		master:     meta.MASTER_RANK,
		cpu:        game.Red,
		player:     game.Yellow,
		startDepth: meta.WORKER_START_DEPTH,
		maxDepth:   meta.WORKER_MAX_DEPTH,
	}
	for _, option := range options {
		option(w)
	}
	return w
}

// Evaluated returns the number of tasks this worker has completed.
func (w *Worker) Evaluated() int {
	return w.evaluated
}

// Run requests, evaluates and returns tasks in a loop. It returns nil once the
// coordinator sends the shutdown tag or closes the group.
func (w *Worker) Run(ctx context.Context) error {
	rank := w.comm.Rank()
	log.Debug().Int("rank", rank).Msg("worker started")

	for {
		if err := w.comm.Send(ctx, w.master, communication.RequestWork, nil); err != nil {
			if errors.Is(err, communication.ErrClosed) {
				return nil
			}
			return fmt.Errorf("worker %d: %w", rank, err)
		}

		msg, err := w.comm.Receive(ctx)
		if err != nil {
			if errors.Is(err, communication.ErrClosed) {
				return nil
			}
			return fmt.Errorf("worker %d: %w", rank, err)
		}

		switch msg.Tag {
		case communication.Shutdown:
			log.Debug().Int("rank", rank).Int("evaluated", w.evaluated).Msg("worker shutting down")
			return nil
		case communication.Assignment:
			if err := w.handle(ctx, msg); err != nil {
				return fmt.Errorf("worker %d: %w", rank, err)
			}
		default:
			return fmt.Errorf("worker %d: unexpected %s from rank %d", rank, msg.Tag, msg.Source)
		}
	}
}

func (w *Worker) handle(ctx context.Context, msg communication.Message) error {
	task, err := communication.Decode[searcher.Task](msg.Payload)
	if err != nil {
		return err
	}
	if task.Node == nil || task.Board == nil {
		return fmt.Errorf("assignment %s is missing its node or board", task.Slot())
	}

	result := Evaluate(task, w.startDepth, w.maxDepth, w.cpu, w.player)

	payload, err := communication.Encode(result)
	if err != nil {
		return err
	}
	if err := w.comm.Send(ctx, w.master, communication.Result, payload); err != nil {
		return err
	}
	w.evaluated++
	log.Trace().Int("rank", w.comm.Rank()).Stringer("slot", task.Slot()).Float64("value", result.Node.Value).Msg("task evaluated")
	return nil
}

// Evaluate expands the task's node from depth start down to max over the task's
// own board, then values it. The coordinates are left untouched.
func Evaluate(task searcher.Task, start, max int, cpu, player game.Color) searcher.Task {
	task.Node.BuildTree(task.Board, max, start)
	task.Node.CalculateValue(task.Board, cpu, player)
	return task
}
