package gamemaster

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"connect4/agent"
	"connect4/communication"
	"connect4/experiments/metrics"
	"connect4/game"
	"connect4/meta"
	"connect4/searcher"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrGameOver = errors.New("game is over")

// Evaluator deep-expands and values a task in the coordinator's own process.
type Evaluator func(task searcher.Task) searcher.Task

type Option func(*Master)

// WithBoard starts the game from the given board instead of an empty one.
func WithBoard(board *game.Board) Option {
	return func(m *Master) {
		if board != nil {
			m.board = board
		}
	}
}

// WithColors sets the colors played by the coordinator (cpu) and the human (player).
func WithColors(cpu, player game.Color) Option {
	return func(m *Master) {
		if cpu != player {
			m.cpu = cpu
			m.player = player
		}
	}
}

// WithShallowDepth sets the depth bound of the coordinator's own expansion.
// Tasks are always cut at the second ply and dispatched as bare nodes, so
// deeper local trees only cost time.
func WithShallowDepth(depth int) Option {
	return func(m *Master) {
		if depth >= 1 {
			m.shallowDepth = depth
		}
	}
}

func WithMetrics(collector metrics.Collector) Option {
	return func(m *Master) {
		if collector != nil {
			m.collector = collector
		}
	}
}

// WithLocalEvaluator sets how tasks are evaluated when the group has no workers.
func WithLocalEvaluator(evaluate Evaluator) Option {
	return func(m *Master) {
		if evaluate != nil {
			m.evaluate = evaluate
		}
	}
}

// Turn reports one human move and the coordinator's reply.
type Turn struct {
	Number      int
	Player      int         // Column played by the human
	AfterPlayer *game.Board // Snapshot after the human move
	Column      int         // Column played by the coordinator, -1 if it did not move
	Tasks       int
	Values      []float64 // Ply-1 values, indexed like the legal columns
	Elapsed     time.Duration
	Status      game.Status
	Draw        bool
	Metric      metrics.TurnMetric
}

// Over reports whether the game ended during this turn.
func (t Turn) Over() bool {
	return t.Status.Finished || t.Draw
}

// Master is the coordinator: it owns the live board, expands two plies
// locally and farms the second-ply nodes out to the workers.
type Master struct {
	id           string
	comm         communication.Communicator
	board        *game.Board
	cpu          game.Color
	player       game.Color
	shallowDepth int
	collector    metrics.Collector
	evaluate     Evaluator
	idle         []int // Workers that asked for work while none was pending
	turns        int
	shutdownOnce sync.Once
	shutdownErr  error
}

func NewMaster(comm communication.Communicator, options ...Option) *Master {
	m := &Master{
		id:           uuid.NewString(),
		comm:         comm,
		board:        game.NewDefaultBoard(),
		cpu:          game.Red,
		player:       game.Yellow,
		shallowDepth: meta.SHALLOW_DEPTH,
		collector:    metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	if m.evaluate == nil {
		cpu, player := m.cpu, m.player
		m.evaluate = func(task searcher.Task) searcher.Task {
			return agent.Evaluate(task, meta.WORKER_START_DEPTH, meta.WORKER_MAX_DEPTH, cpu, player)
		}
	}
	return m
}

// ID identifies the game in logs and metric records.
func (m *Master) ID() string {
	return m.id
}

// Board returns the live board. It must not be mutated while a turn is played.
func (m *Master) Board() *game.Board {
	return m.board
}

// Status returns the status of the live board.
func (m *Master) Status() game.Status {
	return m.board.Status()
}

// Over reports whether the game on the live board has ended.
func (m *Master) Over() bool {
	return m.board.Status().Finished || !m.board.HasLegalMove()
}

// PlayTurn applies the human move and, unless that ended the game, computes
// and applies the coordinator's reply. An illegal human move leaves the board
// untouched and returns an error wrapping game.ErrIllegalMove.
func (m *Master) PlayTurn(ctx context.Context, column int) (Turn, error) {
	if m.Over() {
		return Turn{}, ErrGameOver
	}
	if err := m.board.MakeMove(column, m.player); err != nil {
		return Turn{}, err
	}
	m.turns++
	turn := Turn{
		Number:      m.turns,
		Player:      column,
		AfterPlayer: m.board.Clone(),
		Column:      -1,
		Status:      m.board.Status(),
	}
	if turn.Status.Finished {
		return turn, nil
	}
	if !m.board.HasLegalMove() {
		turn.Draw = true
		return turn, nil
	}

	start := time.Now()
	root := searcher.NewRoot(m.player, column, turn.Status)
	root.BuildTree(m.board, m.shallowDepth, 0)
	tasks := searcher.Partition(root, m.board)

	m.collector.Start(turn.Number, m.comm.Size(), len(tasks))
	results, err := m.distribute(ctx, tasks)
	if err != nil {
		return turn, fmt.Errorf("turn %d: %w", turn.Number, err)
	}
	if err := searcher.Merge(root, results); err != nil {
		return turn, fmt.Errorf("turn %d: %w", turn.Number, err)
	}
	decision, err := searcher.Decide(root, m.board, m.cpu, m.player)
	if err != nil {
		return turn, fmt.Errorf("turn %d: %w", turn.Number, err)
	}
	turn.Elapsed = time.Since(start)
	turn.Metric = m.collector.Complete()
	turn.Tasks = len(tasks)
	turn.Values = decision.Values

	if err := m.board.MakeMove(decision.Column, m.cpu); err != nil {
		// Decide only picks columns that were legal when the tree was built
		panic(fmt.Sprintf("chosen column %d is illegal: %v", decision.Column, err))
	}
	turn.Column = decision.Column
	turn.Status = m.board.Status()
	turn.Draw = !turn.Status.Finished && !m.board.HasLegalMove()

	log.Debug().
		Str("game", m.id).
		Int("turn", turn.Number).
		Int("player", column).
		Int("cpu", decision.Column).
		Float64("value", decision.Value).
		Int("tasks", turn.Tasks).
		Dur("elapsed", turn.Elapsed).
		Msg("turn played")
	return turn, nil
}

// Shutdown tells every worker the game is over. Only the first call sends.
func (m *Master) Shutdown(ctx context.Context) error {
	m.shutdownOnce.Do(func() {
		var errs []error
		for rank := 0; rank < m.comm.Size(); rank++ {
			if rank == m.comm.Rank() {
				continue
			}
			if err := m.comm.Send(ctx, rank, communication.Shutdown, nil); err != nil {
				log.Warn().Err(err).Int("rank", rank).Msg("failed to shut worker down")
				errs = append(errs, err)
			}
		}
		m.idle = nil
		m.shutdownErr = errors.Join(errs...)
		log.Info().Str("game", m.id).Int("workers", m.comm.Size()-1).Msg("shutdown broadcast")
	})
	return m.shutdownErr
}
