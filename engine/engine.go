package engine

import (
	"context"

	"connect4/experiments/metrics"
	"connect4/game"
)

// Opponent stands in for the human in self-play games.
type Opponent interface {
	// NextColumn returns a legal column of board.
	NextColumn(board *game.Board) int
}

type Engine interface {
	// Run plays a game till there's a winner or the board is full
	Run(ctx context.Context) (winner string, gameMetric metrics.GameMetric, turnMetrics []metrics.TurnMetric, err error)
}
