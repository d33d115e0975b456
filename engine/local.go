package engine

import (
	"context"
	"time"

	"connect4/experiments/metrics"
	"connect4/game"
	"connect4/gamemaster"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

const Draw = "Draw"

// LocalEngine drives a coordinator against an opponent without a console.
type LocalEngine struct {
	Master   *gamemaster.Master
	Opponent Opponent
}

func NewLocalEngine(master *gamemaster.Master, opponent Opponent) *LocalEngine {
	return &LocalEngine{
		Master:   master,
		Opponent: opponent,
	}
}

// Run plays turns until the board reports a winner or fills up.
func (e *LocalEngine) Run(ctx context.Context) (string, metrics.GameMetric, []metrics.TurnMetric, error) {
	gameMetric := metrics.GameMetric{
		ID:        e.Master.ID(),
		StartTime: time.Now(),
	}
	var turnMetrics []metrics.TurnMetric

	for !e.Master.Over() {
		column := e.Opponent.NextColumn(e.Master.Board())
		turn, err := e.Master.PlayTurn(ctx, column)
		if err != nil {
			return "", gameMetric, turnMetrics, err
		}
		gameMetric.Turns++
		if turn.Column >= 0 {
			turnMetrics = append(turnMetrics, turn.Metric)
		}
	}

	winner := Draw
	if status := e.Master.Status(); status.Finished {
		winner = status.Winner.String()
	}
	gameMetric.Winner = winner
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	log.Debug().Str("game", gameMetric.ID).Str("winner", winner).Int("turns", gameMetric.Turns).Msg("self-play game over")
	return winner, gameMetric, turnMetrics, nil
}

// RandomOpponent plays a uniformly random legal column.
type RandomOpponent struct {
	rng *rand.Rand
}

func NewRandomOpponent(seed uint64) *RandomOpponent {
	return &RandomOpponent{rng: rand.New(rand.NewSource(seed))}
}

func (o *RandomOpponent) NextColumn(board *game.Board) int {
	columns := board.LegalColumns()
	if len(columns) == 0 {
		return -1
	}
	return columns[o.rng.Intn(len(columns))]
}
