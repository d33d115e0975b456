package gamemaster

import (
	"context"
	"errors"

	"connect4/game"

	"github.com/rs/zerolog/log"
)

// Human is the coordinator's opponent and audience.
type Human interface {
	// ReadColumn returns the next column the human plays.
	ReadColumn() (int, error)
	Rejected(column int, err error)
	Show(board *game.Board)
	Report(turn Turn)
	// Announce is called once when the game ends; a status that is not
	// finished means the board filled up without a winner.
	Announce(status game.Status)
}

// Run plays turns against the human until the game ends, the human stops
// providing input or a turn fails. Workers are always shut down on return.
func (m *Master) Run(ctx context.Context, human Human) (err error) {
	defer func() {
		err = errors.Join(err, m.Shutdown(context.WithoutCancel(ctx)))
	}()

	log.Info().Str("game", m.id).Int("size", m.comm.Size()).Msg("game started")
	for !m.Over() {
		column, err := human.ReadColumn()
		if err != nil {
			return err
		}

		turn, err := m.PlayTurn(ctx, column)
		if errors.Is(err, game.ErrIllegalMove) {
			human.Rejected(column, err)
			continue
		}
		if err != nil {
			return err
		}

		human.Show(turn.AfterPlayer)
		if turn.Column < 0 {
			break
		}
		human.Report(turn)
		human.Show(m.board)
	}

	status := m.board.Status()
	human.Announce(status)
	log.Info().Str("game", m.id).Stringer("status", status).Int("turns", m.turns).Msg("game over")
	return nil
}
