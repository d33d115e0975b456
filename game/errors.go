package game

import (
	"errors"
	"fmt"
)

// ErrIllegalMove is matched by every error returned from moves on a board.
var ErrIllegalMove = errors.New("illegal move")

// MoveError describes why a move or an undo was rejected.
type MoveError struct {
	Column int
	Reason string
}

func newMoveError(column int, reason string) error {
	return &MoveError{Column: column, Reason: reason}
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("illegal move on column %d: %s", e.Column, e.Reason)
}

func (e *MoveError) Is(target error) bool {
	return target == ErrIllegalMove
}
