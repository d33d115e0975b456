package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoardMakeMove(t *testing.T) {
	t.Run("first move lands on the bottom row", func(t *testing.T) {
		b := NewDefaultBoard()

		err := b.MakeMove(3, Yellow)

		require.NoError(t, err)
		require.Equal(t, Occupied(Yellow), b.Cells[5][3], "Token should land on row 5")
		for row := 0; row < 5; row++ {
			require.Equal(t, Empty, b.Cells[row][3], "Cells above the token should stay empty")
		}
		require.False(t, b.Full[3], "Column should not be full")
	})

	t.Run("tokens stack on top of each other", func(t *testing.T) {
		b := NewDefaultBoard()

		require.NoError(t, b.MakeMove(0, Red))
		require.NoError(t, b.MakeMove(0, Yellow))

		require.Equal(t, Occupied(Red), b.Cells[5][0])
		require.Equal(t, Occupied(Yellow), b.Cells[4][0])
	})

	t.Run("filling a column sets its full flag", func(t *testing.T) {
		b := NewDefaultBoard()
		color := Red
		for i := 0; i < b.Rows; i++ {
			require.NoError(t, b.MakeMove(0, color))
			color = color.Invert()
		}

		require.True(t, b.Full[0], "Column should be full once row 0 is occupied")
		require.False(t, b.IsMoveLegal(0))
	})

	t.Run("seventh move on a full column is illegal", func(t *testing.T) {
		b := NewDefaultBoard()
		for i := 0; i < b.Rows; i++ {
			require.NoError(t, b.MakeMove(0, Yellow))
		}
		before := b.Clone()

		err := b.MakeMove(0, Red)

		require.ErrorIs(t, err, ErrIllegalMove)
		var moveErr *MoveError
		require.True(t, errors.As(err, &moveErr))
		require.Equal(t, 0, moveErr.Column)
		require.True(t, b.Equal(before), "Rejected move should not change the board")
	})

	t.Run("out of range columns are illegal", func(t *testing.T) {
		b := NewDefaultBoard()

		require.ErrorIs(t, b.MakeMove(-1, Red), ErrIllegalMove)
		require.ErrorIs(t, b.MakeMove(7, Red), ErrIllegalMove)
		require.False(t, b.IsMoveLegal(-1))
		require.False(t, b.IsMoveLegal(7))
	})
}

func TestBoardUndoMove(t *testing.T) {
	t.Run("undo restores the exact previous board on every column", func(t *testing.T) {
		b := NewDefaultBoard()
		// Partially filled board with one full column
		moves := []int{0, 0, 0, 0, 0, 0, 1, 2, 2, 3, 3, 3}
		color := Red
		for _, c := range moves {
			require.NoError(t, b.MakeMove(c, color))
			color = color.Invert()
		}

		for c := 0; c < b.Columns; c++ {
			if !b.IsMoveLegal(c) {
				continue
			}
			before := b.Clone()
			require.NoError(t, b.MakeMove(c, color))
			require.NoError(t, b.UndoMove(c))
			require.True(t, b.Equal(before), "Board should be restored after undo on column %d", c)
		}
	})

	t.Run("undo on a full column clears its full flag", func(t *testing.T) {
		b := NewDefaultBoard()
		for i := 0; i < b.Rows; i++ {
			require.NoError(t, b.MakeMove(6, Red))
		}

		require.NoError(t, b.UndoMove(6))

		require.False(t, b.Full[6])
		require.Equal(t, Empty, b.Cells[0][6])
		require.Equal(t, Occupied(Red), b.Cells[1][6])
	})

	t.Run("undo on an empty column fails", func(t *testing.T) {
		b := NewDefaultBoard()

		require.ErrorIs(t, b.UndoMove(2), ErrIllegalMove)
	})

	t.Run("undo out of range fails", func(t *testing.T) {
		b := NewDefaultBoard()

		require.ErrorIs(t, b.UndoMove(7), ErrIllegalMove)
		require.ErrorIs(t, b.UndoMove(-1), ErrIllegalMove)
	})
}

func TestBoardPlay(t *testing.T) {
	t.Run("release undoes the move", func(t *testing.T) {
		b := NewDefaultBoard()
		before := b.Clone()

		release, err := b.Play(4, Red)
		require.NoError(t, err)
		require.Equal(t, Occupied(Red), b.Cells[5][4])

		release()
		require.True(t, b.Equal(before))
	})

	t.Run("illegal play returns no release", func(t *testing.T) {
		b := NewBoard(1, 1)
		require.NoError(t, b.MakeMove(0, Red))

		release, err := b.Play(0, Yellow)

		require.ErrorIs(t, err, ErrIllegalMove)
		require.Nil(t, release)
	})
}

func TestBoardStatus(t *testing.T) {
	t.Run("empty board is in progress", func(t *testing.T) {
		require.Equal(t, InProgress, NewDefaultBoard().Status())
	})

	t.Run("red row on the bottom wins", func(t *testing.T) {
		b := NewDefaultBoard()
		for c := 0; c < 4; c++ {
			require.NoError(t, b.MakeMove(c, Red))
		}

		require.Equal(t, FinishedBy(Red), b.Status())
	})

	t.Run("three in a row is not a win", func(t *testing.T) {
		b := NewDefaultBoard()
		for c := 0; c < 3; c++ {
			require.NoError(t, b.MakeMove(c, Red))
		}
		require.NoError(t, b.MakeMove(3, Yellow))

		require.Equal(t, InProgress, b.Status())
	})

	t.Run("vertical four wins", func(t *testing.T) {
		b := NewDefaultBoard()
		require.NoError(t, b.MakeMove(2, Red))
		for i := 0; i < 4; i++ {
			require.NoError(t, b.MakeMove(2, Yellow))
		}

		require.Equal(t, FinishedBy(Yellow), b.Status())
	})

	t.Run("rising diagonal wins", func(t *testing.T) {
		b := NewDefaultBoard()
		// Yellow on (5,0) (4,1) (3,2) (2,3), red fills underneath
		fill := [][2]int{{1, 1}, {2, 2}, {3, 3}}
		for _, f := range fill {
			for i := 0; i < f[1]; i++ {
				require.NoError(t, b.MakeMove(f[0], Red))
			}
		}
		for c := 0; c < 4; c++ {
			require.NoError(t, b.MakeMove(c, Yellow))
		}

		require.Equal(t, FinishedBy(Yellow), b.Status())
	})

	t.Run("falling diagonal wins", func(t *testing.T) {
		b := NewDefaultBoard()
		// Red on (2,3) (3,4) (4,5) (5,6), yellow fills underneath
		fill := [][2]int{{3, 3}, {4, 2}, {5, 1}}
		for _, f := range fill {
			for i := 0; i < f[1]; i++ {
				require.NoError(t, b.MakeMove(f[0], Yellow))
			}
		}
		for c := 3; c < 7; c++ {
			require.NoError(t, b.MakeMove(c, Red))
		}

		require.Equal(t, FinishedBy(Red), b.Status())
	})

	t.Run("first run in scan order decides between two winners", func(t *testing.T) {
		b := NewDefaultBoard()
		// Yellow row on row 5, red row on row 4: the scan reaches row 4 first
		for c := 0; c < 4; c++ {
			require.NoError(t, b.MakeMove(c, Yellow))
		}
		for c := 0; c < 4; c++ {
			require.NoError(t, b.MakeMove(c, Red))
		}

		require.Equal(t, FinishedBy(Red), b.Status())
	})
}

func TestBoardClone(t *testing.T) {
	b := NewDefaultBoard()
	require.NoError(t, b.MakeMove(0, Red))

	clone := b.Clone()
	require.True(t, clone.Equal(b))

	require.NoError(t, clone.MakeMove(0, Yellow))
	require.False(t, clone.Equal(b), "Clone should not share cells with the original")
	require.Equal(t, Empty, b.Cells[4][0])
}

func TestBoardString(t *testing.T) {
	b := NewBoard(2, 2)
	require.NoError(t, b.MakeMove(0, Red))
	require.NoError(t, b.MakeMove(1, Yellow))

	require.Equal(t, "⚪ ⚪ \n🔴 🟡 \n\n", b.String())
}

func TestColor(t *testing.T) {
	require.Equal(t, Yellow, Red.Invert())
	require.Equal(t, Red, Yellow.Invert())

	color, ok := Occupied(Yellow).Color()
	require.True(t, ok)
	require.Equal(t, Yellow, color)

	_, ok = Empty.Color()
	require.False(t, ok)
}
