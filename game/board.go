package game

import (
	"fmt"
	"strings"

	"connect4/meta"
)

const (
	reasonOutOfRange = "column index out of range"
	reasonFull       = "column is full"
	reasonEmpty      = "column is empty"
)

// Board is a grid of cells with gravity: a token always lands in the lowest
// empty cell of its column. Row 0 is the top row.
type Board struct {
	Rows    int
	Columns int
	Cells   [][]Cell // Indexed by row, then column
	Full    []bool   // Full[c] is true iff Cells[0][c] is occupied
}

// NewBoard returns an empty board of the given size.
func NewBoard(rows, columns int) *Board {
	if rows <= 0 || columns <= 0 {
		panic(fmt.Sprintf("invalid board size %dx%d", rows, columns))
	}
	cells := make([][]Cell, rows)
	for r := range cells {
		cells[r] = make([]Cell, columns)
	}
	return &Board{
		Rows:    rows,
		Columns: columns,
		Cells:   cells,
		Full:    make([]bool, columns),
	}
}

// NewDefaultBoard returns an empty 6x7 board.
func NewDefaultBoard() *Board {
	return NewBoard(meta.ROWS, meta.COLUMNS)
}

// IsMoveLegal reports whether a token can be dropped into column.
func (b *Board) IsMoveLegal(column int) bool {
	if column < 0 || column >= b.Columns {
		return false
	}
	return !b.Full[column]
}

// MakeMove drops a token of color into column.
func (b *Board) MakeMove(column int, color Color) error {
	if column < 0 || column >= b.Columns {
		return newMoveError(column, reasonOutOfRange)
	}
	if b.Full[column] {
		return newMoveError(column, reasonFull)
	}

	for row := b.Rows - 1; row >= 0; row-- {
		if b.Cells[row][column] != Empty {
			continue
		}
		b.Cells[row][column] = Occupied(color)
		if row == 0 {
			b.Full[column] = true
		}
		break
	}
	return nil
}

// UndoMove removes the topmost token of column.
func (b *Board) UndoMove(column int) error {
	if column < 0 || column >= b.Columns {
		return newMoveError(column, reasonOutOfRange)
	}
	if b.Cells[b.Rows-1][column] == Empty {
		return newMoveError(column, reasonEmpty)
	}

	for row := 0; row < b.Rows; row++ {
		if b.Cells[row][column] != Empty {
			b.Cells[row][column] = Empty
			break
		}
	}
	b.Full[column] = false
	return nil
}

// Play makes a move and returns a release func that undoes it. Callers defer
// release so the board is restored on every exit path.
func (b *Board) Play(column int, color Color) (release func(), err error) {
	if err := b.MakeMove(column, color); err != nil {
		return nil, err
	}
	return func() {
		if err := b.UndoMove(column); err != nil {
			panic(fmt.Sprintf("undo of a played move failed: %v", err))
		}
	}, nil
}

// LegalColumns returns the columns that accept a token, in column order.
func (b *Board) LegalColumns() []int {
	columns := make([]int, 0, b.Columns)
	for c := 0; c < b.Columns; c++ {
		if b.IsMoveLegal(c) {
			columns = append(columns, c)
		}
	}
	return columns
}

// HasLegalMove reports whether any column accepts a token.
func (b *Board) HasLegalMove() bool {
	for c := 0; c < b.Columns; c++ {
		if b.IsMoveLegal(c) {
			return true
		}
	}
	return false
}

// Status scans the board row by row for four in a row. For each occupied cell
// the row, column, "\" and "/" directions are checked in that order, and the
// first run found decides the winner.
func (b *Board) Status() Status {
	for row := 0; row < b.Rows; row++ {
		for column := 0; column < b.Columns; column++ {
			cell := b.Cells[row][column]
			if cell == Empty {
				continue
			}
			if b.runOf(cell, row, column, 0, 1) ||
				b.runOf(cell, row, column, 1, 0) ||
				b.runOf(cell, row, column, -1, -1) ||
				b.runOf(cell, row, column, -1, 1) {
				color, _ := cell.Color()
				return FinishedBy(color)
			}
		}
	}
	return InProgress
}

func (b *Board) runOf(cell Cell, row, column, dRow, dColumn int) bool {
	for i := 1; i < meta.CONNECT; i++ {
		r, c := row+i*dRow, column+i*dColumn
		if r < 0 || r >= b.Rows || c < 0 || c >= b.Columns {
			return false
		}
		if b.Cells[r][c] != cell {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	cells := make([][]Cell, len(b.Cells))
	for r, row := range b.Cells {
		cells[r] = make([]Cell, len(row))
		copy(cells[r], row)
	}
	full := make([]bool, len(b.Full))
	copy(full, b.Full)

	return &Board{
		Rows:    b.Rows,
		Columns: b.Columns,
		Cells:   cells,
		Full:    full,
	}
}

// Equal reports whether both boards hold the same cells and flags.
func (b *Board) Equal(other *Board) bool {
	if other == nil || b.Rows != other.Rows || b.Columns != other.Columns {
		return false
	}
	for r := range b.Cells {
		for c := range b.Cells[r] {
			if b.Cells[r][c] != other.Cells[r][c] {
				return false
			}
		}
	}
	for c := range b.Full {
		if b.Full[c] != other.Full[c] {
			return false
		}
	}
	return true
}

func (b *Board) String() string {
	var sb strings.Builder
	for _, row := range b.Cells {
		for _, cell := range row {
			sb.WriteString(cell.String())
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	return sb.String()
}
