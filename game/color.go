package game

// Color is the color of a player's tokens.
type Color uint8

const (
	Red Color = iota
	Yellow
)

// Invert returns the opponent's color.
func (c Color) Invert() Color {
	if c == Red {
		return Yellow
	}
	return Red
}

func (c Color) String() string {
	switch c {
	case Red:
		return "Red"
	case Yellow:
		return "Yellow"
	default:
		return "Unknown"
	}
}

// Cell is a single board field, either Empty or occupied by a token.
type Cell uint8

const Empty Cell = 0

// Occupied returns the cell holding a token of the given color.
func Occupied(c Color) Cell {
	return Cell(c) + 1
}

// Color returns the token color of an occupied cell.
func (c Cell) Color() (Color, bool) {
	if c == Empty {
		return 0, false
	}
	return Color(c - 1), true
}

func (c Cell) String() string {
	color, ok := c.Color()
	if !ok {
		return "⚪"
	}
	if color == Red {
		return "🔴"
	}
	return "🟡"
}

// Status is the outcome of a board: in progress, or finished with a winner.
type Status struct {
	Finished bool
	Winner   Color
}

// InProgress is the status of a board without four in a row.
var InProgress = Status{}

// FinishedBy returns the status of a game won by color c.
func FinishedBy(c Color) Status {
	return Status{Finished: true, Winner: c}
}

func (s Status) String() string {
	if !s.Finished {
		return "InProgress"
	}
	return "Finished(" + s.Winner.String() + ")"
}
