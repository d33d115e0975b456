package player

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"connect4/game"
	"connect4/gamemaster"
)

// Console is a human playing through line-based text input and output.
type Console struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

// ReadColumn prompts until a line holds a column index. It returns io.EOF
// once the input ends.
func (c *Console) ReadColumn() (int, error) {
	for {
		fmt.Fprint(c.out, "Enter column index: ")
		if !c.scanner.Scan() {
			if err := c.scanner.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		column, err := strconv.Atoi(strings.TrimSpace(c.scanner.Text()))
		if err != nil || column < 0 {
			fmt.Fprintln(c.out, "Invalid input")
			continue
		}
		return column, nil
	}
}

func (c *Console) Rejected(column int, err error) {
	fmt.Fprintln(c.out, "Illegal move")
}

func (c *Console) Show(board *game.Board) {
	fmt.Fprint(c.out, board)
}

// Report prints how long the coordinator computed and the value of each of its candidate moves.
func (c *Console) Report(turn gamemaster.Turn) {
	fmt.Fprintln(c.out, turn.Elapsed)
	values := make([]string, len(turn.Values))
	for i, value := range turn.Values {
		values[i] = strconv.FormatFloat(value, 'f', -1, 64)
	}
	fmt.Fprintln(c.out, strings.Join(values, ", "))
}

func (c *Console) Announce(status game.Status) {
	if !status.Finished {
		fmt.Fprintln(c.out, "Draw")
		return
	}
	fmt.Fprintf(c.out, "Winner is %s\n", status.Winner)
}
