package searcher

import (
	"connect4/game"
	"connect4/utils"
)

// Decision is the move chosen from a root and the value of every first-ply child.
type Decision struct {
	Column int
	Value  float64
	Values []float64 // Indexed like root.Children
}

// Decide values every child of root and picks the column of the child with
// the greatest value; the first child wins ties. The board must be positioned
// at root.
func Decide(root *Node, board *game.Board, cpu, player game.Color) (Decision, error) {
	if root.IsLeaf() {
		return Decision{}, ErrNoMoves
	}

	values := make([]float64, len(root.Children))
	for i, child := range root.Children {
		child.valueAfterMove(board, cpu, player)
		values[i] = child.Value
	}

	best := utils.ArgMax(values)
	return Decision{
		Column: root.Children[best].Column,
		Value:  values[best],
		Values: values,
	}, nil
}
