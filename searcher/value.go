package searcher

import (
	"connect4/game"
)

// CalculateValue values the subtree rooted at n bottom-up. Leaves are valued
// by their status: a cpu win is Win, any other win is Loss, and a depth-limit
// leaf is Neutral. Internal nodes combine their children by precedence:
//  1. a child valued Win that was played by cpu
//  2. a child valued Loss that was played by player
//  3. all children valued Win
//  4. all children valued Loss
//  5. the mean of the children's values
//
// Children that are already evaluated are kept as they are. The board must be
// positioned at n; every child's move is applied around its recursive call.
func (n *Node) CalculateValue(board *game.Board, cpu, player game.Color) {
	if n.IsLeaf() {
		n.setValue(leafValue(n.Status, cpu))
		return
	}

	for _, child := range n.Children {
		if !child.Evaluated {
			child.valueAfterMove(board, cpu, player)
		}
	}

	n.setValue(combine(n.Children, cpu, player))
}

func (n *Node) valueAfterMove(board *game.Board, cpu, player game.Color) {
	release, err := board.Play(n.Column, n.Color)
	if err != nil {
		// The board does not track this branch; the value only depends on
		// the stored statuses, so evaluate without moving.
		n.CalculateValue(board, cpu, player)
		return
	}
	defer release()

	n.CalculateValue(board, cpu, player)
}

func (n *Node) setValue(value float64) {
	n.Value = value
	n.Evaluated = true
}

func leafValue(status game.Status, cpu game.Color) float64 {
	if !status.Finished {
		return Neutral
	}
	if status.Winner == cpu {
		return Win
	}
	return Loss
}

func combine(children []*Node, cpu, player game.Color) float64 {
	for _, child := range children {
		if child.Value == Win && child.Color == cpu {
			return Win
		}
	}
	for _, child := range children {
		if child.Value == Loss && child.Color == player {
			return Loss
		}
	}

	allWin, allLoss := true, true
	sum := 0.0
	for _, child := range children {
		if child.Value != Win {
			allWin = false
		}
		if child.Value != Loss {
			allLoss = false
		}
		sum += child.Value
	}

	switch {
	case allWin:
		return Win
	case allLoss:
		return Loss
	default:
		return sum / float64(len(children))
	}
}
