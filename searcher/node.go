package searcher

import (
	"connect4/game"
)

// Node is one ply of the search tree. Color is the color that played Column
// to reach this node. Children are ordered by column.
type Node struct {
	Color     game.Color
	Column    int
	Status    game.Status
	Value     float64
	Evaluated bool // Value is only meaningful once evaluated
	Children  []*Node
}

// NewRoot returns the node reached by color playing column.
func NewRoot(color game.Color, column int, status game.Status) *Node {
	return &Node{
		Color:  color,
		Column: column,
		Status: status,
	}
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// BuildTree expands the node with one child per legal column, played by the
// opponent of n.Color. Finished children are never expanded. Recursion stops
// once currentDepth exceeds maxDepth. The board must be positioned at n and is
// restored before BuildTree returns.
func (n *Node) BuildTree(board *game.Board, maxDepth, currentDepth int) {
	if currentDepth > maxDepth {
		return
	}

	for column := 0; column < board.Columns; column++ {
		if !board.IsMoveLegal(column) {
			continue
		}
		n.expand(board, column, maxDepth, currentDepth)
	}
}

func (n *Node) expand(board *game.Board, column, maxDepth, currentDepth int) {
	color := n.Color.Invert()
	release, err := board.Play(column, color)
	if err != nil {
		return
	}
	defer release()

	child := &Node{
		Color:  color,
		Column: column,
		Status: board.Status(),
	}
	n.Children = append(n.Children, child)

	if child.Status.Finished {
		return
	}
	child.BuildTree(board, maxDepth, currentDepth+1)
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	count := 1
	for _, child := range n.Children {
		count += child.Count()
	}
	return count
}
