package searcher

import (
	"errors"
	"fmt"

	"connect4/game"
)

var ErrNoMoves = errors.New("no legal moves from root")

// Task is a unit of distributable work: a second-ply node, the board
// positioned at that node and the node's coordinates in the root's
// children-of-children.
type Task struct {
	Node  *Node
	Board *game.Board
	I, J  int
}

func NewTask(node *Node, board *game.Board, i, j int) Task {
	return Task{Node: node, Board: board, I: i, J: j}
}

// Slot identifies a task by its coordinates.
type Slot struct {
	I, J int
}

func (t Task) Slot() Slot {
	return Slot{I: t.I, J: t.J}
}

func (s Slot) String() string {
	return fmt.Sprintf("(%d, %d)", s.I, s.J)
}

// Partition returns one task per second-ply node of root that is still in
// progress, in (i, j) order. The board must be positioned at root; every task
// carries a clone advanced through both plies and a bare copy of the node, so
// a deeper local expansion never leaks into the worker's tree.
func Partition(root *Node, board *game.Board) []Task {
	tasks := []Task{}
	for i, child := range root.Children {
		if child.Status.Finished {
			continue
		}
		tasks = partitionChild(tasks, child, board, i)
	}
	return tasks
}

func partitionChild(tasks []Task, child *Node, board *game.Board, i int) []Task {
	release, err := board.Play(child.Column, child.Color)
	if err != nil {
		return tasks
	}
	defer release()

	for j, grandChild := range child.Children {
		if grandChild.Status.Finished {
			continue
		}
		if task, ok := newTaskAt(grandChild, board, i, j); ok {
			tasks = append(tasks, task)
		}
	}
	return tasks
}

func newTaskAt(node *Node, board *game.Board, i, j int) (Task, bool) {
	release, err := board.Play(node.Column, node.Color)
	if err != nil {
		return Task{}, false
	}
	defer release()

	stub := &Node{
		Color:  node.Color,
		Column: node.Column,
		Status: node.Status,
	}
	return NewTask(stub, board.Clone(), i, j), true
}

// Merge places every result into its slot of root, replacing the stub node.
func Merge(root *Node, results []Task) error {
	merged := make(map[Slot]bool, len(results))
	for _, result := range results {
		slot := result.Slot()
		if merged[slot] {
			return fmt.Errorf("duplicate result for slot %s", slot)
		}
		if result.Node == nil {
			return fmt.Errorf("result for slot %s has no node", slot)
		}
		if slot.I < 0 || slot.I >= len(root.Children) {
			return fmt.Errorf("result slot %s out of range: root has %d children", slot, len(root.Children))
		}
		child := root.Children[slot.I]
		if slot.J < 0 || slot.J >= len(child.Children) {
			return fmt.Errorf("result slot %s out of range: child has %d children", slot, len(child.Children))
		}
		child.Children[slot.J] = result.Node
		merged[slot] = true
	}
	return nil
}
