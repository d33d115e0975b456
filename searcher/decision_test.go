package searcher

import (
	"testing"

	"connect4/game"

	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	t.Run("taking an immediate win", func(t *testing.T) {
		b := game.NewDefaultBoard()
		for c := 0; c < 3; c++ {
			mustMove(t, b, c, cpu)
		}
		mustMove(t, b, 0, player)
		mustMove(t, b, 6, player)
		before := b.Clone()
		root := shallowTree(t, b, player, 6)

		got, err := Decide(root, b, cpu, player)

		require.NoError(t, err)
		require.Equal(t, 3, got.Column)
		require.Equal(t, Win, got.Value)
		require.Len(t, got.Values, 7)
		require.True(t, b.Equal(before), "Board should be restored after deciding")
	})

	t.Run("blocking a threatened loss", func(t *testing.T) {
		b := game.NewDefaultBoard()
		for c := 0; c < 3; c++ {
			mustMove(t, b, c, player)
		}
		mustMove(t, b, 0, cpu)
		mustMove(t, b, 1, cpu)
		mustMove(t, b, 6, cpu)
		root := shallowTree(t, b, player, 2)

		got, err := Decide(root, b, cpu, player)

		require.NoError(t, err)
		require.Equal(t, 3, got.Column)
		for i, v := range got.Values {
			if root.Children[i].Column != 3 {
				require.Equal(t, Loss, v, "Not blocking should lose")
			}
		}
	})

	t.Run("first child wins ties", func(t *testing.T) {
		root := &Node{Color: player, Children: []*Node{
			{Color: cpu, Column: 2, Children: []*Node{valued(player, 0, 0.5)}},
			{Color: cpu, Column: 4, Children: []*Node{valued(player, 0, 0.5)}},
			{Color: cpu, Column: 5, Children: []*Node{valued(player, 0, 0.25)}},
		}}

		got, err := Decide(root, game.NewDefaultBoard(), cpu, player)

		require.NoError(t, err)
		require.Equal(t, 2, got.Column)
		require.Equal(t, []float64{0.5, 0.5, 0.25}, got.Values)
	})

	t.Run("root without children", func(t *testing.T) {
		_, err := Decide(&Node{}, game.NewDefaultBoard(), cpu, player)

		require.ErrorIs(t, err, ErrNoMoves)
	})
}
