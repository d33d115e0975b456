package communication

import (
	"testing"

	"connect4/game"
	"connect4/searcher"

	"github.com/stretchr/testify/require"
)

func TestTaskPayload(t *testing.T) {
	t.Run("task survives the wire with its tree and board", func(t *testing.T) {
		b := game.NewDefaultBoard()
		require.NoError(t, b.MakeMove(3, game.Yellow))
		node := &searcher.Node{Color: game.Yellow, Column: 3, Status: b.Status()}
		node.BuildTree(b, 1, 0)
		node.CalculateValue(b, game.Red, game.Yellow)
		task := searcher.NewTask(node, b.Clone(), 4, 2)

		payload, err := Encode(task)
		require.NoError(t, err)
		got, err := Decode[searcher.Task](payload)
		require.NoError(t, err)

		require.Equal(t, 4, got.I)
		require.Equal(t, 2, got.J)
		require.True(t, b.Equal(got.Board), "Board should decode to an equal board")
		require.Equal(t, node.Count(), got.Node.Count())
		require.True(t, got.Node.Evaluated)
		require.Equal(t, node.Value, got.Node.Value)
		require.Equal(t, node.Children[6].Children[5].Column, got.Node.Children[6].Children[5].Column)
	})

	t.Run("finished status keeps its winner", func(t *testing.T) {
		node := &searcher.Node{Color: game.Yellow, Status: game.FinishedBy(game.Yellow), Value: searcher.Loss, Evaluated: true}

		payload, err := Encode(searcher.NewTask(node, game.NewDefaultBoard(), 0, 0))
		require.NoError(t, err)
		got, err := Decode[searcher.Task](payload)
		require.NoError(t, err)

		require.Equal(t, game.FinishedBy(game.Yellow), got.Node.Status)
		require.Equal(t, searcher.Loss, got.Node.Value)
	})

	t.Run("corrupt payload fails to decode", func(t *testing.T) {
		_, err := Decode[searcher.Task]([]byte{0xde, 0xad, 0xbe, 0xef})

		require.Error(t, err)
	})
}

func TestFrame(t *testing.T) {
	t.Run("tag and payload round trip", func(t *testing.T) {
		frame := EncodeFrame(Result, []byte{1, 2, 3})

		tag, payload, err := DecodeFrame(frame)

		require.NoError(t, err)
		require.Equal(t, Result, tag)
		require.Equal(t, []byte{1, 2, 3}, payload)
	})

	t.Run("empty payload", func(t *testing.T) {
		tag, payload, err := DecodeFrame(EncodeFrame(RequestWork, nil))

		require.NoError(t, err)
		require.Equal(t, RequestWork, tag)
		require.Empty(t, payload)
	})

	t.Run("empty frame is malformed", func(t *testing.T) {
		_, _, err := DecodeFrame(nil)

		require.ErrorIs(t, err, ErrMalformedFrame)
	})

	t.Run("unknown tag is malformed", func(t *testing.T) {
		_, _, err := DecodeFrame([]byte{42})

		require.ErrorIs(t, err, ErrMalformedFrame)
	})
}

func TestTag(t *testing.T) {
	for _, tag := range []Tag{RequestWork, Assignment, Result, Shutdown} {
		require.True(t, tag.Valid(), "%s should be valid", tag)
	}
	require.False(t, Tag(0).Valid())
	require.Equal(t, "tag(9)", Tag(9).String())
}
