package client

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connect4/agent"
	"connect4/communication"
	"connect4/communication/server"
	"connect4/engine"
	"connect4/experiments/metrics"
	"connect4/gamemaster"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// startServer serves a group of size ranks and returns its websocket url.
func startServer(t *testing.T, size int) (*server.ServerCommunicator, string) {
	t.Helper()
	sc, err := server.NewServerCommunicator(size)
	require.NoError(t, err)
	srv := httptest.NewServer(sc.Handler())
	t.Cleanup(srv.Close)
	t.Cleanup(func() { sc.Close() })
	return sc, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestClientCommunicator(t *testing.T) {
	sc, err := server.NewServerCommunicator(2)
	require.NoError(t, err)
	srv := httptest.NewServer(sc.Handler())
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cc, err := Dial(ctx, wsURL, 1, WithHandshakeTimeout(time.Second))
	require.NoError(t, err)
	defer cc.Close()
	require.NoError(t, sc.WaitForWorkers(ctx))

	t.Run("group shape comes from the handshake", func(t *testing.T) {
		require.Equal(t, 1, cc.Rank())
		require.Equal(t, 2, cc.Size())
	})

	t.Run("worker to coordinator", func(t *testing.T) {
		require.NoError(t, cc.Send(ctx, 0, communication.Result, []byte{7}))

		msg, err := sc.Receive(ctx)
		require.NoError(t, err)
		require.Equal(t, communication.Message{Source: 1, Tag: communication.Result, Payload: []byte{7}}, msg)
	})

	t.Run("coordinator to worker", func(t *testing.T) {
		require.NoError(t, sc.Send(ctx, 1, communication.Assignment, []byte{1, 2}))

		msg, err := cc.Receive(ctx)
		require.NoError(t, err)
		require.Equal(t, 0, msg.Source)
		require.Equal(t, communication.Assignment, msg.Tag)
		require.Equal(t, []byte{1, 2}, msg.Payload)
	})

	t.Run("only the coordinator is reachable", func(t *testing.T) {
		require.Error(t, cc.Send(ctx, 1, communication.RequestWork, nil))
	})

	t.Run("coordinator close ends the worker", func(t *testing.T) {
		require.NoError(t, sc.Close())

		_, err := cc.Receive(ctx)
		require.ErrorIs(t, err, communication.ErrClosed)
	})
}

func TestCloseWithUndrainedInbox(t *testing.T) {
	sc, wsURL := startServer(t, 2)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cc, err := Dial(ctx, wsURL, 1)
	require.NoError(t, err)
	require.NoError(t, sc.WaitForWorkers(ctx))
	for i := 0; i < 2*cap(cc.inbox); i++ {
		require.NoError(t, sc.Send(ctx, 1, communication.Assignment, []byte{byte(i)}))
	}
	require.Eventually(t, func() bool { return len(cc.inbox) == cap(cc.inbox) }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, cc.Close())

	select {
	case <-cc.readDone:
	case <-time.After(5 * time.Second):
		t.Fatal("read loop did not exit after close")
	}
	for err == nil {
		_, err = cc.Receive(ctx)
	}
	require.ErrorIs(t, err, communication.ErrClosed, "Buffered messages drain before the close is reported")
}

func TestGameOverWebsocket(t *testing.T) {
	const size = 3
	sc, wsURL := startServer(t, size)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var workers errgroup.Group
	for rank := 1; rank < size; rank++ {
		cc, err := Dial(ctx, wsURL, rank)
		require.NoError(t, err)
		defer cc.Close()
		worker := agent.NewWorker(cc, agent.WithDepth(2, 3))
		workers.Go(func() error { return worker.Run(ctx) })
	}
	require.NoError(t, sc.WaitForWorkers(ctx))

	master := gamemaster.NewMaster(sc, gamemaster.WithMetrics(metrics.NewCollector()))
	winner, gameMetric, turnMetrics, err := engine.NewLocalEngine(master, engine.NewRandomOpponent(5)).Run(ctx)
	require.NoError(t, err)
	require.NoError(t, master.Shutdown(ctx))
	require.NoError(t, workers.Wait())

	require.True(t, master.Over())
	require.NotEmpty(t, winner)
	require.Positive(t, gameMetric.Turns)
	require.NotEmpty(t, turnMetrics)
	for _, tm := range turnMetrics {
		require.Equal(t, size, tm.Size)
		require.Equal(t, tm.Tasks, tm.PerRank[1]+tm.PerRank[2], "Every task should come back from a worker")
		require.Zero(t, tm.PerRank[0])
	}
}

func TestDialRejected(t *testing.T) {
	sc, err := server.NewServerCommunicator(2)
	require.NoError(t, err)
	srv := httptest.NewServer(sc.Handler())
	defer srv.Close()
	defer sc.Close()

	_, err = Dial(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"), 5)

	require.Error(t, err)
	require.Contains(t, err.Error(), "400")
}
