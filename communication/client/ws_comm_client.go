package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"connect4/communication"
	"connect4/meta"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const defaultHandshakeTimeout = 10 * time.Second

type Option func(cc *ClientCommunicator)

// WithHandshakeTimeout bounds the websocket handshake with the coordinator.
func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(cc *ClientCommunicator) {
		if timeout > 0 {
			cc.handshakeTimeout = timeout
		}
	}
}

// ClientCommunicator is a worker's end of a websocket process group. It is
// connected to the coordinator only.
type ClientCommunicator struct {
	rank             int
	size             int
	handshakeTimeout time.Duration
	conn             *websocket.Conn
	writeMu          sync.Mutex
	inbox            chan communication.Message
	readErr          error
	readDone         chan struct{}
	closed           chan struct{}
	closeOnce        sync.Once
}

// Dial joins the group served at serverURL (ws:// or wss://) as rank.
func Dial(ctx context.Context, serverURL string, rank int, options ...Option) (*ClientCommunicator, error) {
	cc := &ClientCommunicator{
		rank:             rank,
		handshakeTimeout: defaultHandshakeTimeout,
		inbox:            make(chan communication.Message, 4),
		readDone:         make(chan struct{}),
		closed:           make(chan struct{}),
	}
	for _, option := range options {
		option(cc)
	}

	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid coordinator url %q: %w", serverURL, err)
	}
	u = u.JoinPath("connect")
	u.RawQuery = url.Values{"rank": {strconv.Itoa(rank)}}.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: cc.handshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to join as rank %d: status %d: %w", rank, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to join as rank %d: %w", rank, err)
	}

	size, err := strconv.Atoi(resp.Header.Get(communication.GroupSizeHeader))
	if err != nil || size <= rank {
		conn.Close()
		return nil, fmt.Errorf("coordinator sent invalid group size %q", resp.Header.Get(communication.GroupSizeHeader))
	}
	cc.size = size
	cc.conn = conn

	go cc.readLoop()
	return cc, nil
}

func (cc *ClientCommunicator) readLoop() {
	defer close(cc.readDone)
	for {
		messageType, frame, err := cc.conn.ReadMessage()
		if err != nil {
			cc.readErr = err
			return
		}
		if messageType != websocket.BinaryMessage {
			continue
		}
		tag, payload, err := communication.DecodeFrame(frame)
		if err != nil {
			cc.readErr = err
			return
		}
		select {
		case cc.inbox <- communication.Message{Source: meta.MASTER_RANK, Tag: tag, Payload: payload}:
		case <-cc.closed:
			cc.readErr = communication.ErrClosed
			return
		}
	}
}

func (cc *ClientCommunicator) Rank() int {
	return cc.rank
}

func (cc *ClientCommunicator) Size() int {
	return cc.size
}

func (cc *ClientCommunicator) Send(ctx context.Context, dest int, tag communication.Tag, payload []byte) error {
	if dest != meta.MASTER_RANK {
		return fmt.Errorf("send %s to rank %d: workers only reach rank %d", tag, dest, meta.MASTER_RANK)
	}

	cc.writeMu.Lock()
	defer cc.writeMu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		cc.conn.SetWriteDeadline(deadline)
		defer cc.conn.SetWriteDeadline(time.Time{})
	}
	if err := cc.conn.WriteMessage(websocket.BinaryMessage, communication.EncodeFrame(tag, payload)); err != nil {
		return fmt.Errorf("send %s: %w", tag, err)
	}
	return nil
}

func (cc *ClientCommunicator) Receive(ctx context.Context) (communication.Message, error) {
	select {
	case msg := <-cc.inbox:
		return msg, nil
	case <-cc.readDone:
		// Drain what arrived before the connection ended
		select {
		case msg := <-cc.inbox:
			return msg, nil
		default:
		}
		if isClosed(cc.closed) || websocket.IsCloseError(cc.readErr, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return communication.Message{}, communication.ErrClosed
		}
		return communication.Message{}, fmt.Errorf("connection to coordinator lost: %w", cc.readErr)
	case <-ctx.Done():
		return communication.Message{}, ctx.Err()
	}
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// Close leaves the group. Messages not yet received are dropped.
func (cc *ClientCommunicator) Close() error {
	var err error
	cc.closeOnce.Do(func() {
		close(cc.closed)
		cc.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = cc.conn.Close()
		log.Debug().Int("rank", cc.rank).Msg("left process group")
	})
	return err
}
