package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"connect4/communication"
	"connect4/meta"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const closeWait = time.Second

// ServerCommunicator is the coordinator's end of a websocket process group.
// Workers connect to /connect?rank=N, one connection per worker rank.
type ServerCommunicator struct {
	size      int
	inbox     chan communication.Message
	mutex     sync.RWMutex
	peers     map[int]*peer // nil value while a rank is upgrading
	joined    chan struct{}
	joinOnce  sync.Once
	done      chan struct{}
	closeOnce sync.Once
	upgrader  websocket.Upgrader
}

type peer struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// NewServerCommunicator initializes a coordinator for a group of size ranks.
func NewServerCommunicator(size int) (*ServerCommunicator, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid group size %d", size)
	}
	sc := &ServerCommunicator{
		size:   size,
		inbox:  make(chan communication.Message, 2*size),
		peers:  make(map[int]*peer, size-1),
		joined: make(chan struct{}),
		done:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	if size == 1 {
		sc.joinOnce.Do(func() { close(sc.joined) })
	}
	return sc, nil
}

// Handler returns the HTTP routes of the coordinator.
func (sc *ServerCommunicator) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", sc.handleHealth)
	r.Get("/connect", sc.handleConnect)
	return r
}

func (sc *ServerCommunicator) handleHealth(w http.ResponseWriter, r *http.Request) {
	sc.mutex.RLock()
	connected := sc.connected()
	sc.mutex.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Rank      int `json:"rank"`
		Size      int `json:"size"`
		Connected int `json:"connected"`
	}{Rank: sc.Rank(), Size: sc.size, Connected: connected})
}

func (sc *ServerCommunicator) handleConnect(w http.ResponseWriter, r *http.Request) {
	rank, err := strconv.Atoi(r.URL.Query().Get("rank"))
	if err != nil || rank <= meta.MASTER_RANK || rank >= sc.size {
		http.Error(w, fmt.Sprintf("rank must be in 1..%d", sc.size-1), http.StatusBadRequest)
		return
	}
	if !sc.reserve(rank) {
		http.Error(w, fmt.Sprintf("rank %d already connected", rank), http.StatusConflict)
		return
	}

	header := http.Header{}
	header.Set(communication.GroupSizeHeader, strconv.Itoa(sc.size))
	conn, err := sc.upgrader.Upgrade(w, r, header)
	if err != nil {
		sc.release(rank)
		log.Warn().Err(err).Int("rank", rank).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	sc.register(rank, conn)
	defer sc.release(rank)
	log.Info().Int("rank", rank).Str("remote", r.RemoteAddr).Msg("worker connected")

	sc.readLoop(rank, conn)
}

func (sc *ServerCommunicator) readLoop(rank int, conn *websocket.Conn) {
	for {
		messageType, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info().Int("rank", rank).Msg("worker disconnected")
			} else {
				log.Warn().Err(err).Int("rank", rank).Msg("worker connection lost")
			}
			return
		}
		if messageType != websocket.BinaryMessage {
			continue
		}
		tag, payload, err := communication.DecodeFrame(frame)
		if err != nil {
			log.Error().Err(err).Int("rank", rank).Msg("dropping worker with malformed frame")
			return
		}

		select {
		case sc.inbox <- communication.Message{Source: rank, Tag: tag, Payload: payload}:
		case <-sc.done:
			return
		}
	}
}

func (sc *ServerCommunicator) reserve(rank int) bool {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	if _, ok := sc.peers[rank]; ok {
		return false
	}
	sc.peers[rank] = nil
	return true
}

func (sc *ServerCommunicator) register(rank int, conn *websocket.Conn) {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	sc.peers[rank] = &peer{conn: conn}
	if sc.connected() == sc.size-1 {
		sc.joinOnce.Do(func() { close(sc.joined) })
	}
}

// connected must be called with the mutex held.
func (sc *ServerCommunicator) connected() int {
	count := 0
	for _, p := range sc.peers {
		if p != nil {
			count++
		}
	}
	return count
}

func (sc *ServerCommunicator) release(rank int) {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	delete(sc.peers, rank)
}

// WaitForWorkers blocks until every worker rank has connected once.
func (sc *ServerCommunicator) WaitForWorkers(ctx context.Context) error {
	select {
	case <-sc.joined:
		return nil
	case <-sc.done:
		return communication.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (sc *ServerCommunicator) Rank() int {
	return meta.MASTER_RANK
}

func (sc *ServerCommunicator) Size() int {
	return sc.size
}

func (sc *ServerCommunicator) Send(ctx context.Context, dest int, tag communication.Tag, payload []byte) error {
	sc.mutex.RLock()
	p := sc.peers[dest]
	sc.mutex.RUnlock()
	if p == nil {
		return fmt.Errorf("send %s to rank %d: not connected", tag, dest)
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		p.conn.SetWriteDeadline(deadline)
		defer p.conn.SetWriteDeadline(time.Time{})
	}
	if err := p.conn.WriteMessage(websocket.BinaryMessage, communication.EncodeFrame(tag, payload)); err != nil {
		return fmt.Errorf("send %s to rank %d: %w", tag, dest, err)
	}
	return nil
}

func (sc *ServerCommunicator) Receive(ctx context.Context) (communication.Message, error) {
	select {
	case msg := <-sc.inbox:
		return msg, nil
	case <-sc.done:
		return communication.Message{}, communication.ErrClosed
	case <-ctx.Done():
		return communication.Message{}, ctx.Err()
	}
}

// Close says goodbye to every connected worker and stops receiving.
func (sc *ServerCommunicator) Close() error {
	sc.closeOnce.Do(func() {
		close(sc.done)
		sc.mutex.RLock()
		defer sc.mutex.RUnlock()
		for _, p := range sc.peers {
			if p == nil {
				continue
			}
			p.writeMu.Lock()
			p.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game over"),
				time.Now().Add(closeWait))
			p.writeMu.Unlock()
		}
	})
	return nil
}
