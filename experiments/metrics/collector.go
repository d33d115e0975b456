package metrics

import (
	"sync/atomic"
	"time"
)

// TurnMetric describes one coordinator turn: how many tasks were produced and
// which ranks evaluated them.
type TurnMetric struct {
	Turn              int
	Size              int // Process group size
	Tasks             int
	Dispatched        int
	Duration          time.Duration
	PerRank           []int // Results received, indexed by rank
	DispatchedPerRank []int // Tasks sent, indexed by rank; inline evaluations count for the coordinator
}

type GameMetric struct {
	ID        string // uuid
	Size      int
	Winner    string // Color or "Draw"
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Turns     int
}

type Collector interface {
	Start(turn, size, tasks int)
	AddDispatched(rank int)
	AddResult(rank int)
	Complete() TurnMetric
}

type collector struct {
	turn       int
	size       int
	tasks      int
	startTime  time.Time
	dispatched        atomic.Int32
	perRank           []atomic.Int32
	dispatchedPerRank []atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(turn, size, tasks int) {
	m.startTime = time.Now()
	m.turn = turn
	m.size = size
	m.tasks = tasks
	m.dispatched.Store(0)
	m.perRank = make([]atomic.Int32, size)
	m.dispatchedPerRank = make([]atomic.Int32, size)
}

// AddDispatched counts every dispatch, even to a rank outside the group.
func (m *collector) AddDispatched(rank int) {
	m.dispatched.Add(1)
	if rank >= 0 && rank < len(m.dispatchedPerRank) {
		m.dispatchedPerRank[rank].Add(1)
	}
}

func (m *collector) AddResult(rank int) {
	if rank < 0 || rank >= len(m.perRank) {
		return
	}
	m.perRank[rank].Add(1)
}

func load(counters []atomic.Int32) []int {
	counts := make([]int, len(counters))
	for rank := range counters {
		counts[rank] = int(counters[rank].Load())
	}
	return counts
}

func (m *collector) Complete() TurnMetric {
	return TurnMetric{
		Turn:              m.turn,
		Size:              m.size,
		Tasks:             m.tasks,
		Dispatched:        int(m.dispatched.Load()),
		Duration:          time.Since(m.startTime),
		PerRank:           load(m.perRank),
		DispatchedPerRank: load(m.dispatchedPerRank),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(turn, size, tasks int) {}
func (m *dummyCollector) AddDispatched(rank int)      {}
func (m *dummyCollector) AddResult(rank int)          {}
func (m *dummyCollector) Complete() TurnMetric        { return TurnMetric{} }
