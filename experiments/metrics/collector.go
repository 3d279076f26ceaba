package metrics

import (
	"time"

	"mcts/game"
)

type SearchMetric struct {
	Iterations  int           // Iteration budget
	Budget      time.Duration // Time budget
	Exploration float64
	Duration    time.Duration
	Episodes    int
	TreeSize    int
	MaxDepth    int
	IsTreeReset bool
}

type MoveMetric struct {
	Step   int
	Player game.Player
	Move   string
	SearchMetric
}

type GameMetric struct {
	StartingAgent int // Agent index playing first
	Outcome       game.Outcome
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
	TotalMoves    int
}

type Collector interface {
	Start(iterations int, budget time.Duration, exploration float64)
	SetTreeReset(value bool)
	AddEpisode()
	Complete(treeSize, maxDepth int) SearchMetric
}

// collector is owned by a single search and is not safe for concurrent use
type collector struct {
	iterations  int
	budget      time.Duration
	exploration float64
	startTime   time.Time
	episodes    int
	isTreeReset bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) SetTreeReset(value bool) {
	m.isTreeReset = value
}

func (m *collector) Start(iterations int, budget time.Duration, exploration float64) {
	m.startTime = time.Now()
	m.iterations = iterations
	m.budget = budget
	m.exploration = exploration
	m.episodes = 0
}

func (m *collector) AddEpisode() {
	m.episodes++
}

func (m *collector) Complete(treeSize, maxDepth int) SearchMetric {
	return SearchMetric{
		Iterations:  m.iterations,
		Budget:      m.budget,
		Exploration: m.exploration,
		Duration:    time.Since(m.startTime),
		Episodes:    m.episodes,
		TreeSize:    treeSize,
		MaxDepth:    maxDepth,
		IsTreeReset: m.isTreeReset,
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(int, time.Duration, float64) {}
func (m *dummyCollector) SetTreeReset(bool)                 {}
func (m *dummyCollector) AddEpisode()                       {}
func (m *dummyCollector) Complete(int, int) SearchMetric    { return SearchMetric{} }
