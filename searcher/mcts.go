package searcher

import (
	"context"
	"fmt"
	"math"
	"time"

	"mcts/experiments/metrics"
	"mcts/game"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"
)

type Option func(mcts *MCTS)

// Segment is one move played since the previous search, with the hash of the
// state it led to
type Segment struct {
	Move      game.Move
	StateHash game.StateHash
}

// Result summarizes a completed search
type Result struct {
	Move       game.Move
	Policy     map[game.Move]float64 // Share of root visits per move
	Visits     int                   // Root visits
	Value      float64               // Mean reward of Move for the player to move
	PV         []game.Move
	StopReason StopReason
	Metric     metrics.SearchMetric
}

// MCTS runs single-threaded UCT searches. An MCTS instance is not safe for
// concurrent use.
type MCTS struct {
	iterations  int
	duration    time.Duration
	exploration float64
	policy      RolloutPolicy
	seed        uint64
	seeded      bool
	reuse       bool
	tree        *Tree
	metrics     metrics.Collector
	logger      zerolog.Logger
}

func WithIterations(iterations int) Option {
	return func(m *MCTS) {
		if iterations > 0 {
			m.iterations = iterations
		}
	}
}

func WithDuration(duration time.Duration) Option {
	return func(m *MCTS) {
		if duration > 0 {
			m.duration = duration
		}
	}
}

func WithExploration(c float64) Option {
	return func(m *MCTS) {
		if c >= 0 {
			m.exploration = c
		}
	}
}

func WithRolloutPolicy(policy RolloutPolicy) Option {
	return func(m *MCTS) {
		if policy != nil {
			m.policy = policy
		}
	}
}

// WithSeed makes the default random rollout reproducible
func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.seed = seed
		m.seeded = true
	}
}

// WithTreeReuse keeps the subtree of the position reached between searches
// instead of rebuilding the tree every turn
func WithTreeReuse() Option {
	return func(m *MCTS) {
		m.reuse = true
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(m *MCTS) {
		m.logger = logger
	}
}

func NewMCTS(options ...Option) *MCTS {
	m := &MCTS{ // Default values
		exploration: DefaultExploration,
		metrics:     metrics.NewDummyCollector(),
		logger:      log.Logger,
	}
	for _, option := range options {
		option(m)
	}
	if m.iterations <= 0 && m.duration <= 0 {
		panic("Must specify search iterations or duration")
	}
	if m.policy == nil {
		if !m.seeded {
			m.seed = frand.Uint64n(math.MaxUint64)
		}
		m.policy = NewRandomRollout(m.seed)
	}
	return m
}

// ChooseMove returns the most visited move at the root after searching from state
func (m *MCTS) ChooseMove(ctx context.Context, state game.State) (game.Move, error) {
	result, err := m.Search(ctx, state, nil)
	if err != nil {
		return nil, err
	}
	return result.Move, nil
}

// Search runs whole iterations from state until the iteration budget is
// used, the time budget has passed or ctx is done. ctx is only checked
// between iterations. history lists the moves played since the previous
// search and is only used with tree reuse.
func (m *MCTS) Search(ctx context.Context, state game.State, history []Segment) (Result, error) {
	if state.IsTerminal() {
		return Result{}, ErrNoMove
	}

	m.findRoot(state, history)
	m.metrics.Start(m.iterations, m.duration, m.exploration)

	start := time.Now()
	var reason StopReason
	for i := 0; ; i++ {
		reason = m.stopReason(ctx, i, time.Since(start))
		if reason != StopNone {
			break
		}
		if err := m.iterate(); err != nil {
			return Result{}, err
		}
		m.metrics.AddEpisode()
	}

	tree := m.tree
	root := tree.Root()
	if tree.IsLeaf(root) {
		return Result{}, fmt.Errorf("search stopped before the first iteration: %w", ctx.Err())
	}

	best := tree.BestChild(root, ByVisits{})
	stats := tree.Stats(best)
	rootVisits := tree.Stats(root).Visits
	result := Result{
		Move:       stats.Move,
		Policy:     m.rootPolicy(root),
		Visits:     rootVisits,
		Value:      stats.Mean(),
		PV:         tree.PrincipalVariation(),
		StopReason: reason,
		Metric:     m.metrics.Complete(tree.Size(), tree.MaxDepth()),
	}

	m.logger.Debug().
		Str("move", result.Move.String()).
		Int("visits", result.Visits).
		Float64("value", result.Value).
		Int("tree_size", tree.Size()).
		Stringer("stop", reason).
		Msg("search complete")

	return result, nil
}

func (m *MCTS) stopReason(ctx context.Context, iteration int, elapsed time.Duration) StopReason {
	reason := StopNone
	if ctx.Err() != nil {
		reason |= StopCancelled
	}
	if m.iterations > 0 && iteration >= m.iterations {
		reason |= StopIterations
	}
	// At least one iteration runs so a tiny time budget still yields a move
	if m.duration > 0 && iteration > 0 && elapsed >= m.duration {
		reason |= StopDuration
	}
	return reason
}

// findRoot reuses the subtree reached by history when tree reuse is enabled
// and the subtree's root matches state, and starts a fresh tree otherwise
func (m *MCTS) findRoot(state game.State, history []Segment) {
	if m.reuse && m.tree != nil {
		if m.tree.Reroot(history) {
			hash := m.tree.State(m.tree.Root()).Hash()
			if hash == state.Hash() {
				m.metrics.SetTreeReset(false)
				return
			}
			m.logger.Warn().Msgf("reused root's state hash %d does not match state hash %d", hash, state.Hash())
		}
	}

	m.tree = NewTree(state)
	m.metrics.SetTreeReset(true)
}

// iterate runs selection, expansion, simulation and backpropagation once
func (m *MCTS) iterate() error {
	tree := m.tree
	leaf := tree.selectLeaf(m.exploration)

	// Terminal nodes and unvisited leaves are simulated in place; anything
	// else is expanded and simulated from its first child
	target := leaf
	if !tree.IsTerminal(leaf) && (leaf == tree.Root() || tree.nodes[leaf].visits > 0) {
		if err := tree.Expand(leaf); err != nil {
			return err
		}
		target = tree.nodes[leaf].children[0]
	}

	outcome, err := m.simulate(target)
	if err != nil {
		return err
	}
	tree.backpropagate(target, outcome)
	return nil
}

func (m *MCTS) simulate(id NodeID) (game.Outcome, error) {
	state := m.tree.State(id)
	if state.IsTerminal() {
		return state.Outcome(), nil
	}
	return m.policy.Rollout(state)
}

// rootPolicy returns each root move's share of the root visits
func (m *MCTS) rootPolicy(root NodeID) map[game.Move]float64 {
	tree := m.tree
	total := 0
	for _, child := range tree.nodes[root].children {
		total += tree.nodes[child].visits
	}

	policy := make(map[game.Move]float64, len(tree.nodes[root].children))
	for _, child := range tree.nodes[root].children {
		n := tree.nodes[child]
		if total > 0 {
			policy[n.move] = float64(n.visits) / float64(total)
		}
	}
	return policy
}

// Tree exposes the tree of the latest search
func (m *MCTS) Tree() *Tree {
	return m.tree
}
