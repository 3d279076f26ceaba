package agent

import (
	"context"

	"mcts/experiments/metrics"
	"mcts/game"
	"mcts/searcher"

	"golang.org/x/exp/rand"
)

type randomAgent struct {
	rng *rand.Rand
}

// NewRandomAgent returns a baseline agent playing uniformly random legal moves
func NewRandomAgent(seed uint64) Agent {
	return &randomAgent{rng: rand.New(rand.NewSource(seed))}
}

func (a *randomAgent) FindMove(_ context.Context, state game.State, _ []searcher.Segment) (game.Move, metrics.SearchMetric, error) {
	moves := state.LegalMoves()
	if state.IsTerminal() || len(moves) == 0 {
		return nil, metrics.SearchMetric{}, searcher.ErrNoMove
	}
	return moves[a.rng.Intn(len(moves))], metrics.SearchMetric{}, nil
}
