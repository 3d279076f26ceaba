package agent

import (
	"context"

	"mcts/experiments/metrics"
	"mcts/game"
	"mcts/searcher"
)

type Agent interface {
	// FindMove returns a move and performance metrics (if collected) from the
	// search process. updates lists the moves played since the agent's last call.
	FindMove(ctx context.Context, state game.State, updates []searcher.Segment) (game.Move, metrics.SearchMetric, error)
}
