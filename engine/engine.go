package engine

import (
	"context"
	"errors"

	"mcts/experiments/metrics"
	"mcts/game"
)

// MaxMoves bounds a game for games that never run out of moves
const MaxMoves = 10000

var (
	ErrIllegalMove = errors.New("agent played an illegal move")
	ErrMaxMoves    = errors.New("game did not finish within the move limit")
)

type Engine interface {
	// Run plays a game till it is over or a max number of moves is reached
	Run(ctx context.Context) (game.Outcome, metrics.GameMetric, []metrics.MoveMetric, error)
}
