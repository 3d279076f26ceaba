package agent

import (
	"context"

	"mcts/experiments/metrics"
	"mcts/game"
	"mcts/searcher"
)

type evaluationAgent struct {
	mcts *searcher.MCTS
}

// NewEvaluationAgent returns a new agent for actual game play during evaluation.
func NewEvaluationAgent(mcts *searcher.MCTS) Agent {
	return evaluationAgent{mcts: mcts}
}

func (a evaluationAgent) FindMove(ctx context.Context, state game.State, updates []searcher.Segment) (game.Move, metrics.SearchMetric, error) {
	result, err := a.mcts.Search(ctx, state, updates)
	if err != nil {
		return nil, metrics.SearchMetric{}, err
	}
	return findMax(result.Policy, state.LegalMoves()), result.Metric, nil
}

// findMax scans moves in legal-move order so the first of equally visited
// moves wins
func findMax(policy map[game.Move]float64, moves []game.Move) game.Move {
	var maxMove game.Move
	maxVisit := -1.0
	for _, move := range moves {
		if visit := policy[move]; visit > maxVisit {
			maxVisit = visit
			maxMove = move
		}
	}
	return maxMove
}
