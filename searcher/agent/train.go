package agent

import (
	"context"
	"math"

	"mcts/experiments/metrics"
	"mcts/game"
	"mcts/searcher"

	"golang.org/x/exp/rand"
)

type trainingAgent struct {
	mcts        *searcher.MCTS
	temperature float64
	rng         *rand.Rand
}

// NewTrainingAgent returns a new agent for self-play during training. Moves
// are sampled from the visit policy sharpened by 1/temperature; a temperature
// of 0 always plays the most visited move.
func NewTrainingAgent(mcts *searcher.MCTS, temperature float64, seed uint64) Agent {
	return &trainingAgent{
		mcts:        mcts,
		temperature: temperature,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (a *trainingAgent) FindMove(ctx context.Context, state game.State, updates []searcher.Segment) (game.Move, metrics.SearchMetric, error) {
	result, err := a.mcts.Search(ctx, state, updates)
	if err != nil {
		return nil, metrics.SearchMetric{}, err
	}

	moves := state.LegalMoves()
	if a.temperature <= 0 {
		return findMax(result.Policy, moves), result.Metric, nil
	}
	policy := adjustTemperature(result.Policy, a.temperature)
	return sample(policy, moves, a.rng.Float64()), result.Metric, nil
}

func adjustTemperature(policy map[game.Move]float64, temperature float64) map[game.Move]float64 {
	// Scale by the largest share so the most visited move keeps a weight of 1
	// and small temperatures cannot underflow every weight to 0
	maxVisit := 0.0
	for _, visit := range policy {
		maxVisit = math.Max(maxVisit, visit)
	}
	adjusted := make(map[game.Move]float64, len(policy))
	if maxVisit == 0 {
		return adjusted
	}

	exponent := 1.0 / temperature
	sum := 0.0
	for move, visit := range policy {
		prob := math.Pow(visit/maxVisit, exponent)
		sum += prob
		adjusted[move] = prob
	}
	// Normalize
	for move := range adjusted {
		adjusted[move] /= sum
	}
	return adjusted
}

// sample walks moves in legal-move order until the cumulative probability
// passes sampled
func sample(policy map[game.Move]float64, moves []game.Move, sampled float64) game.Move {
	cumulative := 0.0
	var lastMove game.Move
	for _, move := range moves {
		prob, ok := policy[move]
		if !ok || prob == 0 {
			continue
		}
		lastMove = move
		cumulative += prob
		if sampled < cumulative {
			return move
		}
	}
	return lastMove // Fallback in case of rounding errors
}
