package searcher

import (
	"fmt"

	"mcts/game"

	"golang.org/x/exp/rand"
)

// RolloutPolicy plays a non-terminal state out to the end of the game
type RolloutPolicy interface {
	Rollout(state game.State) (game.Outcome, error)
}

// RandomRollout plays uniformly random legal moves
type RandomRollout struct {
	rng *rand.Rand
}

func NewRandomRollout(seed uint64) *RandomRollout {
	return &RandomRollout{rng: rand.New(rand.NewSource(seed))}
}

func (r *RandomRollout) Rollout(state game.State) (game.Outcome, error) {
	return playout(state, func(moves []game.Move) game.Move {
		return moves[r.rng.Intn(len(moves))]
	})
}

// FirstMoveRollout always plays the first legal move
type FirstMoveRollout struct{}

func (FirstMoveRollout) Rollout(state game.State) (game.Outcome, error) {
	return playout(state, func(moves []game.Move) game.Move {
		return moves[0]
	})
}

// FixedOutcomeRollout reports Outcome without playing
type FixedOutcomeRollout struct {
	Outcome game.Outcome
}

func (f FixedOutcomeRollout) Rollout(game.State) (game.Outcome, error) {
	return f.Outcome, nil
}

// playout only ever plays moves handed out by the state itself
func playout(state game.State, pick func([]game.Move) game.Move) (game.Outcome, error) {
	for !state.IsTerminal() {
		moves := state.LegalMoves()
		if len(moves) == 0 {
			return game.Undecided, fmt.Errorf("non-terminal state has no legal moves: %w", ErrIllegalMove)
		}

		next, err := state.Play(pick(moves))
		if err != nil {
			return game.Undecided, fmt.Errorf("%w: %w", ErrIllegalMove, err)
		}
		state = next
	}
	return state.Outcome(), nil
}
