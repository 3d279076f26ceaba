package tictactoe

import (
	"fmt"

	"mcts/game"

	"golang.org/x/exp/rand"
)

// TacticalRollout plays games out by completing its own line when it can,
// blocking the opponent's line otherwise and picking a random cell last
type TacticalRollout struct {
	rng *rand.Rand
}

func NewTacticalRollout(seed uint64) *TacticalRollout {
	return &TacticalRollout{rng: rand.New(rand.NewSource(seed))}
}

func (r *TacticalRollout) Rollout(state game.State) (game.Outcome, error) {
	gs, ok := state.(*GameState)
	if !ok {
		return game.Undecided, fmt.Errorf("tactical rollout cannot play %T", state)
	}

	for !gs.IsTerminal() {
		move := r.pick(gs)
		next, err := gs.Mark(move.Row, move.Col)
		if err != nil {
			return game.Undecided, fmt.Errorf("cannot play %v: %w", move, err)
		}
		gs = next
	}
	return gs.Outcome(), nil
}

func (r *TacticalRollout) pick(gs *GameState) Move {
	if move, ok := gs.board.completing(gs.turn); ok {
		return move
	}
	if move, ok := gs.board.completing(opponent(gs.turn)); ok {
		return move
	}
	moves := gs.LegalMoves()
	return moves[r.rng.Intn(len(moves))].(Move)
}

// completing finds the empty cell of the first win path holding two of c
func (b *Board) completing(c Cell) (Move, bool) {
	for _, path := range winPaths {
		owned := 0
		var empty *[2]int
		for i, coord := range path {
			switch b.cells[coord[0]][coord[1]] {
			case c:
				owned++
			case Empty:
				empty = &path[i]
			}
		}
		if owned == Size-1 && empty != nil {
			return Move{Row: empty[0], Col: empty[1]}, true
		}
	}
	return Move{}, false
}
