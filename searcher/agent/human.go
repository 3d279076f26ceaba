package agent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"mcts/experiments/metrics"
	"mcts/game"
	"mcts/game/tictactoe"
	"mcts/searcher"
)

type humanAgent struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewHumanAgent returns an agent reading tic-tac-toe moves from in, one
// "row_index, col_index" pair per line, and prompting on out
func NewHumanAgent(in io.Reader, out io.Writer) Agent {
	return &humanAgent{in: bufio.NewScanner(in), out: out}
}

func (a *humanAgent) FindMove(ctx context.Context, state game.State, _ []searcher.Segment) (game.Move, metrics.SearchMetric, error) {
	gs, ok := state.(*tictactoe.GameState)
	if !ok {
		return nil, metrics.SearchMetric{}, fmt.Errorf("human agent cannot play %T", state)
	}
	if gs.IsTerminal() {
		return nil, metrics.SearchMetric{}, searcher.ErrNoMove
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, metrics.SearchMetric{}, err
		}

		fmt.Fprintf(a.out, "Select cell for player %v in format row_index, col_index: ", gs.Turn())
		if !a.in.Scan() {
			err := a.in.Err()
			if err == nil {
				err = io.ErrUnexpectedEOF
			}
			return nil, metrics.SearchMetric{}, fmt.Errorf("failed to read move: %w", err)
		}

		move, err := tictactoe.ParseMove(a.in.Text())
		if err != nil {
			fmt.Fprintf(a.out, "%v\n", err)
			continue
		}

		_, err = gs.Mark(move.Row, move.Col)
		switch {
		case err == nil:
			return move, metrics.SearchMetric{}, nil
		case errors.Is(err, tictactoe.ErrOutOfBounds):
			fmt.Fprintln(a.out, "Index out of bound. Try again.")
		case errors.Is(err, tictactoe.ErrNonEmptyCell):
			fmt.Fprintln(a.out, "Cannot mark a non empty cell. Try again.")
		default:
			return nil, metrics.SearchMetric{}, err
		}
	}
}
