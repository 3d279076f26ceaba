package engine

import (
	"fmt"
	"io"
	"strings"

	"mcts/game"
	"mcts/game/tictactoe"

	"github.com/muesli/termenv"
)

type Renderer interface {
	Render(state game.State)
	GameOver(state game.State, outcome game.Outcome)
}

type noRenderer struct{}

func (noRenderer) Render(game.State)                 {}
func (noRenderer) GameOver(game.State, game.Outcome) {}

// TerminalRenderer prints every position with coloured marks
type TerminalRenderer struct {
	out *termenv.Output
}

func NewTerminalRenderer(w io.Writer, options ...termenv.OutputOption) *TerminalRenderer {
	return &TerminalRenderer{out: termenv.NewOutput(w, options...)}
}

func (r *TerminalRenderer) Render(state game.State) {
	fmt.Fprintln(r.out, r.colorize(fmt.Sprint(state)))
}

func (r *TerminalRenderer) GameOver(state game.State, outcome game.Outcome) {
	fmt.Fprintln(r.out, "Game Over!")
	if gs, ok := state.(*tictactoe.GameState); ok {
		fmt.Fprintln(r.out, gs.Status())
		return
	}
	fmt.Fprintln(r.out, outcome)
}

func (r *TerminalRenderer) colorize(board string) string {
	x := r.out.String("X").Foreground(r.out.Color("#E88388")).Bold().String()
	o := r.out.String("O").Foreground(r.out.Color("#66C2CD")).Bold().String()

	var sb strings.Builder
	for _, c := range board {
		switch c {
		case 'X':
			sb.WriteString(x)
		case 'O':
			sb.WriteString(o)
		default:
			sb.WriteRune(c)
		}
	}
	return sb.String()
}
