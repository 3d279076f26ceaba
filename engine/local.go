package engine

import (
	"context"
	"fmt"
	"time"

	"mcts/experiments/metrics"
	"mcts/game"
	"mcts/searcher"
	"mcts/searcher/agent"
	"mcts/utils"

	"github.com/rs/zerolog/log"
)

type Option func(e *LocalEngine)

// LocalEngine alternates in-process agents until the game is over.
// agents[0] plays game.PlayerA and agents[1] plays game.PlayerB.
type LocalEngine struct {
	state    game.State
	agents   []agent.Agent
	renderer Renderer
	maxMoves int
}

func WithRenderer(renderer Renderer) Option {
	return func(e *LocalEngine) {
		if renderer != nil {
			e.renderer = renderer
		}
	}
}

func WithMaxMoves(maxMoves int) Option {
	return func(e *LocalEngine) {
		if maxMoves > 0 {
			e.maxMoves = maxMoves
		}
	}
}

func NewLocalEngine(state game.State, agents []agent.Agent, options ...Option) *LocalEngine {
	if len(agents) != 2 {
		panic("need exactly two agents")
	}

	e := &LocalEngine{
		state:    state,
		agents:   agents,
		renderer: noRenderer{},
		maxMoves: MaxMoves,
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// State returns the current game state
func (e *LocalEngine) State() game.State {
	return e.state
}

// Run executes the entire game loop until the game is over. Every agent is
// handed the moves played since its previous turn so it can reuse its tree.
func (e *LocalEngine) Run(ctx context.Context) (game.Outcome, metrics.GameMetric, []metrics.MoveMetric, error) {
	updates := make([][]searcher.Segment, len(e.agents))
	gameMetric := metrics.GameMetric{
		StartingAgent: agentIndex(e.state.Player()),
		StartTime:     time.Now(),
	}
	var moveMetrics []metrics.MoveMetric

	log.Debug().Msgf("player %v is starting", e.state.Player())
	e.renderer.Render(e.state)

	step := 0
	for !e.state.IsTerminal() {
		if step >= e.maxMoves {
			return game.Undecided, gameMetric, moveMetrics, ErrMaxMoves
		}

		player := e.state.Player()
		i := agentIndex(player)
		move, searchMetric, err := e.agents[i].FindMove(ctx, e.state, updates[i])
		if err != nil {
			return game.Undecided, gameMetric, moveMetrics, fmt.Errorf("agent %d failed to find a move: %w", i, err)
		}
		if !utils.Contains(e.state.LegalMoves(), move) {
			return game.Undecided, gameMetric, moveMetrics, fmt.Errorf("%w: %v by player %v", ErrIllegalMove, move, player)
		}
		next, err := e.state.Play(move)
		if err != nil {
			return game.Undecided, gameMetric, moveMetrics, fmt.Errorf("%w: %w", ErrIllegalMove, err)
		}

		updates[i] = nil
		segment := searcher.Segment{Move: move, StateHash: next.Hash()}
		for j := range updates {
			updates[j] = append(updates[j], segment)
		}

		step++
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       player,
			Move:         move.String(),
			SearchMetric: searchMetric,
		})
		log.Debug().Int("step", step).Stringer("player", player).Stringer("move", move).Msg("move played")

		e.state = next
		e.renderer.Render(e.state)
	}

	outcome := e.state.Outcome()
	e.renderer.GameOver(e.state, outcome)

	gameMetric.Outcome = outcome
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = step
	return outcome, gameMetric, moveMetrics, nil
}

func agentIndex(player game.Player) int {
	switch player {
	case game.PlayerA:
		return 0
	case game.PlayerB:
		return 1
	default:
		panic(fmt.Sprintf("no agent plays %v", player))
	}
}
