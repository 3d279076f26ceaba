package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"time"

	"mcts/engine"
	"mcts/experiments"
	"mcts/game/tictactoe"
	"mcts/meta"
	"mcts/searcher"
	"mcts/searcher/agent"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"
)

type config struct {
	mode        string
	iterations  int
	duration    time.Duration
	exploration float64
	seed        uint64
	reuse       bool
	rollout     string
	human       string
	board       string
	temperature float64
	name        string
	games       int
	parallel    int
	out         string
}

func main() {
	var cfg config
	flag.StringVar(&cfg.mode, "mode", "play", "One of play, selfplay or experiment")
	flag.IntVar(&cfg.iterations, "iterations", meta.Iterations, "Number of MCTS iterations per move")
	flag.DurationVar(&cfg.duration, "duration", meta.Duration, "Time budget per move (overrides iterations when set)")
	flag.Float64Var(&cfg.exploration, "c", searcher.DefaultExploration, "UCB1 exploration constant")
	flag.Uint64Var(&cfg.seed, "seed", 0, "Seed for rollouts and sampling (0 picks a random seed)")
	flag.BoolVar(&cfg.reuse, "reuse", false, "Reuse the search tree across turns")
	flag.StringVar(&cfg.rollout, "rollout", "random", "Rollout policy: random or tactical")
	flag.StringVar(&cfg.human, "human", "x", "Mark played by the human in play mode (x or o)")
	flag.StringVar(&cfg.board, "board", "", "Starting board, e.g. \"XX./OO./...\"")
	flag.Float64Var(&cfg.temperature, "temperature", meta.Temperature, "Move sampling temperature in selfplay mode (0 plays the most visited move)")
	flag.StringVar(&cfg.name, "name", "baseline", "Experiment: baseline, exploration, budget, reuse, rollout or throughput")
	flag.IntVar(&cfg.games, "games", meta.Games, "Games per experiment matchup")
	flag.IntVar(&cfg.parallel, "parallel", meta.Parallel, "Experiment games played at once")
	flag.StringVar(&cfg.out, "out", meta.OutDir, "Directory for experiment records")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q: %v\n", *logLevel, err)
		os.Exit(2)
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	if cfg.seed == 0 {
		cfg.seed = frand.Uint64n(math.MaxUint64) + 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cfg.mode {
	case "play":
		err = play(ctx, cfg)
	case "selfplay":
		err = selfPlay(ctx, cfg)
	case "experiment":
		err = experiment(ctx, cfg)
	default:
		err = fmt.Errorf("unknown mode %q", cfg.mode)
	}
	if err != nil {
		log.Fatal().Err(err).Msgf("%s failed", cfg.mode)
	}
}

func startingState(board string) (*tictactoe.GameState, error) {
	if board == "" {
		return tictactoe.NewGameState(), nil
	}
	return tictactoe.Parse(board)
}

func createMCTS(cfg config, seed uint64) *searcher.MCTS {
	options := []searcher.Option{
		searcher.WithExploration(cfg.exploration),
		searcher.WithSeed(seed),
		searcher.WithMetrics(),
	}
	if cfg.duration > 0 {
		options = append(options, searcher.WithDuration(cfg.duration))
	} else {
		options = append(options, searcher.WithIterations(cfg.iterations))
	}
	if cfg.reuse {
		options = append(options, searcher.WithTreeReuse())
	}
	if cfg.rollout == "tactical" {
		options = append(options, searcher.WithRolloutPolicy(tictactoe.NewTacticalRollout(seed)))
	}
	return searcher.NewMCTS(options...)
}

// play pits the human at the terminal against an MCTS agent
func play(ctx context.Context, cfg config) error {
	state, err := startingState(cfg.board)
	if err != nil {
		return err
	}

	human := agent.NewHumanAgent(os.Stdin, os.Stdout)
	computer := agent.NewEvaluationAgent(createMCTS(cfg, cfg.seed))
	var agents []agent.Agent
	switch strings.ToLower(cfg.human) {
	case "x":
		agents = []agent.Agent{human, computer}
	case "o":
		agents = []agent.Agent{computer, human}
	default:
		return fmt.Errorf("human must play x or o, got %q", cfg.human)
	}

	e := engine.NewLocalEngine(state, agents, engine.WithRenderer(engine.NewTerminalRenderer(os.Stdout)))
	outcome, gameMetric, _, err := e.Run(ctx)
	if err != nil {
		return err
	}
	log.Info().Stringer("outcome", outcome).Dur("duration", gameMetric.Duration).Msg("game over")
	return nil
}

// selfPlay lets two MCTS agents sample moves against each other
func selfPlay(ctx context.Context, cfg config) error {
	state, err := startingState(cfg.board)
	if err != nil {
		return err
	}

	agents := []agent.Agent{
		agent.NewTrainingAgent(createMCTS(cfg, cfg.seed), cfg.temperature, cfg.seed+1),
		agent.NewTrainingAgent(createMCTS(cfg, cfg.seed+2), cfg.temperature, cfg.seed+3),
	}
	e := engine.NewLocalEngine(state, agents, engine.WithRenderer(engine.NewTerminalRenderer(os.Stdout)))
	outcome, gameMetric, moveMetrics, err := e.Run(ctx)
	if err != nil {
		return err
	}

	for _, mm := range moveMetrics {
		log.Info().
			Int("step", mm.Step).
			Stringer("player", mm.Player).
			Str("move", mm.Move).
			Int("episodes", mm.Episodes).
			Int("tree_size", mm.TreeSize).
			Bool("tree_reset", mm.IsTreeReset).
			Msg("move")
	}
	log.Info().Stringer("outcome", outcome).Int("moves", gameMetric.TotalMoves).Dur("duration", gameMetric.Duration).Msg("game over")
	return nil
}

func experiment(ctx context.Context, cfg config) error {
	e, err := experiments.Named(cfg.name, cfg.games, cfg.parallel, cfg.out, cfg.seed)
	if err != nil {
		return err
	}

	summary, err := experiments.Run(ctx, e)
	if err != nil {
		return err
	}
	for _, config := range e.Configs {
		log.Info().Int("agent", config.ID).Int("wins", summary.Wins[config.ID]).Msgf("%+v", config)
	}
	log.Info().Int("draws", summary.Draws).Str("dir", summary.Writer.Dir()).Msg("experiment complete")
	return nil
}
