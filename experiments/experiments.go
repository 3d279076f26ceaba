package experiments

import (
	"context"
	"fmt"

	"mcts/engine"
	"mcts/experiments/metrics"
	"mcts/game"
	"mcts/game/tictactoe"
	"mcts/meta"
	"mcts/searcher"
	"mcts/searcher/agent"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Experiment plays NumGames games for every matchup. Each game owns its
// agents and their trees, so up to Parallel games run at once.
type Experiment struct {
	Name     string
	Configs  []metrics.AgentConfig
	MatchUps [][2]metrics.AgentConfig
	NumGames int // Per match up
	Parallel int
	OutDir   string
	Seed     uint64
}

// Summary counts game outcomes by agent config ID
type Summary struct {
	Games      int
	Wins       map[int]int
	Draws      int
	Throughput float64 // Episodes per second
	Writer     *metrics.Writer
}

type gameResult struct {
	record metrics.GameRecord
	moves  []metrics.MoveRecord
}

// Named returns one of the predefined experiments
func Named(name string, numGames, parallel int, outDir string, seed uint64) (Experiment, error) {
	var e Experiment
	switch name {
	case "baseline":
		e = baselineExperiment()
	case "exploration":
		e = explorationExperiment()
	case "budget":
		e = budgetExperiment()
	case "reuse":
		e = reuseExperiment()
	case "rollout":
		e = rolloutExperiment()
	case "throughput":
		e = throughputExperiment()
	default:
		return Experiment{}, fmt.Errorf("unknown experiment %q", name)
	}
	e.NumGames = numGames
	e.Parallel = parallel
	e.OutDir = outDir
	e.Seed = seed
	return e, nil
}

// baselineExperiment pairs MCTS agents of growing budgets against a random agent
func baselineExperiment() Experiment {
	random := metrics.AgentConfig{ID: 0, Kind: metrics.RandomAgent}
	configs := []metrics.AgentConfig{
		{ID: 1, Kind: metrics.MCTSAgent, Iterations: 10, Exploration: searcher.DefaultExploration},
		{ID: 2, Kind: metrics.MCTSAgent, Iterations: 100, Exploration: searcher.DefaultExploration},
		{ID: 3, Kind: metrics.MCTSAgent, Iterations: 1000, Exploration: searcher.DefaultExploration},
	}
	return versus("baseline", random, configs)
}

// explorationExperiment pairs agents of different exploration constants against the default one
func explorationExperiment() Experiment {
	baseline := metrics.AgentConfig{ID: 0, Kind: metrics.MCTSAgent, Iterations: meta.Iterations, Exploration: searcher.DefaultExploration}
	configs := []metrics.AgentConfig{}
	for i, c := range []float64{0.25, 0.5, 1, 2, 4} {
		configs = append(configs, metrics.AgentConfig{ID: i + 1, Kind: metrics.MCTSAgent, Iterations: baseline.Iterations, Exploration: c})
	}
	return versus("exploration", baseline, configs)
}

// budgetExperiment pairs agents of different iteration budgets against the default one
func budgetExperiment() Experiment {
	baseline := metrics.AgentConfig{ID: 0, Kind: metrics.MCTSAgent, Iterations: meta.Iterations, Exploration: searcher.DefaultExploration}
	configs := []metrics.AgentConfig{}
	for i, iterations := range []int{25, 100, 400, 1600} {
		configs = append(configs, metrics.AgentConfig{ID: i + 1, Kind: metrics.MCTSAgent, Iterations: iterations, Exploration: searcher.DefaultExploration})
	}
	return versus("budget", baseline, configs)
}

// reuseExperiment pairs tree-reusing agents against rebuilding ones of the same budget
func reuseExperiment() Experiment {
	configs := []metrics.AgentConfig{}
	matchUps := [][2]metrics.AgentConfig{}
	for i, iterations := range []int{50, 200, 800} {
		rebuild := metrics.AgentConfig{ID: 2 * i, Kind: metrics.MCTSAgent, Iterations: iterations, Exploration: searcher.DefaultExploration}
		reuse := rebuild
		reuse.ID++
		reuse.Reuse = true
		configs = append(configs, rebuild, reuse)
		matchUps = append(matchUps, [2]metrics.AgentConfig{rebuild, reuse})
	}
	return Experiment{Name: "reuse", Configs: configs, MatchUps: matchUps}
}

// rolloutExperiment pairs tactical-rollout agents against the default random-rollout one
func rolloutExperiment() Experiment {
	baseline := metrics.AgentConfig{ID: 0, Kind: metrics.MCTSAgent, Iterations: meta.Iterations, Exploration: searcher.DefaultExploration, Rollout: metrics.RandomRollout}
	configs := []metrics.AgentConfig{}
	for i, iterations := range []int{100, meta.Iterations} {
		configs = append(configs, metrics.AgentConfig{ID: i + 1, Kind: metrics.MCTSAgent, Iterations: iterations, Exploration: searcher.DefaultExploration, Rollout: metrics.TacticalRollout})
	}
	return versus("rollout", baseline, configs)
}

func versus(name string, baseline metrics.AgentConfig, configs []metrics.AgentConfig) Experiment {
	matchUps := [][2]metrics.AgentConfig{}
	for _, config := range configs {
		matchUps = append(matchUps, [2]metrics.AgentConfig{baseline, config})
	}
	return Experiment{Name: name, Configs: append(configs, baseline), MatchUps: matchUps}
}

// Run plays every game of e, alternating which agent of a matchup starts,
// and writes the configs, game records and move records under e.OutDir
func Run(ctx context.Context, e Experiment) (Summary, error) {
	if e.NumGames <= 0 {
		return Summary{}, fmt.Errorf("experiment %s needs at least one game per matchup", e.Name)
	}

	log.Info().Msgf("starting %s experiment...", e.Name)

	results := make([]gameResult, len(e.MatchUps)*e.NumGames)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.Parallel, 1))

	for mi, matchup := range e.MatchUps {
		log.Info().Msgf("starting matchup %d of %d between agent1=%+v and agent2=%+v...", mi+1, len(e.MatchUps), matchup[0], matchup[1])

		for i := 0; i < e.NumGames; i++ {
			id := mi*e.NumGames + i + 1
			configA, configB := matchup[0], matchup[1]
			if i%2 == 1 { // Alternate starting agent
				configA, configB = configB, configA
			}

			mi, i := mi, i
			g.Go(func() error {
				seed := e.Seed + uint64(id)*2
				outcome, gameMetric, moveMetrics, err := runGame(ctx, configA, configB, seed)
				if err != nil {
					return fmt.Errorf("game %d failed: %w", id, err)
				}

				result := gameResult{record: metrics.GameRecord{
					ID:         id,
					AgentA:     configA.ID,
					AgentB:     configB.ID,
					GameMetric: gameMetric,
				}}
				for _, mm := range moveMetrics {
					result.moves = append(result.moves, metrics.MoveRecord{Game: id, MoveMetric: mm})
				}
				results[id-1] = result

				log.Info().Msgf("completed matchup %d of %d game %d of %d with outcome: %s", mi+1, len(e.MatchUps), i+1, e.NumGames, outcome)
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	log.Info().Msgf("completed %s experiment", e.Name)

	summary := Summary{Games: len(results), Wins: map[int]int{}}
	gameRecords := make([]metrics.GameRecord, 0, len(results))
	moveRecords := []metrics.MoveRecord{}
	for _, result := range results {
		record := result.record
		switch record.Outcome.Winner() {
		case game.PlayerA:
			summary.Wins[record.AgentA]++
		case game.PlayerB:
			summary.Wins[record.AgentB]++
		default:
			summary.Draws++
		}
		gameRecords = append(gameRecords, record)
		moveRecords = append(moveRecords, result.moves...)
	}

	summary.Throughput = throughput(moveRecords)
	log.Info().Int("games", summary.Games).Int("draws", summary.Draws).Float64("episodes_per_second", summary.Throughput).Msg("summary")

	writer, err := write(e, gameRecords, moveRecords)
	if err != nil {
		return Summary{}, err
	}
	summary.Writer = writer
	return summary, nil
}

func write(e Experiment, gameRecords []metrics.GameRecord, moveRecords []metrics.MoveRecord) (*metrics.Writer, error) {
	// Store experiment metadata
	writer, err := metrics.NewWriter(e.OutDir, e.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create experiment writer: %w", err)
	}

	if err := writer.WriteAgentConfigs(e.Configs); err != nil {
		return nil, fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")

	// Store experiment results
	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return nil, fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteMoveRecords(moveRecords); err != nil {
		return nil, fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Str("dir", writer.Dir()).Msg("stored move records")

	return writer, nil
}

// runGame plays a single tic-tac-toe game; configA's agent plays X
func runGame(ctx context.Context, configA, configB metrics.AgentConfig, seed uint64) (game.Outcome, metrics.GameMetric, []metrics.MoveMetric, error) {
	agents := []agent.Agent{
		CreateAgent(configA, seed),
		CreateAgent(configB, seed+1),
	}
	e := engine.NewLocalEngine(tictactoe.NewGameState(), agents)
	return e.Run(ctx)
}

// CreateAgent builds the agent described by config
func CreateAgent(config metrics.AgentConfig, seed uint64) agent.Agent {
	if config.Kind == metrics.RandomAgent {
		return agent.NewRandomAgent(seed)
	}

	mcts := createMCTS(config, seed)
	if config.Temperature > 0 {
		return agent.NewTrainingAgent(mcts, config.Temperature, seed)
	}
	return agent.NewEvaluationAgent(mcts)
}

func createMCTS(config metrics.AgentConfig, seed uint64) *searcher.MCTS {
	options := []searcher.Option{searcher.WithSeed(seed)}

	if config.Iterations > 0 {
		options = append(options, searcher.WithIterations(config.Iterations))
	}
	if config.Duration > 0 {
		options = append(options, searcher.WithDuration(config.Duration))
	}
	if config.Iterations <= 0 && config.Duration <= 0 {
		options = append(options, searcher.WithIterations(meta.Iterations))
	}
	options = append(options, searcher.WithExploration(config.Exploration))
	if config.Reuse {
		options = append(options, searcher.WithTreeReuse())
	}
	if config.Rollout == metrics.TacticalRollout {
		options = append(options, searcher.WithRolloutPolicy(tictactoe.NewTacticalRollout(seed)))
	}

	options = append(options, searcher.WithMetrics())
	return searcher.NewMCTS(options...)
}
