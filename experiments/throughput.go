package experiments

import (
	"time"

	"mcts/experiments/metrics"
	"mcts/searcher"
)

// throughputExperiment plays time-budgeted agents against themselves, for
// the same playing strength and similar game length, to measure how many
// iterations fit in a budget
func throughputExperiment() Experiment {
	configs := []metrics.AgentConfig{}
	matchUps := [][2]metrics.AgentConfig{}
	for i, duration := range []time.Duration{time.Millisecond, 5 * time.Millisecond, 25 * time.Millisecond} {
		config := metrics.AgentConfig{ID: i + 1, Kind: metrics.MCTSAgent, Duration: duration, Exploration: searcher.DefaultExploration}
		configs = append(configs, config)
		matchUps = append(matchUps, [2]metrics.AgentConfig{config, config})
	}
	return Experiment{Name: "throughput", Configs: configs, MatchUps: matchUps}
}

// throughput returns the searched episodes per second over every move that ran a search
func throughput(records []metrics.MoveRecord) float64 {
	episodes := 0
	var elapsed time.Duration
	for _, record := range records {
		if record.Episodes == 0 {
			continue
		}
		episodes += record.Episodes
		elapsed += record.Duration
	}
	if elapsed <= 0 {
		return 0
	}
	return float64(episodes) / elapsed.Seconds()
}
