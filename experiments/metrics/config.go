package metrics

import "time"

type AgentKind string

const (
	MCTSAgent   AgentKind = "mcts"
	RandomAgent AgentKind = "random"
)

type RolloutKind string

const (
	RandomRollout   RolloutKind = "random"
	TacticalRollout RolloutKind = "tactical"
)

// AgentConfig describes one agent taking part in an experiment
type AgentConfig struct {
	ID          int
	Kind        AgentKind
	Iterations  int
	Duration    time.Duration
	Exploration float64
	Reuse       bool
	Rollout     RolloutKind // Random when empty
	Temperature float64     // Samples moves from the visit policy when positive
}
