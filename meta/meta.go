// meta/meta.go
package meta

import "time"

// Iterations defines the default number of MCTS iterations per move.
const Iterations = 1000

// Duration defines the default time budget per move; 0 means iterations only.
const Duration time.Duration = 0

// Games defines the default number of games per experiment matchup.
const Games = 10

// Parallel defines how many experiment games run at once.
const Parallel = 4

// OutDir defines where experiment records are stored.
const OutDir = "experiments"

// Temperature defines the sampling temperature of self-play agents.
const Temperature = 1.0
