package searcher

import (
	"errors"
	"math"
	"strings"
)

// Hyperparameters for MCTS

var DefaultExploration = math.Sqrt2 // Exploration constant C

var (
	ErrNoMove      = errors.New("no legal move available")
	ErrIllegalMove = errors.New("illegal move from game state")
)

// ucb1 = rewards/visits + c*sqrt(ln(parentVisits)/visits)
func ucb1(rewards float64, visits, parentVisits int, c float64) float64 {
	if visits == 0 { // Prevent division by zero
		panic("cannot compute UCB: 0 visits")
	}
	if parentVisits < visits {
		panic("cannot compute UCB: child has more visits than its parent")
	}

	n := float64(visits)
	return rewards/n + c*math.Sqrt(math.Log(float64(parentVisits))/n)
}

// StopReason records every budget that was exhausted when a search stopped
type StopReason int

const StopNone StopReason = 0

const (
	StopIterations StopReason = 1 << iota // Iteration budget used up
	StopDuration                          // Time budget used up
	StopCancelled                         // Context done
)

func (sr StopReason) String() string {
	if sr == StopNone {
		return "None"
	}

	reasons := []struct {
		flag StopReason
		name string
	}{
		{StopIterations, "Iterations"},
		{StopDuration, "Duration"},
		{StopCancelled, "Cancelled"},
	}

	var names []string
	for _, r := range reasons {
		if sr&r.flag == r.flag {
			names = append(names, r.name)
		}
	}
	return strings.Join(names, "|")
}
