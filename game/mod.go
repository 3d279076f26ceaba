package game

import "fmt"

// Any game that aims to be playable by an MCTS agent should implement these
// interfaces: a two-player, zero-sum, perfect-information game with a finite
// number of moves from every state.

type Move interface {
	fmt.Stringer
}

type StateHash uint64

// State should be immutable - operations on State always return a new copy
type State interface {
	// Player returns the player to move
	Player() Player
	// LegalMoves returns the moves playable from this state, in a deterministic
	// order. It is empty if and only if the state is terminal.
	LegalMoves() []Move
	Play(Move) (State, error)
	IsTerminal() bool
	// Outcome is only meaningful once IsTerminal reports true
	Outcome() Outcome
	Hash() StateHash
}

type Player int8

const (
	NoPlayer Player = iota
	PlayerA         // Moves first
	PlayerB
)

// Other returns the opponent of p
func (p Player) Other() Player {
	switch p {
	case PlayerA:
		return PlayerB
	case PlayerB:
		return PlayerA
	default:
		return NoPlayer
	}
}

func (p Player) String() string {
	switch p {
	case PlayerA:
		return "A"
	case PlayerB:
		return "B"
	default:
		return "-"
	}
}

type Outcome int8

const (
	Undecided Outcome = iota
	WinA
	WinB
	Draw
)

const (
	Win  = 1.0
	Loss = -Win
	Tie  = 0.0
)

// Winner returns the winning player, or NoPlayer for a draw or an undecided game
func (o Outcome) Winner() Player {
	switch o {
	case WinA:
		return PlayerA
	case WinB:
		return PlayerB
	default:
		return NoPlayer
	}
}

// RewardFor scores the outcome from p's perspective: Win, Loss or Tie
func (o Outcome) RewardFor(p Player) float64 {
	winner := o.Winner()
	switch {
	case winner == NoPlayer:
		return Tie
	case winner == p:
		return Win
	default:
		return Loss
	}
}

func (o Outcome) String() string {
	switch o {
	case WinA:
		return "WinA"
	case WinB:
		return "WinB"
	case Draw:
		return "Draw"
	default:
		return "Undecided"
	}
}

// Result maps a winner to its outcome; NoPlayer maps to Draw
func Result(winner Player) Outcome {
	switch winner {
	case PlayerA:
		return WinA
	case PlayerB:
		return WinB
	default:
		return Draw
	}
}
