package tictactoe

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"

	"mcts/game"
)

var ErrGameOver = errors.New("cannot play a terminated game")

// Status represents the state of the game
type Status int8

const (
	Ongoing Status = iota
	XWon
	OWon
	Tie
)

func (s Status) String() string {
	switch s {
	case XWon:
		return "X won"
	case OWon:
		return "O won"
	case Tie:
		return "Tie"
	default:
		return "Ongoing"
	}
}

// Move marks the cell at (Row, Col) for the player to move
type Move struct {
	Row int
	Col int
}

func (m Move) String() string {
	return fmt.Sprintf("%d,%d", m.Row, m.Col)
}

// GameState is an immutable snapshot of a game: the board, whose turn it is
// and whether the game is over. X moves first and plays as game.PlayerA.
type GameState struct {
	board  Board
	turn   Cell
	status Status
}

var _ game.State = (*GameState)(nil)

// NewGameState returns the empty board with X to move
func NewGameState() *GameState {
	return &GameState{turn: X}
}

func (gs *GameState) Board() Board {
	return gs.board
}

func (gs *GameState) Turn() Cell {
	return gs.turn
}

func (gs *GameState) Status() Status {
	return gs.status
}

// Mark plays one turn as the current player at (row, col), returning the new state
func (gs *GameState) Mark(row, col int) (*GameState, error) {
	if gs.status != Ongoing {
		return nil, ErrGameOver
	}
	next := *gs
	if err := next.board.Mark(gs.turn, row, col); err != nil {
		return nil, err
	}
	next.status = next.board.Status()
	next.turn = opponent(gs.turn)
	return &next, nil
}

func (gs *GameState) Player() game.Player {
	return toPlayer(gs.turn)
}

// LegalMoves enumerates the empty cells in row-major order
func (gs *GameState) LegalMoves() []game.Move {
	if gs.status != Ongoing {
		return nil
	}
	moves := make([]game.Move, 0, Size*Size)
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if gs.board.cells[row][col] == Empty {
				moves = append(moves, Move{Row: row, Col: col})
			}
		}
	}
	return moves
}

func (gs *GameState) Play(move game.Move) (game.State, error) {
	m, ok := move.(Move)
	if !ok {
		return nil, fmt.Errorf("unexpected move type %T", move)
	}
	next, err := gs.Mark(m.Row, m.Col)
	if err != nil {
		return nil, fmt.Errorf("cannot play %v: %w", m, err)
	}
	return next, nil
}

func (gs *GameState) IsTerminal() bool {
	return gs.status != Ongoing
}

func (gs *GameState) Outcome() game.Outcome {
	switch gs.status {
	case XWon:
		return game.WinA
	case OWon:
		return game.WinB
	case Tie:
		return game.Draw
	default:
		return game.Undecided
	}
}

func (gs *GameState) Hash() game.StateHash {
	hasher := fnv.New64a()

	binary.Write(hasher, binary.LittleEndian, int8(gs.turn))
	for row := range gs.board.cells {
		for col := range gs.board.cells[row] {
			binary.Write(hasher, binary.LittleEndian, int8(gs.board.cells[row][col]))
		}
	}

	return game.StateHash(hasher.Sum64())
}

func (gs *GameState) String() string {
	return gs.board.String()
}

// Parse builds a state from 9 cells in row-major order. 'X' and 'O' mark
// pieces; '.', '_' and '-' mark empty cells; whitespace, '|' and '/' are ignored.
// The player to move is inferred from the piece counts.
func Parse(s string) (*GameState, error) {
	gs := NewGameState()
	i := 0
	for _, r := range strings.ToUpper(s) {
		var c Cell
		switch r {
		case 'X':
			c = X
		case 'O':
			c = O
		case '.', '_', '-':
			c = Empty
		case ' ', '\t', '\n', '|', '/':
			continue
		default:
			return nil, fmt.Errorf("unexpected board character %q", r)
		}
		if i >= Size*Size {
			return nil, fmt.Errorf("board has more than %d cells", Size*Size)
		}
		gs.board.cells[i/Size][i%Size] = c
		i++
	}
	if i != Size*Size {
		return nil, fmt.Errorf("board has %d cells, want %d", i, Size*Size)
	}

	xs, os := gs.board.count(X), gs.board.count(O)
	switch xs - os {
	case 0:
		gs.turn = X
	case 1:
		gs.turn = O
	default:
		return nil, fmt.Errorf("unreachable position with %d X and %d O", xs, os)
	}

	// The winner moved last, so X wins with one piece more and O with as many
	xLine, oLine := gs.board.hasLine(X), gs.board.hasLine(O)
	switch {
	case xLine && oLine:
		return nil, errors.New("unreachable position where both players have three in a row")
	case xLine && xs == os:
		return nil, errors.New("unreachable position where O moved after X won")
	case oLine && xs > os:
		return nil, errors.New("unreachable position where X moved after O won")
	}
	gs.status = gs.board.Status()
	return gs, nil
}

// ParseMove parses a human-entered "row_index, col_index" pair
func ParseMove(input string) (Move, error) {
	parts := strings.Split(strings.TrimSpace(input), ",")
	if len(parts) != 2 {
		return Move{}, errors.New("number of comma separated non-negative numbers must be 2")
	}
	row, rowErr := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, strconv.IntSize-1)
	col, colErr := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, strconv.IntSize-1)
	if rowErr != nil || colErr != nil {
		return Move{}, errors.New("must enter valid non-negative numbers separated by a comma")
	}
	return Move{Row: int(row), Col: int(col)}, nil
}

func opponent(c Cell) Cell {
	if c == X {
		return O
	}
	return X
}

func toPlayer(c Cell) game.Player {
	switch c {
	case X:
		return game.PlayerA
	case O:
		return game.PlayerB
	default:
		return game.NoPlayer
	}
}
