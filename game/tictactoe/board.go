package tictactoe

import (
	"errors"
	"strings"
)

const Size = 3

var (
	ErrOutOfBounds  = errors.New("index out of bound")
	ErrNonEmptyCell = errors.New("cannot mark a non empty cell")
)

// Cell represents a single square of the board
type Cell int8

const (
	Empty Cell = iota
	X
	O
)

func (c Cell) String() string {
	switch c {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return " "
	}
}

// Board represents a 3x3 tic-tac-toe board. The zero value is an empty board.
type Board struct {
	cells [Size][Size]Cell
}

// Mark places c at (row, col)
func (b *Board) Mark(c Cell, row, col int) error {
	if !inBounds(row, col) {
		return ErrOutOfBounds
	}
	if b.cells[row][col] != Empty {
		return ErrNonEmptyCell
	}
	b.cells[row][col] = c
	return nil
}

// Cell returns the cell at (row, col)
func (b *Board) Cell(row, col int) (Cell, error) {
	if !inBounds(row, col) {
		return Empty, ErrOutOfBounds
	}
	return b.cells[row][col], nil
}

func (b *Board) count(c Cell) int {
	n := 0
	for row := range b.cells {
		for col := range b.cells[row] {
			if b.cells[row][col] == c {
				n++
			}
		}
	}
	return n
}

// hasLine reports whether c occupies every cell of some win path
func (b *Board) hasLine(c Cell) bool {
	for _, path := range winPaths {
		n := 0
		for _, coord := range path {
			if b.cells[coord[0]][coord[1]] == c {
				n++
			}
		}
		if n == Size {
			return true
		}
	}
	return false
}

func inBounds(row, col int) bool {
	return row >= 0 && row < Size && col >= 0 && col < Size
}

// Rows, columns and diagonals; a player owning all three cells of a path wins
var winPaths = [8][3][2]int{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// Status scans every win path. The game is tied once the board is full and
// no one has three in a row.
func (b *Board) Status() Status {
	foundEmpty := false
	for _, path := range winPaths {
		xs, os := 0, 0
		for _, coord := range path {
			switch b.cells[coord[0]][coord[1]] {
			case X:
				xs++
			case O:
				os++
			}
		}
		switch {
		case xs == Size:
			return XWon
		case os == Size:
			return OWon
		case xs+os < Size:
			foundEmpty = true
		}
	}
	if !foundEmpty {
		return Tie
	}
	return Ongoing
}

func (b Board) String() string {
	var sb strings.Builder
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			sb.WriteString(" ")
			sb.WriteString(b.cells[row][col].String())
			if col < Size-1 {
				sb.WriteString(" |")
			} else {
				sb.WriteString(" ")
			}
		}
		if row < Size-1 {
			sb.WriteString("\n-----------\n")
		}
	}
	return sb.String()
}
