package searcher

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"mcts/game"
	"mcts/game/tictactoe"

	"github.com/stretchr/testify/require"
)

type mockMove int

func (m mockMove) String() string {
	return strconv.Itoa(int(m))
}

// mockState offers moves that all lead to a drawn terminal state, or fail
// with playErr
type mockState struct {
	moves    []game.Move
	playErr  error
	terminal bool
}

func (m mockState) Player() game.Player {
	return game.PlayerA
}

func (m mockState) LegalMoves() []game.Move {
	return m.moves
}

func (m mockState) Play(move game.Move) (game.State, error) {
	if m.playErr != nil {
		return nil, m.playErr
	}
	return mockState{terminal: true}, nil
}

func (m mockState) IsTerminal() bool {
	return m.terminal
}

func (m mockState) Outcome() game.Outcome {
	return game.Draw
}

func (m mockState) Hash() game.StateHash {
	return 0
}

func mustParse(t *testing.T, board string) *tictactoe.GameState {
	t.Helper()
	state, err := tictactoe.Parse(board)
	require.NoError(t, err)
	return state
}

func TestUCB1(t *testing.T) {
	t.Run("computing UCB value", func(t *testing.T) {
		got := ucb1(5.0, 10, 100, math.Sqrt2)

		expected := 5.0/10 + math.Sqrt2*math.Sqrt(math.Log(100)/10.0)
		require.InDelta(t, expected, got, 0.0001, "Should compute q/n + c*sqrt(ln(N)/n)")
	})

	t.Run("panics with zero child visits", func(t *testing.T) {
		require.Panics(t, func() {
			ucb1(5.0, 0, 100, math.Sqrt2)
		}, "Should panic when n is 0")
	})

	t.Run("exploration term increases with parent visits", func(t *testing.T) {
		require.Greater(t, ucb1(5.0, 10, 1000, math.Sqrt2), ucb1(5.0, 10, 100, math.Sqrt2))
	})

	t.Run("exploration term decreases with child visits", func(t *testing.T) {
		require.Greater(t, ucb1(5.0, 10, 100, math.Sqrt2), ucb1(5.0, 20, 100, math.Sqrt2))
	})

	t.Run("zero exploration is pure exploitation", func(t *testing.T) {
		require.Equal(t, 0.5, ucb1(5.0, 10, 100, 0))
	})
}

func TestNewTree(t *testing.T) {
	tree := NewTree(tictactoe.NewGameState())
	root := tree.Root()

	require.Equal(t, 1, tree.Size())
	require.True(t, tree.IsLeaf(root))
	require.False(t, tree.IsTerminal(root))
	require.Equal(t, nilNode, tree.Parent(root))
	require.Equal(t, game.PlayerB, tree.Stats(root).Mover, "Root mover should be the opponent of the player to move")
	require.Zero(t, tree.Stats(root).Visits)
}

func TestTreeExpand(t *testing.T) {
	t.Run("expanding the empty board", func(t *testing.T) {
		tree := NewTree(tictactoe.NewGameState())
		root := tree.Root()

		require.NoError(t, tree.Expand(root))

		children := tree.Children(root)
		require.Len(t, children, 9, "First move has 9 possible choices")
		require.Equal(t, 10, tree.Size())
		require.Equal(t, 1, tree.MaxDepth())

		hashes := map[game.StateHash]struct{}{}
		for i, child := range children {
			stats := tree.Stats(child)
			require.Equal(t, tictactoe.Move{Row: i / 3, Col: i % 3}, stats.Move, "Children should follow legal-move order")
			require.Equal(t, game.PlayerA, stats.Mover)
			require.Equal(t, root, tree.Parent(child))
			require.True(t, tree.IsLeaf(child))

			state := tree.State(child)
			require.Len(t, state.LegalMoves(), 8)
			require.Equal(t, game.PlayerB, state.Player(), "Turn should switch")
			hashes[state.Hash()] = struct{}{}
		}
		require.Len(t, hashes, 9, "Child states should be distinct")
	})

	t.Run("expanding an expanded node panics", func(t *testing.T) {
		tree := NewTree(tictactoe.NewGameState())
		require.NoError(t, tree.Expand(tree.Root()))

		require.Panics(t, func() { _ = tree.Expand(tree.Root()) })
	})

	t.Run("expanding a terminal node panics", func(t *testing.T) {
		tree := NewTree(mustParse(t, "XXX OO. ..."))

		require.Panics(t, func() { _ = tree.Expand(tree.Root()) })
	})

	t.Run("duplicate moves are illegal", func(t *testing.T) {
		tree := NewTree(mockState{moves: []game.Move{mockMove(1), mockMove(1)}})

		err := tree.Expand(tree.Root())
		require.ErrorIs(t, err, ErrIllegalMove)
		require.Equal(t, 1, tree.Size(), "Tree should be untouched")
		require.True(t, tree.IsLeaf(tree.Root()))
	})

	t.Run("moves rejected by the state are illegal", func(t *testing.T) {
		playErr := errors.New("rejected")
		tree := NewTree(mockState{moves: []game.Move{mockMove(1)}, playErr: playErr})

		err := tree.Expand(tree.Root())
		require.ErrorIs(t, err, ErrIllegalMove)
		require.ErrorIs(t, err, playErr)
		require.Equal(t, 1, tree.Size())
	})

	t.Run("non-terminal state without moves is illegal", func(t *testing.T) {
		tree := NewTree(mockState{})

		require.ErrorIs(t, tree.Expand(tree.Root()), ErrIllegalMove)
	})
}

func TestTreeBestChild(t *testing.T) {
	newExpanded := func(t *testing.T) (*Tree, []NodeID) {
		tree := NewTree(tictactoe.NewGameState())
		require.NoError(t, tree.Expand(tree.Root()))
		return tree, tree.Children(tree.Root())
	}

	t.Run("leaf panics", func(t *testing.T) {
		tree := NewTree(tictactoe.NewGameState())
		require.Panics(t, func() { tree.BestChild(tree.Root(), ByVisits{}) })
	})

	t.Run("ties go to the first child", func(t *testing.T) {
		tree, children := newExpanded(t)

		require.Equal(t, children[0], tree.BestChild(tree.Root(), ByVisits{}))

		tree.backpropagate(children[4], game.Draw)
		tree.backpropagate(children[7], game.Draw)
		require.Equal(t, children[4], tree.BestChild(tree.Root(), ByVisits{}))
	})

	t.Run("unvisited children are selected first", func(t *testing.T) {
		tree, children := newExpanded(t)
		tree.backpropagate(children[0], game.WinA)
		tree.backpropagate(children[0], game.WinA)

		require.Equal(t, children[1], tree.BestChild(tree.Root(), ByUCB{C: DefaultExploration}))
	})

	t.Run("UCB prefers higher rewards at equal visits", func(t *testing.T) {
		tree, children := newExpanded(t)
		for i, child := range children {
			outcome := game.WinB
			if i == 5 {
				outcome = game.WinA
			}
			tree.backpropagate(child, outcome)
		}

		require.Equal(t, children[5], tree.BestChild(tree.Root(), ByUCB{C: DefaultExploration}))
		require.Equal(t, children[5], tree.BestChild(tree.Root(), ByMeanReward{}))
	})
}

func TestTreeBackpropagate(t *testing.T) {
	t.Run("rewards are recorded from the perspective of the player who moved in", func(t *testing.T) {
		tree := NewTree(tictactoe.NewGameState())
		root := tree.Root()
		require.NoError(t, tree.Expand(root))
		child := tree.Children(root)[0]
		require.NoError(t, tree.Expand(child))
		grandChild := tree.Children(child)[0]

		tree.backpropagate(grandChild, game.WinA)

		require.Equal(t, game.PlayerB, tree.Stats(grandChild).Mover)
		require.Equal(t, -1.0, tree.Stats(grandChild).Rewards, "WinA is a loss for the O move")
		require.Equal(t, game.PlayerA, tree.Stats(child).Mover)
		require.Equal(t, 1.0, tree.Stats(child).Rewards, "WinA is a win for the X move")
		require.Equal(t, -1.0, tree.Stats(root).Rewards)

		for _, id := range []NodeID{grandChild, child, root} {
			require.Equal(t, 1, tree.Stats(id).Visits)
		}
	})

	t.Run("draws add no reward", func(t *testing.T) {
		tree := NewTree(tictactoe.NewGameState())
		require.NoError(t, tree.Expand(tree.Root()))
		child := tree.Children(tree.Root())[3]

		tree.backpropagate(child, game.Draw)

		require.Equal(t, 0.0, tree.Stats(child).Rewards)
		require.Equal(t, 1, tree.Stats(child).Visits)
		require.Equal(t, 1, tree.Stats(tree.Root()).Visits)
	})
}

// path plays moves from the empty board and pairs each with the hash of
// the state it leads to
func path(t *testing.T, moves ...tictactoe.Move) []Segment {
	t.Helper()
	var state game.State = tictactoe.NewGameState()
	segments := make([]Segment, len(moves))
	for i, move := range moves {
		var err error
		state, err = state.Play(move)
		require.NoError(t, err)
		segments[i] = Segment{Move: move, StateHash: state.Hash()}
	}
	return segments
}

func TestTreeReroot(t *testing.T) {
	build := func(t *testing.T) *Tree {
		tree := NewTree(tictactoe.NewGameState())
		root := tree.Root()
		require.NoError(t, tree.Expand(root))
		center := tree.Children(root)[4]
		require.NoError(t, tree.Expand(center))
		tree.backpropagate(tree.Children(center)[0], game.WinB)
		return tree
	}

	t.Run("rerooting at an expanded path", func(t *testing.T) {
		tree := build(t)
		expected, err := tictactoe.NewGameState().Play(tictactoe.Move{Row: 1, Col: 1})
		require.NoError(t, err)

		require.True(t, tree.Reroot(path(t, tictactoe.Move{Row: 1, Col: 1})))

		root := tree.Root()
		require.Equal(t, 9, tree.Size(), "Only the center subtree should remain")
		require.Equal(t, expected.Hash(), tree.State(root).Hash())
		require.Equal(t, nilNode, tree.Parent(root))
		require.Equal(t, 0, tree.Stats(root).Depth)
		require.Equal(t, 1, tree.MaxDepth())
		require.Equal(t, 1, tree.Stats(root).Visits, "Statistics should survive")

		children := tree.Children(root)
		require.Len(t, children, 8)
		for _, child := range children {
			require.Equal(t, root, tree.Parent(child))
		}
		require.Equal(t, tictactoe.Move{Row: 0, Col: 0}, tree.Stats(children[0]).Move)
		require.Equal(t, 1.0, tree.Stats(children[0]).Rewards)
	})

	t.Run("rerooting two plies deep", func(t *testing.T) {
		tree := build(t)

		require.True(t, tree.Reroot(path(t, tictactoe.Move{Row: 1, Col: 1}, tictactoe.Move{Row: 0, Col: 0})))
		require.Equal(t, 1, tree.Size())
		require.True(t, tree.IsLeaf(tree.Root()))
	})

	t.Run("rerooting outside the tree", func(t *testing.T) {
		tree := build(t)

		require.False(t, tree.Reroot(path(t, tictactoe.Move{Row: 0, Col: 0}, tictactoe.Move{Row: 1, Col: 1})))
		require.Equal(t, 18, tree.Size(), "Tree should be untouched")
	})

	t.Run("rerooting through a mismatched state", func(t *testing.T) {
		tree := build(t)
		segments := path(t, tictactoe.Move{Row: 1, Col: 1}, tictactoe.Move{Row: 0, Col: 0})
		segments[0].StateHash++

		require.False(t, tree.Reroot(segments))
		require.Equal(t, 18, tree.Size(), "Tree should be untouched")
	})

	t.Run("rerooting with no moves", func(t *testing.T) {
		tree := build(t)

		require.True(t, tree.Reroot(nil))
		require.Equal(t, 18, tree.Size())
	})
}

func TestStopReasonString(t *testing.T) {
	require.Equal(t, "None", StopNone.String())
	require.Equal(t, "Iterations", StopIterations.String())
	require.Equal(t, "Duration|Cancelled", (StopDuration | StopCancelled).String())
}
