package searcher

import (
	"fmt"
	"math"

	"mcts/game"
)

// NodeID addresses a node inside its Tree's arena
type NodeID int32

const nilNode NodeID = -1

// node statistics are always from the perspective of mover, the player who
// played the move leading into the node. The root's mover is the opponent of
// the player to move at the root.
type node struct {
	state    game.State
	parent   NodeID // Non-owning back-reference, nilNode at the root
	move     game.Move
	mover    game.Player
	children []NodeID // In legal-move order
	visits   int
	rewards  float64
	depth    int
}

// NodeStats is a read-only snapshot of a node
type NodeStats struct {
	Move    game.Move
	Mover   game.Player
	Visits  int
	Rewards float64
	Depth   int
}

// Mean returns the average reward from the mover's perspective, 0 when unvisited
func (s NodeStats) Mean() float64 {
	if s.Visits == 0 {
		return 0
	}
	return s.Rewards / float64(s.Visits)
}

// Tree owns every node reachable from its root. Nodes are never removed,
// only compacted away by Reroot.
type Tree struct {
	nodes []node
	root  NodeID
}

// NewTree returns a tree with a single unexpanded root for state
func NewTree(state game.State) *Tree {
	t := &Tree{root: 0}
	t.nodes = append(t.nodes, node{
		state:  state,
		parent: nilNode,
		mover:  state.Player().Other(),
	})
	return t
}

func (t *Tree) Root() NodeID {
	return t.root
}

func (t *Tree) Size() int {
	return len(t.nodes)
}

func (t *Tree) MaxDepth() int {
	depth := 0
	for i := range t.nodes {
		depth = max(depth, t.nodes[i].depth)
	}
	return depth
}

func (t *Tree) State(id NodeID) game.State {
	return t.nodes[id].state
}

func (t *Tree) Parent(id NodeID) NodeID {
	return t.nodes[id].parent
}

func (t *Tree) Children(id NodeID) []NodeID {
	children := make([]NodeID, len(t.nodes[id].children))
	copy(children, t.nodes[id].children)
	return children
}

func (t *Tree) Stats(id NodeID) NodeStats {
	n := &t.nodes[id]
	return NodeStats{
		Move:    n.move,
		Mover:   n.mover,
		Visits:  n.visits,
		Rewards: n.rewards,
		Depth:   n.depth,
	}
}

func (t *Tree) IsLeaf(id NodeID) bool {
	return len(t.nodes[id].children) == 0
}

func (t *Tree) IsTerminal(id NodeID) bool {
	return t.nodes[id].state.IsTerminal()
}

// Expand attaches one child per legal move of a non-terminal leaf. The tree
// is left untouched when the game state hands out a bad move.
func (t *Tree) Expand(id NodeID) error {
	if !t.IsLeaf(id) {
		panic("cannot expand an expanded node")
	}
	if t.IsTerminal(id) {
		panic("cannot expand a terminal node")
	}

	parent := t.nodes[id]
	moves := parent.state.LegalMoves()
	if len(moves) == 0 {
		return fmt.Errorf("non-terminal state has no legal moves: %w", ErrIllegalMove)
	}

	seen := make(map[game.Move]struct{}, len(moves))
	children := make([]node, 0, len(moves))
	for _, move := range moves {
		if _, ok := seen[move]; ok {
			return fmt.Errorf("duplicate move %v: %w", move, ErrIllegalMove)
		}
		seen[move] = struct{}{}

		state, err := parent.state.Play(move)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrIllegalMove, err)
		}
		children = append(children, node{
			state:  state,
			parent: id,
			move:   move,
			mover:  parent.state.Player(),
			depth:  parent.depth + 1,
		})
	}

	ids := make([]NodeID, len(children))
	for i, child := range children {
		ids[i] = NodeID(len(t.nodes))
		t.nodes = append(t.nodes, child)
	}
	t.nodes[id].children = ids
	return nil
}

// Criterion scores a child relative to its parent; higher is better
type Criterion interface {
	Score(parent, child NodeStats) float64
}

// ByVisits picks the most visited child, used for the final move
type ByVisits struct{}

func (ByVisits) Score(_, child NodeStats) float64 {
	return float64(child.Visits)
}

// ByMeanReward picks the child with the best average reward
type ByMeanReward struct{}

func (ByMeanReward) Score(_, child NodeStats) float64 {
	if child.Visits == 0 {
		return math.Inf(-1)
	}
	return child.Mean()
}

// ByUCB picks the child with the highest UCB1 score. Unvisited children score
// +Inf so every child is tried once before any is revisited.
type ByUCB struct {
	C float64
}

func (u ByUCB) Score(parent, child NodeStats) float64 {
	if child.Visits == 0 {
		return math.Inf(1)
	}
	return ucb1(child.Rewards, child.Visits, parent.Visits, u.C)
}

// BestChild returns the child maximizing criterion. Ties go to the first child
// in legal-move order.
func (t *Tree) BestChild(id NodeID, criterion Criterion) NodeID {
	if t.IsLeaf(id) {
		panic("node has no children")
	}

	parent := t.Stats(id)
	best := nilNode
	bestScore := math.Inf(-1)
	for _, child := range t.nodes[id].children {
		score := criterion.Score(parent, t.Stats(child))
		if best == nilNode || score > bestScore {
			best = child
			bestScore = score
		}
	}
	return best
}

// PrincipalVariation follows the most visited children from the root
func (t *Tree) PrincipalVariation() []game.Move {
	var pv []game.Move
	id := t.root
	for !t.IsLeaf(id) {
		id = t.BestChild(id, ByVisits{})
		if t.nodes[id].visits == 0 {
			break
		}
		pv = append(pv, t.nodes[id].move)
	}
	return pv
}

// selectLeaf descends from the root by UCB1 until it reaches a terminal node
// or one that has not been expanded
func (t *Tree) selectLeaf(c float64) NodeID {
	id := t.root
	criterion := ByUCB{C: c}
	for !t.IsTerminal(id) && !t.IsLeaf(id) {
		id = t.BestChild(id, criterion)
	}
	return id
}

// backpropagate records outcome at id and each of its ancestors, each from
// the perspective of the player who moved into that node
func (t *Tree) backpropagate(id NodeID, outcome game.Outcome) {
	for id != nilNode {
		n := &t.nodes[id]
		n.visits++
		n.rewards += outcome.RewardFor(n.mover)
		if n.visits <= 0 {
			panic(fmt.Sprintf("node %d has %d visits", id, n.visits))
		}
		id = n.parent
	}
}

// child returns the child of id reached by move, or nilNode
func (t *Tree) child(id NodeID, move game.Move) NodeID {
	for _, c := range t.nodes[id].children {
		if t.nodes[c].move == move {
			return c
		}
	}
	return nilNode
}

// Reroot makes the node reached from the root by path the new root and
// discards everything outside its subtree. It reports false, leaving the
// tree unchanged, when path leaves the expanded part of the tree or a
// segment's state hash disagrees with the node it reaches.
func (t *Tree) Reroot(path []Segment) bool {
	id := t.root
	for _, segment := range path {
		id = t.child(id, segment.Move)
		if id == nilNode || t.nodes[id].state.Hash() != segment.StateHash {
			return false
		}
	}
	if id == t.root {
		return true
	}

	base := t.nodes[id].depth
	nodes := make([]node, 0, len(t.nodes))
	remap := map[NodeID]NodeID{id: 0}
	queue := []NodeID{id}
	for len(queue) > 0 {
		old := queue[0]
		queue = queue[1:]

		n := t.nodes[old]
		if old == id {
			n.parent = nilNode
		} else {
			n.parent = remap[n.parent]
		}
		n.depth -= base
		children := make([]NodeID, len(n.children))
		for i, c := range n.children {
			remap[c] = NodeID(len(nodes) + len(queue) + 1 + i)
			children[i] = remap[c]
		}
		n.children = children
		nodes = append(nodes, n)
		queue = append(queue, t.nodes[old].children...)
	}

	t.nodes = nodes
	t.root = 0
	return true
}
