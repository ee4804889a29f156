package mcts

import (
	"fmt"

	"github.com/IlikeChooros/go-mcts-rts/pkg/rts"
	"github.com/IlikeChooros/go-mcts-rts/pkg/turn"
)

// Opaque identity of a decision point: index of the node in the tree's arena.
// Two decision points are the same only if they have the same key, nodes are never
// deduplicated by state (open-loop search).
type NodeKey int32

const (
	NoKey   NodeKey = -1
	RootKey NodeKey = 0
)

// Option available at a decision point, with its statistics and the decision point(s) it led to
type Edge[T MoveLike] struct {
	Option T
	Stats  NodeStats
	// Under the open-loop assumption this holds at most one key
	successors []NodeKey
}

// Decision statistics of one decision point
type Node[T MoveLike] struct {
	Key    NodeKey
	Parent NodeKey
	Actor  turn.ActorRef
	Depth  int
	Stats  NodeStats
	Edges  []Edge[T]
}

// Index of the edge with given option, -1 if the option is not stored here
func (node *Node[T]) OptionIndex(option T) int {
	for i := range node.Edges {
		if node.Edges[i].Option == option {
			return i
		}
	}
	return -1
}

func (node *Node[T]) Options() []T {
	options := make([]T, len(node.Edges))
	for i := range node.Edges {
		options[i] = node.Edges[i].Option
	}
	return options
}

// Indices of the edges whose option is in 'legal', ascending
func (node *Node[T]) legalEdges(legal []T, buf []int) []int {
	buf = buf[:0]
	for i := range node.Edges {
		for _, o := range legal {
			if node.Edges[i].Option == o {
				buf = append(buf, i)
				break
			}
		}
	}
	return buf
}

func (node *Node[T]) String() string {
	return fmt.Sprintf("Node{key=%d, actor=%d, depth=%d, n=%d, options=%d}",
		node.Key, node.Actor, node.Depth, node.Stats.N(), len(node.Edges))
}

// Search tree: owns every decision point of one planning call, grows monotonically
// and is discarded as a whole afterwards
type Tree[T MoveLike] struct {
	nodes    []Node[T]
	maxdepth int
}

func NewTree[T MoveLike]() *Tree[T] {
	return &Tree[T]{nodes: make([]Node[T], 0, 256)}
}

// Add new decision point, where 'actor' chooses among 'options' (in that order).
// The first node added is the root.
func (t *Tree[T]) AddNode(actor turn.ActorRef, options []T, parent NodeKey) NodeKey {
	key := NodeKey(len(t.nodes))
	depth := 0
	if parent != NoKey {
		depth = t.Node(parent).Depth + 1
	}

	edges := make([]Edge[T], len(options))
	for i, o := range options {
		edges[i].Option = o
	}

	t.nodes = append(t.nodes, Node[T]{
		Key:    key,
		Parent: parent,
		Actor:  actor,
		Depth:  depth,
		Edges:  edges,
	})
	t.maxdepth = max(t.maxdepth, depth)
	return key
}

// Get the node, the key must have been returned by AddNode
func (t *Tree[T]) Node(key NodeKey) *Node[T] {
	if key < 0 || int(key) >= len(t.nodes) {
		panic(fmt.Sprintf("[MCTS] Tree.Node: unknown node key %d (size %d)", key, len(t.nodes)))
	}
	return &t.nodes[key]
}

// Decision statistics for the key, ok=false if the tree doesn't hold such decision point
func (t *Tree[T]) StatisticsFor(key NodeKey) (*Node[T], bool) {
	if key < 0 || int(key) >= len(t.nodes) {
		return nil, false
	}
	return &t.nodes[key], true
}

// Record that choosing 'option' at 'parent' led to 'child'
func (t *Tree[T]) Link(parent NodeKey, option T, child NodeKey) {
	node := t.Node(parent)
	i := node.OptionIndex(option)
	if i < 0 {
		panic(fmt.Sprintf("[MCTS] Tree.Link: option %v is not available at node %d", option, parent))
	}

	edge := &node.Edges[i]
	for _, s := range edge.successors {
		if s == child {
			return
		}
	}
	edge.successors = append(edge.successors, child)
}

// The decision point reached by choosing 'option' at 'key', found=false if it was never recorded.
// More than one recorded successor breaks the open-loop design and is reported as an error.
func (t *Tree[T]) SuccessorOf(key NodeKey, option T) (NodeKey, bool, error) {
	node, ok := t.StatisticsFor(key)
	if !ok {
		return NoKey, false, nil
	}
	i := node.OptionIndex(option)
	if i < 0 {
		return NoKey, false, nil
	}

	successors := node.Edges[i].successors
	switch len(successors) {
	case 0:
		return NoKey, false, nil
	case 1:
		return successors[0], true, nil
	}
	return NoKey, false, &rts.InvariantError{
		Kind:    rts.MultipleSuccessors,
		Key:     int32(key),
		Actor:   int32(node.Actor),
		Unit:    rts.NoUnit,
		Option:  option,
		Message: fmt.Sprintf("open-loop search expects 1 successor, got %d", len(successors)),
	}
}

// Best option at the decision point according to the policy, ok=false if there is
// no such node or it has no options. Ties are broken by the option's position, so
// repeated queries against unmodified statistics return the same option.
func (t *Tree[T]) BestOption(key NodeKey, policy BestChildPolicy) (T, bool) {
	var zero T
	node, ok := t.StatisticsFor(key)
	if !ok || len(node.Edges) == 0 {
		return zero, false
	}
	return node.Edges[bestEdge(node, policy)].Option, true
}

// Minimum number of visits an option needs to be considered by 'BestChildWinRate'
const minWinRateVisits = 10

func bestEdge[T MoveLike](node *Node[T], policy BestChildPolicy) int {
	best := 0

	switch policy {
	case BestChildWinRate:
		bestValue := -1.0
		found := false
		for i := range node.Edges {
			s := &node.Edges[i].Stats
			if s.N() >= minWinRateVisits && s.AvgQ() > bestValue {
				bestValue = s.AvgQ()
				best = i
				found = true
			}
		}
		if found {
			break
		}
		// Not enough visits anywhere, fall back to the visit count
		fallthrough
	default:
		for i := 1; i < len(node.Edges); i++ {
			s, b := &node.Edges[i].Stats, &node.Edges[best].Stats
			if s.N() > b.N() || (s.N() == b.N() && s.AvgQ() > b.AvgQ()) {
				best = i
			}
		}
	}
	return best
}

// Number of decision points in the tree
func (t *Tree[T]) Size() int {
	return len(t.nodes)
}

// Depth of the deepest decision point, the root has depth 0
func (t *Tree[T]) MaxDepth() int {
	return t.maxdepth
}

// Best line of options from the root, following the most visited options
// while their successors exist
func (t *Tree[T]) Pv(policy BestChildPolicy) []T {
	pv := make([]T, 0, t.maxdepth+1)
	key := RootKey
	for {
		option, ok := t.BestOption(key, policy)
		if !ok {
			break
		}
		pv = append(pv, option)
		next, found, err := t.SuccessorOf(key, option)
		if err != nil || !found {
			break
		}
		key = next
	}
	return pv
}
