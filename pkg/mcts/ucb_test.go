package mcts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUCB1Select(t *testing.T) {
	tree := NewTree[int]()
	node := tree.Node(tree.AddNode(1, []int{10, 20, 30}, NoKey))
	ucb := NewUCB1[int](0.75)

	assert.Equal(t, 0, ucb.Select(node, []int{0, 1, 2}), "unvisited edges go first")
	assert.Equal(t, 2, ucb.Select(node, []int{2}), "only legal edges are considered")

	for i, q := range []float64{0.2, 0.9, 0.5} {
		node.Edges[i].Stats.AddQ(q)
		node.Stats.AddVisit()
	}
	assert.Equal(t, 1, ucb.Select(node, []int{0, 1, 2}))
	assert.Equal(t, 2, ucb.Select(node, []int{0, 2}))

	// Pure exploitation, ties go to the earlier edge
	ucb.SetExplorationParam(-1)
	assert.Equal(t, 0.0, ucb.ExplorationParam)
	tied := tree.Node(tree.AddNode(1, []int{10, 20, 30}, NoKey))
	for i, q := range []float64{0.25, 0.5, 0.5} {
		tied.Edges[i].Stats.AddQ(q)
		tied.Stats.AddVisit()
	}
	assert.Equal(t, 1, ucb.Select(tied, []int{0, 1, 2}))
}

func TestUCB1Explores(t *testing.T) {
	tree := NewTree[int]()
	node := tree.Node(tree.AddNode(1, []int{10, 20}, NoKey))
	ucb := NewUCB1[int](2)

	// A slightly worse but rarely visited option gets explored
	for range 50 {
		node.Edges[0].Stats.AddQ(0.6)
		node.Stats.AddVisit()
	}
	node.Edges[1].Stats.AddQ(0.5)
	node.Stats.AddVisit()

	assert.Equal(t, 1, ucb.Select(node, []int{0, 1}))
}
