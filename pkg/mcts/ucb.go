package mcts

import "math"

type UCB1[T MoveLike] struct {
	ExplorationParam float64
}

func (u *UCB1[T]) SetExplorationParam(c float64) {
	u.ExplorationParam = max(0, c)
}

func NewUCB1[T MoveLike](explorationParam float64) *UCB1[T] {
	return &UCB1[T]{ExplorationParam: explorationParam}
}

// Pick the legal edge with the highest UCB1 score, unvisited edges first (in their order),
// ties go to the earlier edge
func (u *UCB1[T]) Select(node *Node[T], legal []int) int {
	max := math.Inf(-1)
	index := legal[0]
	lnParentVisits := math.Log(float64(max32(node.Stats.N(), 1)))

	for _, i := range legal {
		stats := &node.Edges[i].Stats
		visits := stats.N()

		// Pick the unvisited one
		if visits == 0 {
			return i
		}

		// UCB 1 : wins/visits + C * sqrt(ln(parent_visits)/visits)
		// the value is stored from the deciding actor's perspective, so we simply maximize it
		ucb1 := stats.Q()/float64(visits) +
			u.ExplorationParam*math.Sqrt(lnParentVisits/float64(visits))

		if ucb1 > max {
			max = ucb1
			index = i
		}
	}

	return index
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
