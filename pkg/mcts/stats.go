package mcts

// Visit count and accumulated value, from the perspective of the actor deciding at the node.
// A single planning call runs on one goroutine, so there are no atomics here.
type NodeStats struct {
	q float64
	n int32
}

// Average outcome, 0 if never visited
func (stats *NodeStats) AvgQ() float64 {
	if stats.n == 0 {
		return 0
	}
	return stats.q / float64(stats.n)
}

// Cumulated rewards/outcomes
func (stats *NodeStats) Q() float64 {
	return stats.q
}

// Add new outcome, counting it as a visit
func (stats *NodeStats) AddQ(result float64) {
	stats.q += result
	stats.n++
}

// Count a visit without an outcome
func (stats *NodeStats) AddVisit() {
	stats.n++
}

// Get number of visits
func (stats *NodeStats) N() int32 {
	return stats.n
}
