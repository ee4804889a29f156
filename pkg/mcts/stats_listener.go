package mcts

type ListenerTreeStats[T MoveLike] struct {
	Maxdepth   int
	Cycles     int
	TimeMs     int
	Cps        uint32
	Size       uint32
	BestOption T
	BestVisits int32
	Eval       float64
	Pv         []T
	StopReason StopReason
}

// Convert the planner's current search state to 'ListenerTreeStats' struct
func toListenerStats[T MoveLike](tree *Tree[T], stats *TreeStats, limiter LimiterLike) ListenerTreeStats[T] {
	result := ListenerTreeStats[T]{
		Maxdepth:   tree.MaxDepth(),
		Cycles:     stats.Cycles(),
		TimeMs:     int(limiter.Elapsed()),
		Cps:        stats.Cps(),
		Size:       uint32(tree.Size()),
		StopReason: limiter.StopReason(),
	}

	if root, ok := tree.StatisticsFor(RootKey); ok && len(root.Edges) > 0 {
		best := &root.Edges[bestEdge(root, BestChildMostVisits)]
		result.BestOption = best.Option
		result.BestVisits = best.Stats.N()
		result.Eval = best.Stats.AvgQ()
		result.Pv = tree.Pv(BestChildMostVisits)
	}
	return result
}

// Listener function callback, will recieve current tree statistics, like
// max depth of tree, number of iterations so far
type ListenerFunc[T MoveLike] func(ListenerTreeStats[T])

type StatsListener[T MoveLike] struct {
	// called every N full iterations, receives total number of cycles
	onCycle ListenerFunc[T]
	nCycles int // call 'onCycle' every N cycles

	// called when the search stops
	onStop ListenerFunc[T]
}

func NewStatsListener[T MoveLike]() StatsListener[T] {
	return StatsListener[T]{nCycles: 1}
}

// Attach new on iteration increase callback, this will slow down the search,
// because of pv evaluation, so use it only for debugging
func (listener *StatsListener[T]) OnCycle(onCycle ListenerFunc[T]) *StatsListener[T] {
	listener.onCycle = onCycle
	return listener
}

func (listener *StatsListener[T]) SetCycleInterval(n int) *StatsListener[T] {
	if n < 1 {
		n = 1
	}
	listener.nCycles = n
	return listener
}

// Attach 'on search end' callback, makes 'StopReason' available in the stats
func (listener *StatsListener[T]) OnStop(onStop ListenerFunc[T]) *StatsListener[T] {
	listener.onStop = onStop
	return listener
}

func (listener *StatsListener[T]) invokeCycle(tree *Tree[T], stats *TreeStats, limiter LimiterLike) {
	if listener.onCycle != nil && stats.Cycles()%max(listener.nCycles, 1) == 0 {
		listener.onCycle(toListenerStats(tree, stats, limiter))
	}
}

func (listener *StatsListener[T]) invokeStop(tree *Tree[T], stats *TreeStats, limiter LimiterLike) {
	if listener.onStop != nil {
		listener.onStop(toListenerStats(tree, stats, limiter))
	}
}
