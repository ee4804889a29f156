package mcts

import "time"

type StopReason int

const (
	StopNone     StopReason = 0
	StopMovetime StopReason = 1 << iota // Time limit reached
	StopNodes                           // Tree size limit reached
	StopDepth                           // Depth limit reached
	StopCycles                          // Cycle limit reached
)

func (sr StopReason) String() string {
	if sr == StopNone {
		return "None"
	}

	reasons := []struct {
		flag StopReason
		name string
	}{
		{StopMovetime, "Movetime"},
		{StopNodes, "Nodes"},
		{StopDepth, "Depth"},
		{StopCycles, "Cycles"},
	}

	var result string
	for _, r := range reasons {
		if sr&r.flag == r.flag {
			if result != "" {
				result += "|"
			}
			result += r.name
		}
	}

	return result
}

// Budget checks of the planner. There is no external cancellation, the search ends
// only when one of the limits is reached.
type LimiterLike interface {
	// Set the limits
	SetLimits(*Limits)
	// Get the limits
	Limits() *Limits
	// Get elapsed time in ms (from the last 'Reset' call)
	Elapsed() uint32
	// Reset the limiter's timer and stop reason, called on search setup
	Reset()
	// Wheter another episode may be started, called in the main search loop
	Ok(size, depth, cycles uint32) bool
	// Get the reason why the search was stopped, valid after search ends
	StopReason() StopReason
	// Evaluate stop reason based on current state, and set it internally
	EvaluateStopReason(size, depth, cycles uint32)
}

// Wall clock of the current search, with an optional movetime deadline
type movetimeClock struct {
	start    time.Time
	movetime time.Duration
	enabled  bool
}

// Start measuring from now, negative movetime disables the deadline
func (c *movetimeClock) restart(movetimeMs int) {
	c.start = time.Now()
	c.enabled = movetimeMs >= 0
	c.movetime = time.Duration(max(movetimeMs, 0)) * time.Millisecond
}

func (c *movetimeClock) expired() bool {
	return c.enabled && time.Since(c.start) >= c.movetime
}

// Elapsed milliseconds since the restart, at least 1
func (c *movetimeClock) elapsedMs() uint32 {
	return uint32(max(time.Since(c.start).Milliseconds(), 1))
}

type Limiter struct {
	limits *Limits
	clock  movetimeClock
	reason StopReason
}

func NewLimiter() *Limiter {
	l := &Limiter{limits: DefaultLimits()}
	l.clock.restart(DefaultMovetimeLimit)
	return l
}

func (l *Limiter) Reset() {
	l.clock.restart(l.limits.Movetime)
	l.reason = StopNone
}

func (l *Limiter) EvaluateStopReason(size, depth, cycles uint32) {
	l.reason = l.LimitMask(size, depth, cycles)
}

func (l *Limiter) StopReason() StopReason {
	return l.reason
}

func (l *Limiter) SetLimits(limits *Limits) {
	l.limits = limits
}

func (l *Limiter) Limits() *Limits {
	return l.limits
}

func (l *Limiter) Elapsed() uint32 {
	return l.clock.elapsedMs()
}

// Bit mask of every limit reached so far
func (l *Limiter) LimitMask(size, depth, cycles uint32) StopReason {
	if l.limits.Infinite {
		return StopNone
	}

	mask := StopNone
	if l.clock.expired() {
		mask |= StopMovetime
	}
	if l.limits.Nodes <= size {
		mask |= StopNodes
	}
	if l.limits.Depth <= int(depth) {
		mask |= StopDepth
	}
	if l.limits.Cycles <= cycles {
		mask |= StopCycles
	}
	return mask
}

func (l *Limiter) Ok(size, depth, cycles uint32) bool {
	return l.LimitMask(size, depth, cycles) == StopNone
}
