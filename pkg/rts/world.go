package rts

// Contracts of the physical world simulation, consumed by the scheduler and the planner.
// The simulation itself (movement, combat, economy, win condition) lives outside of this module,
// see pkg/skirmish for a small implementation.

// Stable identity of a unit, assigned by the simulation and never reused while the unit lives
type UnitID int64

// Placeholder for "no unit", never a valid unit identity
const NoUnit UnitID = -1

// Identifier of a side ("master", "player") owning units. Negative values mark
// neutral things, like resources, that never act.
type Side int

// Side used by the simulation for non-player controlled units
const NeutralSide Side = -1

// Minimal view of a unit, as reported by the world snapshot
type UnitInfo struct {
	ID   UnitID
	Side Side
}

// Player-owned unit (not a resource or other neutral thing)
func (u UnitInfo) Controllable() bool {
	return u.Side >= 0
}

// World snapshot, C is the low-level unit command type and W is the concrete snapshot
// type itself (so that Clone returns something usable without type assertions).
//
// Implementations must make Clone a full deep copy: a forked snapshot never affects the original
// or other forks.
type World[C comparable, W any] interface {
	// Deep copy of the snapshot
	Clone() W
	// Whether the game has ended
	IsOver() bool
	// Winning side, ok=false if there is none (yet, or a draw)
	Winner() (side Side, ok bool)
	// Every live unit, in a stable order
	Units() []UnitInfo
	// Ordered sequence of commands the unit may issue right now, empty if it's busy
	// executing a previous command or doesn't exist
	LegalOptions(unit UnitID) []C
	// Submit the joint action, returns false if the world rejected it
	Apply(action JointAction[C]) bool
	// Step the clock by the smallest increment (1 tick), returns the new game over flag
	Cycle() bool
	// Current simulated time
	Time() int
	// Time at which the next unit becomes able to decide, equal to Time()
	// if any unit can decide right now
	NextChangeTime() int
}

// Scoring collaborator, used only at rollout termination. Value should be normalized
// to [0, 1] from the given side's perspective (1 = win, 0 = loss).
type Scorer[W any] func(world W, side Side) float64
