package turn

import (
	"fmt"

	"github.com/IlikeChooros/go-mcts-rts/pkg/rts"
)

// Stable small-integer reference of an actor, assigned once per unit identity.
// Valid references start at 1.
type ActorRef int32

// Placeholder for "no actor"
const NoActor ActorRef = 0

// One controllable unit, capable of making decisions
type Actor struct {
	Ref  ActorRef
	Side rts.Side
	Unit rts.UnitID
}

func (a Actor) String() string {
	return fmt.Sprintf("actor %d (unit %d, side %d)", a.Ref, a.Unit, a.Side)
}

// Arena of actors: dense mapping from unit identity to a slot index, owned by a single
// planning episode. Grows monotonically, dead units simply stop being scheduled.
type Registry struct {
	byUnit map[rts.UnitID]ActorRef
	actors []Actor // actors[ref-1]
}

func NewRegistry() *Registry {
	return &Registry{
		byUnit: make(map[rts.UnitID]ActorRef),
		actors: make([]Actor, 0, 16),
	}
}

// Returns the actor reference of the unit, assigning the next one if this is the first time
// the unit is seen. Fails if the unit is reported with a different side than it was registered with.
func (r *Registry) Register(unit rts.UnitInfo) (ActorRef, error) {
	if ref, ok := r.byUnit[unit.ID]; ok {
		if owner := r.actors[ref-1].Side; owner != unit.Side {
			return ref, &rts.InvariantError{
				Kind:    rts.SideMismatch,
				Key:     -1,
				Actor:   int32(ref),
				Unit:    unit.ID,
				Message: fmt.Sprintf("unit registered for side %d is now reported for side %d", owner, unit.Side),
			}
		}
		return ref, nil
	}

	ref := ActorRef(len(r.actors) + 1)
	r.actors = append(r.actors, Actor{Ref: ref, Side: unit.Side, Unit: unit.ID})
	r.byUnit[unit.ID] = ref
	return ref, nil
}

// Actor reference of the unit, if it was registered
func (r *Registry) Lookup(unit rts.UnitID) (ActorRef, bool) {
	ref, ok := r.byUnit[unit]
	return ref, ok
}

// Get the actor, the reference must have been returned by Register
func (r *Registry) Actor(ref ActorRef) Actor {
	if ref <= NoActor || int(ref) > len(r.actors) {
		panic(fmt.Sprintf("[turn] Registry.Actor: unknown actor reference %d (registered: %d)", ref, len(r.actors)))
	}
	return r.actors[ref-1]
}

// Side owning the actor, immutable once assigned
func (r *Registry) OwnerOf(ref ActorRef) rts.Side {
	return r.Actor(ref).Side
}

// Unit backing the actor
func (r *Registry) UnitOf(ref ActorRef) rts.UnitID {
	return r.Actor(ref).Unit
}

// Number of registered actors
func (r *Registry) Len() int {
	return len(r.actors)
}

// Independent copy, so that forked episodes can register new units
// without affecting each other
func (r *Registry) Clone() *Registry {
	clone := &Registry{
		byUnit: make(map[rts.UnitID]ActorRef, len(r.byUnit)),
		actors: make([]Actor, len(r.actors), cap(r.actors)),
	}
	copy(clone.actors, r.actors)
	for unit, ref := range r.byUnit {
		clone.byUnit[unit] = ref
	}
	return clone
}
