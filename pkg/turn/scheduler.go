package turn

import (
	"slices"

	"github.com/IlikeChooros/go-mcts-rts/pkg/rts"
)

/*
Decision scheduler, linearizes the simultaneous multi-unit game into a sequence
of single-actor decision points.

At every point where some actor can decide, the scheduler computes the decision order:
all actors with at least one legal option, grouped by side (lead side first if set,
then ascending side ids) and ascending actor reference within a side. The actors decide
one after another, each applying its command to the world immediately, and only once the
whole order is exhausted the clock is moved forward, until someone can decide again.
*/

// Side ordering used when sorting the decision order
type SideOrder struct {
	lead    rts.Side
	hasLead bool
}

type SchedulerOption func(*SideOrder)

// Put all actors of given side before the others
func WithLead(side rts.Side) SchedulerOption {
	return func(o *SideOrder) {
		o.lead = side
		o.hasLead = true
	}
}

type Scheduler[C comparable, W rts.World[C, W]] struct {
	SideOrder
	registry *Registry
	order    []ActorRef
	cursor   int
}

func NewScheduler[C comparable, W rts.World[C, W]](registry *Registry, opts ...SchedulerOption) *Scheduler[C, W] {
	s := &Scheduler[C, W]{registry: registry}
	for _, opt := range opts {
		opt(&s.SideOrder)
	}
	return s
}

func (s *Scheduler[C, W]) Registry() *Registry {
	return s.registry
}

// Lead side, ok=false if canonical (ascending) side order is used
func (o SideOrder) Lead() (rts.Side, bool) {
	return o.lead, o.hasLead
}

// Compute the ordered sequence of actors that must decide before the next state transition.
// Registers every new player-owned unit on the way. Doesn't modify the cursor.
func (s *Scheduler[C, W]) ComputeOrder(world W) ([]ActorRef, error) {
	units := world.Units()
	order := make([]ActorRef, 0, len(units))

	for _, u := range units {
		if !u.Controllable() {
			continue
		}
		ref, err := s.registry.Register(u)
		if err != nil {
			return nil, err
		}
		if len(world.LegalOptions(u.ID)) > 0 {
			order = append(order, ref)
		}
	}

	slices.SortFunc(order, func(a, b ActorRef) int {
		sa, sb := s.registry.OwnerOf(a), s.registry.OwnerOf(b)
		if sa == sb {
			return int(a) - int(b)
		}
		if s.hasLead {
			if sa == s.lead {
				return -1
			}
			if sb == s.lead {
				return 1
			}
		}
		return int(sa) - int(sb)
	})

	return order, nil
}

// Recompute the decision order and rewind the cursor to its beginning.
// An empty order while the game is not over is a modelling violation.
func (s *Scheduler[C, W]) Reset(world W) error {
	order, err := s.ComputeOrder(world)
	if err != nil {
		return err
	}

	s.order = order
	s.cursor = 0
	if len(order) == 0 && !world.IsOver() {
		return &rts.InvariantError{
			Kind:    rts.EmptyOrder,
			Key:     -1,
			Unit:    rts.NoUnit,
			Message: "no actor can decide, but the game is not over",
		}
	}
	return nil
}

// Move past the current actor, once every actor in the order decided, let the time pass.
// Returns the game over flag.
func (s *Scheduler[C, W]) Next(world W) (bool, error) {
	s.cursor++
	if s.cursor < len(s.order) {
		return world.IsOver(), nil
	}
	return s.Advance(world)
}

// Step the world's clock forward by the smallest increment until either the game ends
// or some unit has a legal option again, then recompute the order.
func (s *Scheduler[C, W]) Advance(world W) (bool, error) {
	over := world.IsOver()
	for !over {
		over = world.Cycle()
		if world.NextChangeTime() <= world.Time() {
			break
		}
	}

	if over {
		s.order = s.order[:0]
		s.cursor = 0
		return true, nil
	}
	return false, s.Reset(world)
}

// Actor that must decide now, ok=false if the order is exhausted
func (s *Scheduler[C, W]) Current() (ActorRef, bool) {
	if s.cursor < len(s.order) {
		return s.order[s.cursor], true
	}
	return NoActor, false
}

// Copy of the current decision order
func (s *Scheduler[C, W]) Order() []ActorRef {
	return slices.Clone(s.order)
}

// Position of the current actor within the order
func (s *Scheduler[C, W]) Cursor() int {
	return s.cursor
}

// Copy of the scheduler using given registry, which should be a clone of the original one
func (s *Scheduler[C, W]) Clone(registry *Registry) *Scheduler[C, W] {
	return &Scheduler[C, W]{
		SideOrder: s.SideOrder,
		registry:  registry,
		order:     slices.Clone(s.order),
		cursor:    s.cursor,
	}
}
