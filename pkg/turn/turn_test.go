package turn

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IlikeChooros/go-mcts-rts/pkg/rts"
)

// Minimal world: every idle unit has its own options, issuing a command keeps
// the unit busy for 'busyTicks' ticks
type fakeWorld struct {
	units     []rts.UnitInfo
	options   map[rts.UnitID][]int
	doneAt    map[rts.UnitID]int
	busyTicks int
	time      int
	maxTime   int
}

func newFakeWorld(maxTime int, units ...rts.UnitInfo) *fakeWorld {
	w := &fakeWorld{
		units:     units,
		options:   make(map[rts.UnitID][]int),
		doneAt:    make(map[rts.UnitID]int),
		busyTicks: 1,
		maxTime:   maxTime,
	}
	for _, u := range units {
		w.options[u.ID] = []int{int(u.ID) * 10}
	}
	return w
}

func (w *fakeWorld) Clone() *fakeWorld {
	clone := *w
	clone.units = slices.Clone(w.units)
	clone.doneAt = make(map[rts.UnitID]int, len(w.doneAt))
	for k, v := range w.doneAt {
		clone.doneAt[k] = v
	}
	return &clone
}

func (w *fakeWorld) IsOver() bool { return w.time >= w.maxTime }
func (w *fakeWorld) Winner() (rts.Side, bool) { return rts.NeutralSide, false }
func (w *fakeWorld) Units() []rts.UnitInfo { return w.units }
func (w *fakeWorld) Time() int { return w.time }
func (w *fakeWorld) busy(id rts.UnitID) bool { return w.doneAt[id] > w.time }
func (w *fakeWorld) setOptions(id rts.UnitID, options ...int) { w.options[id] = options }

func (w *fakeWorld) LegalOptions(id rts.UnitID) []int {
	if w.IsOver() || w.busy(id) {
		return nil
	}
	return w.options[id]
}

func (w *fakeWorld) Apply(action rts.JointAction[int]) bool {
	for _, f := range action.Fragments() {
		w.doneAt[f.Unit] = w.time + w.busyTicks
	}
	return true
}

func (w *fakeWorld) Cycle() bool {
	w.time++
	return w.IsOver()
}

func (w *fakeWorld) NextChangeTime() int {
	next := -1
	for _, u := range w.units {
		if !u.Controllable() || len(w.options[u.ID]) == 0 {
			continue
		}
		at := max(w.doneAt[u.ID], w.time)
		if next == -1 || at < next {
			next = at
		}
	}
	if next == -1 {
		return w.time + 1
	}
	return next
}

func info(id rts.UnitID, side rts.Side) rts.UnitInfo {
	return rts.UnitInfo{ID: id, Side: side}
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()

	a, err := registry.Register(info(100, 0))
	require.NoError(t, err)
	b, err := registry.Register(info(7, 1))
	require.NoError(t, err)
	again, err := registry.Register(info(100, 0))
	require.NoError(t, err)

	assert.Equal(t, ActorRef(1), a, "references start at 1")
	assert.Equal(t, ActorRef(2), b)
	assert.Equal(t, a, again, "registering is idempotent")
	assert.Equal(t, 2, registry.Len())

	assert.Equal(t, rts.Side(1), registry.OwnerOf(b))
	assert.Equal(t, rts.UnitID(100), registry.UnitOf(a))
	assert.Equal(t, Actor{Ref: 2, Side: 1, Unit: 7}, registry.Actor(b))

	ref, ok := registry.Lookup(7)
	assert.True(t, ok)
	assert.Equal(t, b, ref)
	_, ok = registry.Lookup(8)
	assert.False(t, ok)

	assert.Panics(t, func() { registry.Actor(NoActor) })
	assert.Panics(t, func() { registry.Actor(3) })
}

func TestRegistrySideMismatch(t *testing.T) {
	registry := NewRegistry()
	_, err := registry.Register(info(5, 0))
	require.NoError(t, err)

	_, err = registry.Register(info(5, 1))
	require.Error(t, err)
	assert.True(t, rts.IsInvariant(err, rts.SideMismatch))
	assert.Equal(t, rts.Side(0), registry.OwnerOf(1), "owner never changes")
}

func TestRegistryClone(t *testing.T) {
	registry := NewRegistry()
	_, _ = registry.Register(info(1, 0))

	clone := registry.Clone()
	ref, err := clone.Register(info(2, 1))
	require.NoError(t, err)
	assert.Equal(t, ActorRef(2), ref)
	assert.Equal(t, 1, registry.Len(), "original is not affected")

	// Both lines of play assign the same next reference
	ref, err = registry.Register(info(3, 0))
	require.NoError(t, err)
	assert.Equal(t, ActorRef(2), ref)
}

func TestComputeOrder(t *testing.T) {
	world := newFakeWorld(10, info(4, 1), info(2, 0), info(9, rts.NeutralSide), info(3, 1), info(1, 0))

	cases := []struct {
		name string
		opts []SchedulerOption
		want []rts.UnitID
	}{
		{"canonical", nil, []rts.UnitID{2, 1, 4, 3}},
		{"lead 1", []SchedulerOption{WithLead(1)}, []rts.UnitID{4, 3, 2, 1}},
		{"lead 0", []SchedulerOption{WithLead(0)}, []rts.UnitID{2, 1, 4, 3}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			registry := NewRegistry()
			scheduler := NewScheduler[int, *fakeWorld](registry, c.opts...)

			order, err := scheduler.ComputeOrder(world)
			require.NoError(t, err)

			units := make([]rts.UnitID, len(order))
			for i, ref := range order {
				units[i] = registry.UnitOf(ref)
			}
			// Refs follow the registration order, so within a side the snapshot order is kept
			assert.Equal(t, c.want, units)
			_, ok := registry.Lookup(9)
			assert.False(t, ok, "neutral units are never registered")

			again, err := scheduler.ComputeOrder(world)
			require.NoError(t, err)
			assert.Equal(t, order, again, "same snapshot, same order")
		})
	}
}

func TestComputeOrderSkipsUnitsWithoutOptions(t *testing.T) {
	world := newFakeWorld(10, info(1, 0), info(2, 0), info(3, 1))
	world.setOptions(2)
	world.doneAt[3] = 5

	registry := NewRegistry()
	order, err := NewScheduler[int, *fakeWorld](registry).ComputeOrder(world)
	require.NoError(t, err)
	assert.Equal(t, []ActorRef{1}, order)
	assert.Equal(t, 3, registry.Len(), "every controllable unit is registered")
}

func TestSchedulerEmptyOrder(t *testing.T) {
	world := newFakeWorld(10, info(1, 0))
	world.setOptions(1)

	scheduler := NewScheduler[int, *fakeWorld](NewRegistry())
	err := scheduler.Reset(world)
	require.Error(t, err)
	assert.True(t, rts.IsInvariant(err, rts.EmptyOrder))

	// Nothing to decide at the end of the game is fine
	world.time = 10
	require.NoError(t, scheduler.Reset(world))
	_, ok := scheduler.Current()
	assert.False(t, ok)
}

func TestSchedulerNextAndAdvance(t *testing.T) {
	world := newFakeWorld(10, info(1, 0), info(2, 1))
	world.busyTicks = 3

	scheduler := NewScheduler[int, *fakeWorld](NewRegistry(), WithLead(1))
	require.NoError(t, scheduler.Reset(world))
	assert.Equal(t, []ActorRef{2, 1}, scheduler.Order())

	actor, ok := scheduler.Current()
	require.True(t, ok)
	assert.Equal(t, ActorRef(2), actor)
	world.Apply(rts.NewJointAction(rts.Fragment[int]{Unit: 2, Command: 20}))

	over, err := scheduler.Next(world)
	require.NoError(t, err)
	assert.False(t, over)
	assert.Equal(t, 1, scheduler.Cursor())
	assert.Equal(t, 0, world.Time(), "clock doesn't move within the order")
	world.Apply(rts.NewJointAction(rts.Fragment[int]{Unit: 1, Command: 10}))

	// Both busy until tick 3
	over, err = scheduler.Next(world)
	require.NoError(t, err)
	assert.False(t, over)
	assert.Equal(t, 3, world.Time())
	assert.Equal(t, 0, scheduler.Cursor())
	assert.Equal(t, []ActorRef{2, 1}, scheduler.Order())
}

func TestSchedulerAdvanceToGameOver(t *testing.T) {
	world := newFakeWorld(4, info(1, 0))
	world.busyTicks = 10

	scheduler := NewScheduler[int, *fakeWorld](NewRegistry())
	require.NoError(t, scheduler.Reset(world))
	world.Apply(rts.NewJointAction(rts.Fragment[int]{Unit: 1, Command: 10}))

	over, err := scheduler.Next(world)
	require.NoError(t, err)
	assert.True(t, over)
	assert.Equal(t, 4, world.Time())
	_, ok := scheduler.Current()
	assert.False(t, ok)
}

func TestSchedulerClone(t *testing.T) {
	world := newFakeWorld(10, info(1, 0), info(2, 0))
	registry := NewRegistry()
	scheduler := NewScheduler[int, *fakeWorld](registry, WithLead(0))
	require.NoError(t, scheduler.Reset(world))

	clone := scheduler.Clone(registry.Clone())
	_, err := clone.Next(world)
	require.NoError(t, err)

	assert.Equal(t, 1, clone.Cursor())
	assert.Equal(t, 0, scheduler.Cursor(), "original cursor untouched")
	lead, ok := clone.Lead()
	assert.True(t, ok)
	assert.Equal(t, rts.Side(0), lead)
}
