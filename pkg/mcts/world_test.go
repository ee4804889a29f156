package mcts

import (
	"slices"

	"github.com/IlikeChooros/go-mcts-rts/pkg/rts"
	"github.com/IlikeChooros/go-mcts-rts/pkg/turn"
)

// Scripted world for the planner tests: every unit has a fixed list of options (plain ints),
// issuing a command makes the unit busy until the next tick and claims the option value,
// so other units can't use it in the same tick. The game ends after 'maxTime' ticks.

type scriptUnit struct {
	info    rts.UnitInfo
	options []int
}

func unit(id rts.UnitID, side rts.Side, options ...int) scriptUnit {
	return scriptUnit{info: rts.UnitInfo{ID: id, Side: side}, options: options}
}

type scriptWorld struct {
	units   []scriptUnit
	busy    map[rts.UnitID]bool
	claimed map[int]bool
	applied []rts.Fragment[int]
	time    int
	maxTime int
}

func newScriptWorld(maxTime int, units ...scriptUnit) *scriptWorld {
	return &scriptWorld{
		units:   units,
		busy:    make(map[rts.UnitID]bool),
		claimed: make(map[int]bool),
		maxTime: maxTime,
	}
}

// Mark the unit as executing a command, it has no options until the next tick
func (w *scriptWorld) setBusy(id rts.UnitID) *scriptWorld {
	w.busy[id] = true
	return w
}

func (w *scriptWorld) Clone() *scriptWorld {
	clone := &scriptWorld{
		units:   slices.Clone(w.units),
		busy:    make(map[rts.UnitID]bool, len(w.busy)),
		claimed: make(map[int]bool, len(w.claimed)),
		applied: slices.Clone(w.applied),
		time:    w.time,
		maxTime: w.maxTime,
	}
	for k, v := range w.busy {
		clone.busy[k] = v
	}
	for k, v := range w.claimed {
		clone.claimed[k] = v
	}
	return clone
}

func (w *scriptWorld) IsOver() bool {
	return w.time >= w.maxTime
}

func (w *scriptWorld) Winner() (rts.Side, bool) {
	return 0, false
}

func (w *scriptWorld) Units() []rts.UnitInfo {
	infos := make([]rts.UnitInfo, len(w.units))
	for i, u := range w.units {
		infos[i] = u.info
	}
	return infos
}

func (w *scriptWorld) LegalOptions(id rts.UnitID) []int {
	if w.IsOver() || w.busy[id] {
		return nil
	}
	for _, u := range w.units {
		if u.info.ID != id {
			continue
		}
		var legal []int
		for _, o := range u.options {
			if !w.claimed[o] {
				legal = append(legal, o)
			}
		}
		return legal
	}
	return nil
}

func (w *scriptWorld) Apply(action rts.JointAction[int]) bool {
	for _, f := range action.Fragments() {
		if !slices.Contains(w.LegalOptions(f.Unit), f.Command) {
			return false
		}
	}
	for _, f := range action.Fragments() {
		w.busy[f.Unit] = true
		w.claimed[f.Command] = true
		w.applied = append(w.applied, f)
	}
	return true
}

func (w *scriptWorld) Cycle() bool {
	w.time++
	clear(w.busy)
	clear(w.claimed)
	return w.IsOver()
}

func (w *scriptWorld) Time() int {
	return w.time
}

func (w *scriptWorld) NextChangeTime() int {
	for _, u := range w.units {
		if len(w.LegalOptions(u.info.ID)) > 0 {
			return w.time
		}
	}
	return w.time + 1
}

func (w *scriptWorld) sideOf(id rts.UnitID) rts.Side {
	for _, u := range w.units {
		if u.info.ID == id {
			return u.info.Side
		}
	}
	return rts.NeutralSide
}

// Average value of the commands issued by the side's units, 0.5 if none were issued
func valueScorer(values map[int]float64) rts.Scorer[*scriptWorld] {
	return func(w *scriptWorld, side rts.Side) float64 {
		total, n := 0.0, 0
		for _, f := range w.applied {
			if w.sideOf(f.Unit) == side {
				total += values[f.Command]
				n++
			}
		}
		if n == 0 {
			return 0.5
		}
		return total / float64(n)
	}
}

func newScriptPlanner(values map[int]float64) *Planner[int, *scriptWorld] {
	p := NewPlanner[int, *scriptWorld](valueScorer(values))
	p.Seed(42)
	return p
}

// Plan with a hand made tree, registering the world's units in order (unit i -> actor i+1)
func handPlan(world *scriptWorld, side rts.Side, order ...turn.ActorRef) *Plan[int] {
	registry := turn.NewRegistry()
	for _, u := range world.Units() {
		_, _ = registry.Register(u)
	}
	return &Plan[int]{
		ID:       "hand-made",
		Side:     side,
		Tree:     NewTree[int](),
		Registry: registry,
		Order:    order,
	}
}
