package bench

import (
	"math/rand"

	"github.com/IlikeChooros/go-mcts-rts/pkg/mcts"
	"github.com/IlikeChooros/go-mcts-rts/pkg/rts"
)

// Anything producing a side's joint action for a world snapshot.
// A player is used by a single worker at a time, Clone gives every worker its own copy.
type Player[T mcts.MoveLike, W rts.World[T, W]] interface {
	Name() string
	Decide(side rts.Side, world W) (rts.JointAction[T], error)
	Clone() Player[T, W]
}

// Player backed by the Monte-Carlo planner
type PlannerPlayer[T mcts.MoveLike, W rts.World[T, W]] struct {
	name       string
	newPlanner func() *mcts.Planner[T, W]
	planner    *mcts.Planner[T, W]
	limits     mcts.Limits
}

// 'newPlanner' is called once per clone, planners are never shared between workers
func NewPlannerPlayer[T mcts.MoveLike, W rts.World[T, W]](name string, limits *mcts.Limits, newPlanner func() *mcts.Planner[T, W]) *PlannerPlayer[T, W] {
	return &PlannerPlayer[T, W]{
		name:       name,
		newPlanner: newPlanner,
		planner:    newPlanner(),
		limits:     *limits,
	}
}

func (p *PlannerPlayer[T, W]) Name() string {
	return p.name
}

func (p *PlannerPlayer[T, W]) Planner() *mcts.Planner[T, W] {
	return p.planner
}

func (p *PlannerPlayer[T, W]) Decide(side rts.Side, world W) (rts.JointAction[T], error) {
	limits := p.limits
	return p.planner.Decide(side, world, &limits)
}

func (p *PlannerPlayer[T, W]) Clone() Player[T, W] {
	limits := p.limits
	return NewPlannerPlayer(p.name, &limits, p.newPlanner)
}

// Picks a uniformly random legal option for every unit of the side
type RandomPlayer[T mcts.MoveLike, W rts.World[T, W]] struct {
	rand   *rand.Rand
	policy mcts.RandomPolicy[T, W]
}

func NewRandomPlayer[T mcts.MoveLike, W rts.World[T, W]](seed int64) *RandomPlayer[T, W] {
	return &RandomPlayer[T, W]{rand: rand.New(rand.NewSource(seed))}
}

func (p *RandomPlayer[T, W]) Name() string {
	return "random"
}

// Units decide in snapshot order, each one on a scratch copy with the earlier commands applied
func (p *RandomPlayer[T, W]) Decide(side rts.Side, world W) (rts.JointAction[T], error) {
	action := rts.JointAction[T]{}
	scratch := world.Clone()

	for _, u := range world.Units() {
		if u.Side != side {
			continue
		}
		options := scratch.LegalOptions(u.ID)
		if len(options) == 0 {
			continue
		}

		fragment := rts.LowerCommand(p.policy.Choose(scratch, u.ID, options, p.rand), u.ID, scratch)
		if err := action.Add(fragment); err != nil {
			return rts.JointAction[T]{}, err
		}
		scratch.Apply(rts.NewJointAction(fragment))
	}
	return action, nil
}

func (p *RandomPlayer[T, W]) Clone() Player[T, W] {
	return NewRandomPlayer[T, W](p.rand.Int63())
}
