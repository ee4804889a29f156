package mcts

import (
	"math/rand"

	"github.com/IlikeChooros/go-mcts-rts/pkg/rts"
)

// Other types, which didn't fit to the tree or planner files

type MoveLike comparable
type BestChildPolicy int
type SeedGeneratorFnType func() int64

// Tree policy: picks one of the legal edges of the node. 'legal' holds indices into node.Edges,
// in ascending order, and is never empty. Must be deterministic for the same statistics.
type SelectionPolicy[T MoveLike] func(node *Node[T], legal []int) int

// Chooses an option for a unit outside of the tree: during rollouts, or while extracting
// the joint action for actors the search never reached. 'options' is never empty.
type RolloutPolicy[T MoveLike, W rts.World[T, W]] interface {
	Choose(world W, unit rts.UnitID, options []T, r *rand.Rand) T
}

// Uniformly random option
type RandomPolicy[T MoveLike, W rts.World[T, W]] struct{}

func (RandomPolicy[T, W]) Choose(_ W, _ rts.UnitID, options []T, r *rand.Rand) T {
	return options[r.Intn(len(options))]
}

// Always the first legal option, deterministic
type FirstOptionPolicy[T MoveLike, W rts.World[T, W]] struct{}

func (FirstOptionPolicy[T, W]) Choose(_ W, _ rts.UnitID, options []T, _ *rand.Rand) T {
	return options[0]
}

// Adapts a plain function to RolloutPolicy
type PolicyFunc[T MoveLike, W rts.World[T, W]] func(world W, unit rts.UnitID, options []T, r *rand.Rand) T

func (f PolicyFunc[T, W]) Choose(world W, unit rts.UnitID, options []T, r *rand.Rand) T {
	return f(world, unit, options, r)
}
