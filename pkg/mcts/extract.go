package mcts

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/rs/zerolog"

	"github.com/IlikeChooros/go-mcts-rts/pkg/rts"
	"github.com/IlikeChooros/go-mcts-rts/pkg/turn"
)

// Where an extracted option came from
type Source int

const (
	// Best option of the actor's decision point in the search tree
	FromTree Source = iota
	// The search never reached this actor on the chosen line, picked by the fallback policy
	FromFallback
)

func (s Source) String() string {
	if s == FromTree {
		return "tree"
	}
	return "fallback"
}

type ExtractStep[T MoveLike] struct {
	Actor  turn.ActorRef
	Unit   rts.UnitID
	Option T
	Source Source
	// Decision point the option was read from, NoKey for the fallback
	Key NodeKey
}

type Extraction[T MoveLike] struct {
	Action rts.JointAction[T]
	Steps  []ExtractStep[T]
}

// Number of actors decided by the tree / the fallback policy
func (e Extraction[T]) Count(source Source) int {
	n := 0
	for _, s := range e.Steps {
		if s.Source == source {
			n++
		}
	}
	return n
}

// Recomposes the requesting side's joint action from a finished search tree
type Extractor[T MoveLike, W rts.World[T, W]] struct {
	fallback RolloutPolicy[T, W]
	policy   BestChildPolicy
	lower    rts.Lowering[T, W]
	rand     *rand.Rand
	logger   zerolog.Logger
}

func NewExtractor[T MoveLike, W rts.World[T, W]]() *Extractor[T, W] {
	return &Extractor[T, W]{
		fallback: RandomPolicy[T, W]{},
		policy:   BestChildMostVisits,
		lower:    rts.LowerCommand[T, W],
		rand:     rand.New(rand.NewSource(SeedGeneratorFn() + 1)),
		logger:   zerolog.Nop(),
	}
}

// Policy for the actors outside of the explored tree
func (e *Extractor[T, W]) SetFallback(policy RolloutPolicy[T, W]) {
	if policy != nil {
		e.fallback = policy
	}
}

// Policy choosing the best option at the tree's decision points
func (e *Extractor[T, W]) SetBestChildPolicy(policy BestChildPolicy) {
	e.policy = policy
}

/*
Walk the tree from the root along the plan's decision order, composing the chosen options
of the requesting side's actors into one joint action.

For each actor:
  - tree hit: the current decision point belongs to the actor, take its best option and
    move the walk to that option's successor (if it was never expanded, the walk leaves the tree)
  - tree miss: the walk is past the tree, or on this line of play the actor lost its options
    and was skipped by the search, the fallback policy picks the option and the walk key is left as is

Other sides' actors don't contribute fragments, when their decision point is in the tree
the walk follows their best option. The chosen commands are applied to a scratch copy of the
snapshot, so that the fallback sees the options left after the earlier decisions.
*/
func (e *Extractor[T, W]) Extract(plan *Plan[T], world W) (Extraction[T], error) {
	result := Extraction[T]{Steps: make([]ExtractStep[T], 0, len(plan.Order))}
	if !plan.HasRoot() {
		return result, nil
	}

	logger := e.logger.With().Str("plan", plan.ID).Logger()
	scratch := world.Clone()
	key := RootKey

	for i, actor := range plan.Order {
		unit := plan.Registry.UnitOf(actor)
		node, hit := plan.Tree.StatisticsFor(key)

		if hit && len(node.Edges) == 0 {
			hit = false
		}
		if hit && node.Actor != actor {
			// The search skipped this actor, its decision point belongs to someone later
			if !slices.Contains(plan.Order[i+1:], node.Actor) {
				return result, &rts.InvariantError{
					Kind:    rts.ActorMismatch,
					Key:     int32(key),
					Actor:   int32(actor),
					Unit:    unit,
					Message: fmt.Sprintf("decision point belongs to actor %d, which is not scheduled", node.Actor),
				}
			}
			hit = false
		}

		if plan.Registry.OwnerOf(actor) != plan.Side {
			if !hit {
				continue
			}
			option, _ := plan.Tree.BestOption(key, e.policy)
			next, found, err := plan.Tree.SuccessorOf(key, option)
			if err != nil {
				return result, err
			}
			if !found {
				next = NoKey
			}
			key = next
			continue
		}

		step := ExtractStep[T]{Actor: actor, Unit: unit, Key: NoKey}
		if hit {
			option, _ := plan.Tree.BestOption(key, e.policy)
			next, found, err := plan.Tree.SuccessorOf(key, option)
			if err != nil {
				return result, err
			}

			step.Option, step.Source, step.Key = option, FromTree, key
			if !found {
				next = NoKey
			}
			key = next
		} else {
			options := scratch.LegalOptions(unit)
			if len(options) == 0 {
				continue
			}
			step.Option, step.Source = e.fallback.Choose(scratch, unit, options, e.rand), FromFallback
		}

		fragment := e.lower(step.Option, unit, world)
		if err := result.Action.Add(fragment); err != nil {
			return result, err
		}
		scratch.Apply(rts.NewJointAction(fragment))
		result.Steps = append(result.Steps, step)

		logger.Debug().
			Int32("actor", int32(actor)).
			Int64("unit", int64(unit)).
			Stringer("source", step.Source).
			Interface("option", step.Option).
			Msg("extracted option")
	}

	return result, nil
}
