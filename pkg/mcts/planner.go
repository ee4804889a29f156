package mcts

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/IlikeChooros/go-mcts-rts/pkg/rts"
	"github.com/IlikeChooros/go-mcts-rts/pkg/turn"
)

// Returned by Plan when the limits would let the search run forever
var ErrUnboundedBudget = errors.New("mcts: planning budget is unbounded, set at least one limit")

type TreeStats struct {
	cps    uint32
	cycles int
}

// Total number of episodes ran during the search
func (s *TreeStats) Cycles() int {
	return s.cycles
}

// Get cycles per second statistic
func (s *TreeStats) Cps() uint32 {
	return s.cps
}

// Outcome of one planning call: the search tree plus everything needed to read it back
type Plan[T MoveLike] struct {
	ID string
	// Requesting side
	Side rts.Side
	Tree *Tree[T]
	// Actors registered on the original snapshot
	Registry *turn.Registry
	// Decision order computed on the original snapshot, the root node belongs to Order[0]
	Order      []turn.ActorRef
	Cycles     int
	ElapsedMs  uint32
	StopReason StopReason
}

// Whether the plan has a search tree (the game was not over)
func (p *Plan[T]) HasRoot() bool {
	_, ok := p.Tree.StatisticsFor(RootKey)
	return ok
}

// One tree decision taken during an episode
type pathStep struct {
	key  NodeKey
	edge int
	side rts.Side
}

// Monte-Carlo planner over the scheduler's decision points.
// Every relevant collaborator is injected with setters, defaults are:
// UCB1 selection, random rollouts, plain command lowering, 'DefaultRolloutTicks'.
type Planner[T MoveLike, W rts.World[T, W]] struct {
	TreeStats
	Limiter      LimiterLike
	listener     *StatsListener[T]
	selection    SelectionPolicy[T]
	rollout      RolloutPolicy[T, W]
	scorer       rts.Scorer[W]
	lower        rts.Lowering[T, W]
	extractor    *Extractor[T, W]
	rolloutTicks int
	rand         *rand.Rand
	logger       zerolog.Logger
	path         []pathStep
	legalBuf     []int
}

func NewPlanner[T MoveLike, W rts.World[T, W]](scorer rts.Scorer[W]) *Planner[T, W] {
	listener := NewStatsListener[T]()
	p := &Planner[T, W]{
		Limiter:      NewLimiter(),
		listener:     &listener,
		selection:    NewUCB1[T](ExplorationParam).Select,
		rollout:      RandomPolicy[T, W]{},
		scorer:       scorer,
		lower:        rts.LowerCommand[T, W],
		rolloutTicks: DefaultRolloutTicks,
		rand:         rand.New(rand.NewSource(SeedGeneratorFn())),
		logger:       zerolog.Nop(),
	}
	p.extractor = NewExtractor[T, W]()
	p.extractor.lower = p.lower
	return p
}

func (p *Planner[T, W]) SetLimits(limits *Limits) {
	p.Limiter.SetLimits(limits)
}

func (p *Planner[T, W]) Limits() *Limits {
	return p.Limiter.Limits()
}

func (p *Planner[T, W]) SetListener(listener StatsListener[T]) {
	*p.listener = listener
}

func (p *Planner[T, W]) StatsListener() *StatsListener[T] {
	return p.listener
}

func (p *Planner[T, W]) SetSelectionPolicy(policy SelectionPolicy[T]) {
	if policy != nil {
		p.selection = policy
	}
}

func (p *Planner[T, W]) SetRolloutPolicy(policy RolloutPolicy[T, W]) {
	if policy != nil {
		p.rollout = policy
	}
}

func (p *Planner[T, W]) SetLowering(lower rts.Lowering[T, W]) {
	if lower != nil {
		p.lower = lower
		p.extractor.lower = lower
	}
}

// Maximum number of ticks simulated by a rollout, past the expanded node
func (p *Planner[T, W]) SetRolloutTicks(ticks int) {
	p.rolloutTicks = max(0, ticks)
}

func (p *Planner[T, W]) SetLogger(logger zerolog.Logger) {
	p.logger = logger
	p.extractor.logger = logger
}

// Reseed the planner's random number generator (and the extractor's)
func (p *Planner[T, W]) Seed(seed int64) {
	p.rand = rand.New(rand.NewSource(seed))
	p.extractor.rand = rand.New(rand.NewSource(seed + 1))
}

// Extractor used by Decide
func (p *Planner[T, W]) Extractor() *Extractor[T, W] {
	return p.extractor
}

// Search the decision points of the given snapshot, for the requesting side, until the budget
// is exhausted. The snapshot is never modified, every episode plays on its own fork.
func (p *Planner[T, W]) Plan(side rts.Side, world W) (*Plan[T], error) {
	if !p.Limiter.Limits().Bounded() {
		return nil, ErrUnboundedBudget
	}

	plan := &Plan[T]{
		ID:       uuid.NewString(),
		Side:     side,
		Tree:     NewTree[T](),
		Registry: turn.NewRegistry(),
	}
	logger := p.logger.With().Str("plan", plan.ID).Int("side", int(side)).Logger()

	// The requesting side always decides first, so its actors are contiguous
	// at the top of the tree
	scheduler := turn.NewScheduler[T, W](plan.Registry, turn.WithLead(side))
	if err := scheduler.Reset(world); err != nil {
		return nil, err
	}
	plan.Order = scheduler.Order()

	first, ok := scheduler.Current()
	if !ok {
		// Game over, nothing to search
		return plan, nil
	}
	plan.Tree.AddNode(first, world.LegalOptions(plan.Registry.UnitOf(first)), NoKey)

	p.Limiter.Reset()
	p.cycles = 0
	p.cps = 0

	for p.Limiter.Ok(uint32(plan.Tree.Size()), uint32(plan.Tree.MaxDepth()), uint32(p.cycles)) {
		if err := p.episode(plan.Tree, scheduler, world, logger); err != nil {
			logger.Error().Err(err).Int("cycles", p.cycles).Msg("search aborted")
			return nil, err
		}

		p.cycles++
		p.cps = uint32(p.cycles) * 1000 / p.Limiter.Elapsed()
		p.listener.invokeCycle(plan.Tree, &p.TreeStats, p.Limiter)
	}

	p.Limiter.EvaluateStopReason(uint32(plan.Tree.Size()), uint32(plan.Tree.MaxDepth()), uint32(p.cycles))
	plan.Cycles = p.cycles
	plan.ElapsedMs = p.Limiter.Elapsed()
	plan.StopReason = p.Limiter.StopReason()
	p.listener.invokeStop(plan.Tree, &p.TreeStats, p.Limiter)

	logger.Debug().
		Int("cycles", plan.Cycles).
		Int("size", plan.Tree.Size()).
		Int("maxdepth", plan.Tree.MaxDepth()).
		Uint32("elapsed_ms", plan.ElapsedMs).
		Stringer("stop_reason", plan.StopReason).
		Msg("search finished")

	return plan, nil
}

// Single simulation: selection, expansion, rollout and backpropagation,
// played on a private fork of the snapshot
func (p *Planner[T, W]) episode(tree *Tree[T], root *turn.Scheduler[T, W], world W, logger zerolog.Logger) error {
	fork := world.Clone()
	registry := root.Registry().Clone()
	scheduler := root.Clone(registry)

	p.path = p.path[:0]
	key := RootKey
	leaf := NoKey
	over := false

	// Selection & expansion
	for {
		node := tree.Node(key)
		actor, _ := scheduler.Current()
		if node.Actor != actor {
			return &rts.InvariantError{
				Kind:    rts.ActorMismatch,
				Key:     int32(key),
				Actor:   int32(actor),
				Unit:    rts.NoUnit,
				Message: fmt.Sprintf("decision point belongs to actor %d", node.Actor),
			}
		}

		// Reached a node that was never visited, roll out from here
		if key != RootKey && node.Stats.N() == 0 {
			leaf = key
			break
		}

		unit := registry.UnitOf(actor)
		p.legalBuf = node.legalEdges(fork.LegalOptions(unit), p.legalBuf)
		if len(p.legalBuf) == 0 {
			return &rts.InvariantError{
				Kind:    rts.NoLegalOption,
				Key:     int32(key),
				Actor:   int32(actor),
				Unit:    unit,
				Message: "none of the stored options is legal on this line of play",
			}
		}

		edge := p.selection(node, p.legalBuf)
		option := node.Edges[edge].Option
		p.path = append(p.path, pathStep{key: key, edge: edge, side: registry.OwnerOf(actor)})
		p.issue(fork, option, unit, logger)

		var err error
		if over, err = p.next(scheduler, fork); err != nil {
			return err
		}
		if over {
			break
		}

		next, found, err := tree.SuccessorOf(key, option)
		if err != nil {
			return err
		}
		if !found {
			nextActor, _ := scheduler.Current()
			next = tree.AddNode(nextActor, fork.LegalOptions(registry.UnitOf(nextActor)), key)
			tree.Link(key, option, next)
			leaf = next
			break
		}
		key = next
	}

	// Rollout
	var err error
	horizon := fork.Time() + p.rolloutTicks
	for !over && fork.Time() < horizon {
		actor, _ := scheduler.Current()
		unit := registry.UnitOf(actor)
		if options := fork.LegalOptions(unit); len(options) > 0 {
			p.issue(fork, p.rollout.Choose(fork, unit, options, p.rand), unit, logger)
		}
		if over, err = scheduler.Next(fork); err != nil {
			return err
		}
	}

	p.backpropagate(tree, fork, leaf)
	return nil
}

// Lower the option and submit it to the fork
func (p *Planner[T, W]) issue(fork W, option T, unit rts.UnitID, logger zerolog.Logger) {
	fragment := p.lower(option, unit, fork)
	if !fork.Apply(rts.NewJointAction(fragment)) {
		logger.Warn().Int64("unit", int64(unit)).Interface("option", option).Msg("world rejected the command")
	}
}

// Move the scheduler past the current actor, skipping actors that lost
// all of their options because of the earlier decisions in this tick
func (p *Planner[T, W]) next(scheduler *turn.Scheduler[T, W], fork W) (bool, error) {
	over, err := scheduler.Next(fork)
	for err == nil && !over {
		actor, _ := scheduler.Current()
		if len(fork.LegalOptions(scheduler.Registry().UnitOf(actor))) > 0 {
			break
		}
		over, err = scheduler.Next(fork)
	}
	return over, err
}

// Credit every decision on the path with the final score of the deciding side
func (p *Planner[T, W]) backpropagate(tree *Tree[T], fork W, leaf NodeKey) {
	scores := make(map[rts.Side]float64, 2)
	for _, step := range p.path {
		score, ok := scores[step.side]
		if !ok {
			score = p.scorer(fork, step.side)
			scores[step.side] = score
		}

		node := tree.Node(step.key)
		node.Stats.AddVisit()
		node.Edges[step.edge].Stats.AddQ(score)
	}

	if leaf != NoKey {
		tree.Node(leaf).Stats.AddVisit()
	}
}

// Plan and extract the joint action for the side. When limits is nil, the planner's
// current limits are used. Returns an empty joint action if the side can't act.
func (p *Planner[T, W]) Decide(side rts.Side, world W, limits *Limits) (rts.JointAction[T], error) {
	if limits != nil {
		p.SetLimits(limits)
	}
	if !CanAct[T](side, world) {
		return rts.JointAction[T]{}, nil
	}

	plan, err := p.Plan(side, world)
	if err != nil {
		return rts.JointAction[T]{}, err
	}

	extraction, err := p.extractor.Extract(plan, world)
	if err != nil {
		return rts.JointAction[T]{}, err
	}
	return extraction.Action, nil
}

// Whether any unit of the side has a legal option
func CanAct[T MoveLike, W rts.World[T, W]](side rts.Side, world W) bool {
	if world.IsOver() {
		return false
	}
	for _, u := range world.Units() {
		if u.Side == side && len(world.LegalOptions(u.ID)) > 0 {
			return true
		}
	}
	return false
}
