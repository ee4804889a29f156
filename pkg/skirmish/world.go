package skirmish

import (
	"slices"
	"strings"

	"github.com/IlikeChooros/go-mcts-rts/pkg/rts"
)

/*
Small deterministic grid RTS, meant as a world simulation for the planner:
two sides, bases producing soldiers, soldiers moving and attacking adjacent enemies.
Every command keeps the unit busy for a number of ticks, busy units can't decide.
*/

const (
	WaitTicks    = 1
	MoveTicks    = 1
	AttackTicks  = 2
	ProduceTicks = 4

	BaseHP        = 10
	SoldierHP     = 4
	AttackDamage  = 1
	SoldierCost   = 3
	DefaultWidth  = 8
	DefaultHeight = 8
	DefaultTicks  = 400
)

type UnitKind int8

const (
	Base UnitKind = iota
	Soldier
)

type Unit struct {
	ID   rts.UnitID
	Side rts.Side
	Kind UnitKind
	X, Y int
	HP   int

	busy   bool
	doneAt int
	cmd    Command
	// Destination cell of a pending move or production
	destX, destY int
}

// Whether the unit is executing a command
func (u *Unit) Busy() bool {
	return u.busy
}

func (u *Unit) Pending() (Command, bool) {
	return u.cmd, u.busy
}

type Config struct {
	Width, Height int
	MaxTicks      int
	// Starting resources of every side
	Resources int
}

func DefaultConfig() Config {
	return Config{
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		MaxTicks:  DefaultTicks,
		Resources: 2 * SoldierCost,
	}
}

type World struct {
	cfg       Config
	units     []Unit // sorted by ID
	resources map[rts.Side]int
	time      int
	nextID    rts.UnitID
}

// Empty world, use Spawn to place units
func New(cfg Config) *World {
	return &World{
		cfg:       cfg,
		units:     make([]Unit, 0, 16),
		resources: make(map[rts.Side]int),
		nextID:    1,
	}
}

// Standard opening: a base and two soldiers for each side in opposite corners
func NewStandard(cfg Config) *World {
	w := New(cfg)
	w.SetResources(0, cfg.Resources)
	w.SetResources(1, cfg.Resources)

	maxX, maxY := cfg.Width-1, cfg.Height-1
	w.Spawn(0, Base, 0, 0)
	w.Spawn(0, Soldier, 1, 0)
	w.Spawn(0, Soldier, 0, 1)
	w.Spawn(1, Base, maxX, maxY)
	w.Spawn(1, Soldier, maxX-1, maxY)
	w.Spawn(1, Soldier, maxX, maxY-1)
	return w
}

// Place new idle unit, doesn't check whether the cell is free
func (w *World) Spawn(side rts.Side, kind UnitKind, x, y int) rts.UnitID {
	hp := SoldierHP
	if kind == Base {
		hp = BaseHP
	}
	id := w.nextID
	w.nextID++
	w.units = append(w.units, Unit{ID: id, Side: side, Kind: kind, X: x, Y: y, HP: hp})
	return id
}

func (w *World) SetResources(side rts.Side, amount int) {
	w.resources[side] = amount
}

func (w *World) Resources(side rts.Side) int {
	return w.resources[side]
}

func (w *World) Config() Config {
	return w.cfg
}

// Get the unit with given id
func (w *World) Unit(id rts.UnitID) (*Unit, bool) {
	i, ok := slices.BinarySearchFunc(w.units, id, func(u Unit, id rts.UnitID) int {
		return int(u.ID - id)
	})
	if !ok {
		return nil, false
	}
	return &w.units[i], true
}

func (w *World) Clone() *World {
	clone := &World{
		cfg:       w.cfg,
		units:     slices.Clone(w.units),
		resources: make(map[rts.Side]int, len(w.resources)),
		time:      w.time,
		nextID:    w.nextID,
	}
	for side, amount := range w.resources {
		clone.resources[side] = amount
	}
	return clone
}

func (w *World) alive(side rts.Side) bool {
	for i := range w.units {
		if w.units[i].Side == side {
			return true
		}
	}
	return false
}

func (w *World) IsOver() bool {
	return w.time >= w.cfg.MaxTicks || !w.alive(0) || !w.alive(1)
}

func (w *World) Winner() (rts.Side, bool) {
	alive0, alive1 := w.alive(0), w.alive(1)
	switch {
	case alive0 && !alive1:
		return 0, true
	case alive1 && !alive0:
		return 1, true
	case !alive0 && !alive1:
		return rts.NeutralSide, false
	}

	if w.time < w.cfg.MaxTicks {
		return rts.NeutralSide, false
	}

	// Timeout, the side with more hit points left wins
	hp0, hp1 := w.HP(0), w.HP(1)
	if hp0 == hp1 {
		return rts.NeutralSide, false
	}
	if hp0 > hp1 {
		return 0, true
	}
	return 1, true
}

// Sum of hit points of the side's units
func (w *World) HP(side rts.Side) int {
	hp := 0
	for i := range w.units {
		if w.units[i].Side == side {
			hp += w.units[i].HP
		}
	}
	return hp
}

func (w *World) Units() []rts.UnitInfo {
	infos := make([]rts.UnitInfo, len(w.units))
	for i := range w.units {
		infos[i] = rts.UnitInfo{ID: w.units[i].ID, Side: w.units[i].Side}
	}
	return infos
}

func (w *World) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < w.cfg.Width && y < w.cfg.Height
}

// Cell is inside the board, not occupied and not reserved by a pending move/production
func (w *World) free(x, y int) bool {
	if !w.inBounds(x, y) {
		return false
	}
	for i := range w.units {
		u := &w.units[i]
		if u.X == x && u.Y == y {
			return false
		}
		if u.busy && (u.cmd.Type == ActionMove || u.cmd.Type == ActionProduce) && u.destX == x && u.destY == y {
			return false
		}
	}
	return true
}

func (w *World) unitAt(x, y int) *Unit {
	for i := range w.units {
		if w.units[i].X == x && w.units[i].Y == y {
			return &w.units[i]
		}
	}
	return nil
}

func (w *World) LegalOptions(id rts.UnitID) []Command {
	u, ok := w.Unit(id)
	if !ok || u.busy || w.IsOver() {
		return nil
	}

	options := make([]Command, 0, 9)
	options = append(options, Wait())

	switch u.Kind {
	case Soldier:
		for d := Up; d <= Left; d++ {
			if w.free(u.X+dx[d], u.Y+dy[d]) {
				options = append(options, Move(d))
			}
		}
		for d := Up; d <= Left; d++ {
			if other := w.unitAt(u.X+dx[d], u.Y+dy[d]); other != nil && other.Side != u.Side {
				options = append(options, Attack(other.ID))
			}
		}
	case Base:
		if w.resources[u.Side] >= SoldierCost {
			for d := Up; d <= Left; d++ {
				if w.free(u.X+dx[d], u.Y+dy[d]) {
					options = append(options, Produce(d))
				}
			}
		}
	}
	return options
}

// Issue the command, assumes it's legal
func (w *World) issue(u *Unit, cmd Command) {
	u.busy = true
	u.cmd = cmd
	u.doneAt = w.time + cmd.Duration()
	switch cmd.Type {
	case ActionMove, ActionProduce:
		u.destX, u.destY = u.X+dx[cmd.Dir], u.Y+dy[cmd.Dir]
	}
	if cmd.Type == ActionProduce {
		w.resources[u.Side] -= SoldierCost
	}
}

// Applies every fragment in order, each must be legal at the time it's issued.
// If any of them is not, the world is left untouched.
func (w *World) Apply(action rts.JointAction[Command]) bool {
	next := w.Clone()
	for _, f := range action.Fragments() {
		if !slices.Contains(next.LegalOptions(f.Unit), f.Command) {
			return false
		}
		u, _ := next.Unit(f.Unit)
		next.issue(u, f.Command)
	}
	*w = *next
	return true
}

// Advance the clock by one tick, resolving the commands that finished
func (w *World) Cycle() bool {
	if w.IsOver() {
		return true
	}

	w.time++
	spawned := make([]Unit, 0)
	for i := range w.units {
		u := &w.units[i]
		if !u.busy || u.doneAt > w.time {
			continue
		}

		switch u.cmd.Type {
		case ActionMove:
			u.X, u.Y = u.destX, u.destY
		case ActionAttack:
			if t, ok := w.Unit(u.cmd.Target); ok && abs(t.X-u.X)+abs(t.Y-u.Y) == 1 {
				t.HP -= AttackDamage
			}
		case ActionProduce:
			spawned = append(spawned, Unit{Side: u.Side, Kind: Soldier, X: u.destX, Y: u.destY, HP: SoldierHP})
		}
		u.busy = false
	}

	w.units = slices.DeleteFunc(w.units, func(u Unit) bool { return u.HP <= 0 })
	for _, s := range spawned {
		w.Spawn(s.Side, s.Kind, s.X, s.Y)
	}

	return w.IsOver()
}

func (w *World) Time() int {
	return w.time
}

func (w *World) NextChangeTime() int {
	next := -1
	for i := range w.units {
		u := &w.units[i]
		if !u.busy {
			return w.time
		}
		if next == -1 || u.doneAt < next {
			next = u.doneAt
		}
	}
	if next == -1 {
		return w.time
	}
	return next
}

// Board as text, upper case for side 0, lower case for side 1
func (w *World) String() string {
	var sb strings.Builder
	for y := range w.cfg.Height {
		for x := range w.cfg.Width {
			sb.WriteByte(w.Glyph(x, y))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Character representing given cell
func (w *World) Glyph(x, y int) byte {
	u := w.unitAt(x, y)
	if u == nil {
		return '.'
	}
	glyph := byte('S')
	if u.Kind == Base {
		glyph = 'B'
	}
	if u.Side != 0 {
		glyph += 'a' - 'A'
	}
	return glyph
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Normalized evaluation, 1 = win for the side, 0 = loss,
// otherwise the side's share of the remaining hit points
func Score(w *World, side rts.Side) float64 {
	if w.IsOver() {
		winner, ok := w.Winner()
		switch {
		case !ok:
			return 0.5
		case winner == side:
			return 1
		default:
			return 0
		}
	}

	opponent := rts.Side(1)
	if side == 1 {
		opponent = 0
	}
	mine, theirs := float64(w.HP(side)), float64(w.HP(opponent))
	if mine+theirs == 0 {
		return 0.5
	}
	return mine / (mine + theirs)
}

var _ rts.World[Command, *World] = (*World)(nil)
var _ rts.Scorer[*World] = Score
