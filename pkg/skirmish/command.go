package skirmish

import (
	"fmt"

	"github.com/IlikeChooros/go-mcts-rts/pkg/rts"
)

type ActionType int8

const (
	ActionWait ActionType = iota
	ActionMove
	ActionAttack
	ActionProduce
)

var actionNames = [...]string{"wait", "move", "attack", "produce"}

func (t ActionType) String() string {
	if int(t) < len(actionNames) {
		return actionNames[t]
	}
	return fmt.Sprintf("ActionType(%d)", t)
}

type Direction int8

const (
	Up Direction = iota
	Right
	Down
	Left
)

var (
	directionNames = [...]string{"up", "right", "down", "left"}
	dx             = [...]int{0, 1, 0, -1}
	dy             = [...]int{-1, 0, 1, 0}
)

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("Direction(%d)", d)
}

// Low-level unit command, comparable so it can be used directly as a decision option
type Command struct {
	Type   ActionType
	Dir    Direction  // move, produce
	Target rts.UnitID // attack
}

func Wait() Command {
	return Command{Type: ActionWait}
}

func Move(dir Direction) Command {
	return Command{Type: ActionMove, Dir: dir}
}

func Attack(target rts.UnitID) Command {
	return Command{Type: ActionAttack, Target: target}
}

func Produce(dir Direction) Command {
	return Command{Type: ActionProduce, Dir: dir}
}

func (c Command) String() string {
	switch c.Type {
	case ActionMove, ActionProduce:
		return fmt.Sprintf("%s(%s)", c.Type, c.Dir)
	case ActionAttack:
		return fmt.Sprintf("%s(%d)", c.Type, c.Target)
	}
	return c.Type.String()
}

// Number of ticks the command keeps the unit busy
func (c Command) Duration() int {
	switch c.Type {
	case ActionMove:
		return MoveTicks
	case ActionAttack:
		return AttackTicks
	case ActionProduce:
		return ProduceTicks
	}
	return WaitTicks
}
