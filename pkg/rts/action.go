package rts

import (
	"fmt"
	"strings"
)

// Single unit's part of a joint action
type Fragment[C comparable] struct {
	Unit    UnitID
	Command C
}

func (f Fragment[C]) String() string {
	return fmt.Sprintf("%d:%v", f.Unit, f.Command)
}

// Every acting unit's chosen command for one side, submitted together to the world.
// Holds at most one fragment per unit. The zero value is an empty (no-op) joint action.
type JointAction[C comparable] struct {
	fragments []Fragment[C]
}

func NewJointAction[C comparable](fragments ...Fragment[C]) JointAction[C] {
	action := JointAction[C]{}
	for _, f := range fragments {
		// Conflicts are silently dropped here, use Add to detect them
		_ = action.Add(f)
	}
	return action
}

// Add a fragment, fails if the unit already has one
func (a *JointAction[C]) Add(fragment Fragment[C]) error {
	if _, ok := a.Get(fragment.Unit); ok {
		return &InvariantError{
			Kind:    FragmentConflict,
			Key:     -1,
			Unit:    fragment.Unit,
			Option:  fragment.Command,
			Message: "unit already has a fragment in this joint action",
		}
	}
	a.fragments = append(a.fragments, fragment)
	return nil
}

// Merge other joint action into this one, fails without modifying the receiver
// if both contain a fragment for the same unit
func (a JointAction[C]) Merge(other JointAction[C]) (JointAction[C], error) {
	merged := JointAction[C]{fragments: make([]Fragment[C], 0, a.Len()+other.Len())}
	merged.fragments = append(merged.fragments, a.fragments...)
	for _, f := range other.fragments {
		if err := merged.Add(f); err != nil {
			return a, err
		}
	}
	return merged, nil
}

// Command assigned to the unit
func (a JointAction[C]) Get(unit UnitID) (C, bool) {
	for _, f := range a.fragments {
		if f.Unit == unit {
			return f.Command, true
		}
	}
	var zero C
	return zero, false
}

func (a JointAction[C]) Fragments() []Fragment[C] {
	return a.fragments
}

func (a JointAction[C]) Len() int {
	return len(a.fragments)
}

func (a JointAction[C]) IsEmpty() bool {
	return len(a.fragments) == 0
}

func (a JointAction[C]) String() string {
	parts := make([]string, len(a.fragments))
	for i, f := range a.fragments {
		parts[i] = f.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Lowers a chosen decision option, played by given unit, back into a joint action fragment
type Lowering[C comparable, W any] func(option C, unit UnitID, world W) Fragment[C]

// Default lowering, the option is the unit's command itself
func LowerCommand[C comparable, W any](option C, unit UnitID, _ W) Fragment[C] {
	return Fragment[C]{Unit: unit, Command: option}
}
