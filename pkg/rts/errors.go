package rts

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel wrapped by every modelling-invariant violation.
// These are logic or data defects, never transient, and must not be retried.
var ErrInvariant = errors.New("modelling invariant violated")

type InvariantKind int

const (
	// More than one successor recorded for a (decision point, option) pair
	MultipleSuccessors InvariantKind = iota + 1
	// No actor can decide, but the game is not over
	EmptyOrder
	// Unit reported with a different side than the one it was registered with
	SideMismatch
	// Decision point belongs to a different actor than the scheduler expects
	ActorMismatch
	// None of the options stored at a decision point is legal anymore
	NoLegalOption
	// Two fragments for the same unit in a joint action
	FragmentConflict
)

func (k InvariantKind) String() string {
	switch k {
	case MultipleSuccessors:
		return "MultipleSuccessors"
	case EmptyOrder:
		return "EmptyOrder"
	case SideMismatch:
		return "SideMismatch"
	case ActorMismatch:
		return "ActorMismatch"
	case NoLegalOption:
		return "NoLegalOption"
	case FragmentConflict:
		return "FragmentConflict"
	}
	return fmt.Sprintf("InvariantKind(%d)", int(k))
}

// Fatal modelling violation, with enough context to diagnose a broken
// world, action abstraction or scheduler implementation.
// Key, Actor and Unit are -1, 0 and NoUnit when not applicable.
type InvariantError struct {
	Kind    InvariantKind
	Key     int32
	Actor   int32
	Unit    UnitID
	Option  any
	Message string
}

func (e *InvariantError) Error() string {
	ctx := make([]string, 0, 4)
	if e.Key >= 0 {
		ctx = append(ctx, fmt.Sprintf("node=%d", e.Key))
	}
	if e.Actor > 0 {
		ctx = append(ctx, fmt.Sprintf("actor=%d", e.Actor))
	}
	if e.Unit != NoUnit {
		ctx = append(ctx, fmt.Sprintf("unit=%d", e.Unit))
	}
	if e.Option != nil {
		ctx = append(ctx, fmt.Sprintf("option=%v", e.Option))
	}

	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if len(ctx) > 0 {
		msg += " (" + strings.Join(ctx, " ") + ")"
	}
	return msg
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariant
}

// Reports whether err is an invariant violation of given kind
func IsInvariant(err error, kind InvariantKind) bool {
	var ie *InvariantError
	return errors.As(err, &ie) && ie.Kind == kind
}
