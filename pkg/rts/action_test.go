package rts

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJointActionAdd(t *testing.T) {
	action := JointAction[string]{}
	assert.True(t, action.IsEmpty())

	require.NoError(t, action.Add(Fragment[string]{Unit: 1, Command: "move"}))
	require.NoError(t, action.Add(Fragment[string]{Unit: 2, Command: "wait"}))

	err := action.Add(Fragment[string]{Unit: 1, Command: "attack"})
	require.Error(t, err)
	assert.True(t, IsInvariant(err, FragmentConflict))

	assert.Equal(t, 2, action.Len())
	command, ok := action.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "move", command, "the first fragment is kept")
	_, ok = action.Get(3)
	assert.False(t, ok)
	assert.Equal(t, "{1:move, 2:wait}", action.String())
}

func TestNewJointActionDropsConflicts(t *testing.T) {
	action := NewJointAction(
		Fragment[int]{Unit: 5, Command: 1},
		Fragment[int]{Unit: 5, Command: 2},
		Fragment[int]{Unit: 6, Command: 3},
	)
	assert.Equal(t, []Fragment[int]{{Unit: 5, Command: 1}, {Unit: 6, Command: 3}}, action.Fragments())
}

func TestJointActionMerge(t *testing.T) {
	a := NewJointAction(Fragment[int]{Unit: 1, Command: 10})
	b := NewJointAction(Fragment[int]{Unit: 2, Command: 20}, Fragment[int]{Unit: 3, Command: 30})

	merged, err := a.Merge(b)
	require.NoError(t, err)
	assert.Equal(t, 3, merged.Len())
	assert.Equal(t, 1, a.Len(), "receiver is not modified")

	conflicting := NewJointAction(Fragment[int]{Unit: 4, Command: 40}, Fragment[int]{Unit: 1, Command: 11})
	result, err := merged.Merge(conflicting)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvariant))
	assert.Equal(t, merged, result)

	var invariant *InvariantError
	require.True(t, errors.As(err, &invariant))
	assert.Equal(t, UnitID(1), invariant.Unit)
	assert.Equal(t, 11, invariant.Option)
}

func TestLowerCommand(t *testing.T) {
	fragment := LowerCommand[int, any](7, 3, nil)
	assert.Equal(t, Fragment[int]{Unit: 3, Command: 7}, fragment)
}
