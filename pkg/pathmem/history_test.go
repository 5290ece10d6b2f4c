package pathmem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-mazerunner/pkg/decision"
)

func TestHistory_Append(t *testing.T) {
	h := NewHistory(0)
	assert.Equal(t, DefaultCapacity, h.Cap())

	require.NoError(t, h.Append(decision.Straight))
	require.NoError(t, h.Append(decision.UTurn))
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, "SU", h.String())
}

func TestHistory_CapacityExceeded(t *testing.T) {
	h := NewHistory(2)
	require.NoError(t, h.Append(decision.Left))
	require.NoError(t, h.Append(decision.Right))

	err := h.Append(decision.Straight)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, 2, h.Len())
}

func TestHistory_Frozen(t *testing.T) {
	h := NewHistory(4)
	require.NoError(t, h.Append(decision.Left))
	h.Freeze()

	assert.True(t, h.Frozen())
	assert.ErrorIs(t, h.Append(decision.Right), ErrFrozen)
	assert.Equal(t, 1, h.Len())
}

func TestHistory_RejectsInvalid(t *testing.T) {
	h := NewHistory(4)
	assert.ErrorIs(t, h.Append(decision.Maneuver('X')), decision.ErrUnknownManeuver)
	assert.Zero(t, h.Len())
}

func TestHistory_ManeuversIsCopy(t *testing.T) {
	h := NewHistory(4)
	require.NoError(t, h.Append(decision.Left))

	ms := h.Maneuvers()
	ms[0] = decision.Right
	assert.Equal(t, "L", h.String())
}

func TestCursor(t *testing.T) {
	p, err := ParsePath("LS")
	require.NoError(t, err)

	c := NewCursor(p)
	assert.False(t, c.Done())
	assert.Equal(t, 2, c.Remaining())

	m, ok := c.Next()
	assert.True(t, ok)
	assert.Equal(t, decision.Left, m)

	m, ok = c.Next()
	assert.True(t, ok)
	assert.Equal(t, decision.Straight, m)

	assert.True(t, c.Done())
	assert.Equal(t, 2, c.Consumed())

	_, ok = c.Next()
	assert.False(t, ok)
	assert.Equal(t, 2, c.Consumed())
}

func TestPath_Text(t *testing.T) {
	var p Path
	require.NoError(t, p.UnmarshalText([]byte("rsl")))
	assert.Equal(t, "RSL", p.String())

	b, err := p.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "RSL", string(b))

	assert.Error(t, p.UnmarshalText([]byte("RXL")))
}
