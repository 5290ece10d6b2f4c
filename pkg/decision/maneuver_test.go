package decision

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManeuvers(t *testing.T) {
	ms, err := ParseManeuvers("SLu r\n")
	require.NoError(t, err)
	assert.Equal(t, []Maneuver{Straight, Left, UTurn, Right}, ms)
	assert.Equal(t, "SLUR", FormatManeuvers(ms))
}

func TestParseManeuvers_Rejects(t *testing.T) {
	for _, in := range []string{"SX", "S-L", "3"} {
		_, err := ParseManeuvers(in)
		assert.True(t, errors.Is(err, ErrUnknownManeuver), "input %q err %v", in, err)
	}
}

func TestManeuver_Text(t *testing.T) {
	b, err := UTurn.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "U", string(b))

	var m Maneuver
	require.NoError(t, m.UnmarshalText([]byte("l")))
	assert.Equal(t, Left, m)

	assert.Error(t, m.UnmarshalText([]byte("LL")))
	_, err = Maneuver('Q').MarshalText()
	assert.ErrorIs(t, err, ErrUnknownManeuver)
}

func TestManeuver_String(t *testing.T) {
	assert.Equal(t, "S", Straight.String())
	assert.Equal(t, "u-turn", UTurn.Name())
	assert.Equal(t, "Maneuver(0)", Maneuver(0).String())
}

func TestParseRule(t *testing.T) {
	tests := map[string]Rule{
		"right":      RightHand,
		"Right-Hand": RightHand,
		"lefthand":   LeftHand,
		" left ":     LeftHand,
		"L":          LeftHand,
	}
	for in, want := range tests {
		got, err := ParseRule(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseRule("wander")
	assert.ErrorIs(t, err, ErrUnknownRule)
}
