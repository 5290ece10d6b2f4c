package steering

import (
	"testing"

	"github.com/teslashibe/go-mazerunner/pkg/sensor"
)

func TestPDController_ProportionalTerm(t *testing.T) {
	pd := NewPDController(DefaultConfig())

	// First cycle: derivative sees the full step from zero.
	// dev=400: 400*64/256 + 400*256/256 = 100 + 400
	if u := pd.Update(sensor.Midpoint + 400); u != 500 {
		t.Errorf("first Update = %d, want 500", u)
	}
	// Same deviation again: derivative term vanishes.
	if u := pd.Update(sensor.Midpoint + 400); u != 100 {
		t.Errorf("steady Update = %d, want 100", u)
	}
	if pd.LastDeviation() != 400 {
		t.Errorf("LastDeviation = %d, want 400", pd.LastDeviation())
	}
}

func TestPDController_Centered(t *testing.T) {
	pd := NewPDController(DefaultConfig())
	for i := 0; i < 3; i++ {
		if u := pd.Update(sensor.Midpoint); u != 0 {
			t.Fatalf("cycle %d: Update = %d, want 0", i, u)
		}
	}
}

func TestPDController_TruncatesTowardZero(t *testing.T) {
	pd := PDController{Kp: 64, Kd: 0, Scale: 256}
	// -3*64/256 = -0.75 -> 0
	if u := pd.Update(sensor.Midpoint - 3); u != 0 {
		t.Errorf("Update = %d, want 0", u)
	}
}

func TestPDController_Reset(t *testing.T) {
	pd := NewPDController(DefaultConfig())
	pd.Update(sensor.Midpoint - 800)
	pd.Reset()
	if pd.LastDeviation() != 0 {
		t.Errorf("LastDeviation after Reset = %d", pd.LastDeviation())
	}
}

func TestWheelSpeeds_Clamp(t *testing.T) {
	tests := []struct {
		name        string
		u           int
		left, right int
	}{
		{"centered", 0, 60, 60},
		{"line right", 10, 60, 50},
		{"line left", -10, 50, 60},
		{"hard right", 500, 60, 42},
		{"hard left", -500, 42, 60},
	}
	for _, tt := range tests {
		l, r := WheelSpeeds(60, 42, tt.u)
		if l != tt.left || r != tt.right {
			t.Errorf("%s: WheelSpeeds(u=%d) = (%d, %d), want (%d, %d)", tt.name, tt.u, l, r, tt.left, tt.right)
		}
	}
}

func TestConfig_MinSpeed(t *testing.T) {
	if got := DefaultConfig().MinSpeed(); got != 42 {
		t.Errorf("MinSpeed = %d, want 42", got)
	}
	if got := CautiousConfig().MinSpeed(); got != 28 {
		t.Errorf("cautious MinSpeed = %d, want 28", got)
	}
}
