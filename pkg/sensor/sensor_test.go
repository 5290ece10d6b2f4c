package sensor

import "testing"

func TestInterpret_CenteredLine(t *testing.T) {
	in := NewInterpreter(DarkLine)
	r := in.Interpret(Frame{0, 0, 1000, 0, 0})

	if r.Position != Midpoint {
		t.Errorf("Position = %d, want %d", r.Position, Midpoint)
	}
	if r.Deviation() != 0 {
		t.Errorf("Deviation = %d, want 0", r.Deviation())
	}
	if r.Left || !r.Center || r.Right {
		t.Errorf("flags = %v/%v/%v, want false/true/false", r.Left, r.Center, r.Right)
	}
}

func TestInterpret_WeightedCentroid(t *testing.T) {
	in := NewInterpreter(DarkLine)

	// Line between center and center-right sensors.
	r := in.Interpret(Frame{0, 0, 500, 500, 0})
	if r.Position != 2500 {
		t.Errorf("Position = %d, want 2500", r.Position)
	}

	// Noise below the floor does not pull the estimate.
	r = in.Interpret(Frame{40, 0, 1000, 0, 40})
	if r.Position != Midpoint {
		t.Errorf("Position with noise = %d, want %d", r.Position, Midpoint)
	}
}

func TestInterpret_LostLineSaturates(t *testing.T) {
	in := NewInterpreter(DarkLine)

	// Last seen on the left.
	in.Interpret(Frame{1000, 200, 0, 0, 0})
	r := in.Interpret(Frame{})
	if r.Position != 0 {
		t.Errorf("lost after left: Position = %d, want 0", r.Position)
	}

	// Last seen on the right.
	in.Interpret(Frame{0, 0, 0, 300, 1000})
	r = in.Interpret(Frame{})
	if r.Position != 2*Midpoint {
		t.Errorf("lost after right: Position = %d, want %d", r.Position, 2*Midpoint)
	}
	if r.Left || r.Center || r.Right {
		t.Error("empty frame must clear every presence flag")
	}
}

func TestInterpret_SaturatedFrame(t *testing.T) {
	in := NewInterpreter(DarkLine)
	r := in.Interpret(Frame{1000, 1000, 1000, 1000, 1000})

	if r.Position != Midpoint {
		t.Errorf("Position = %d, want %d", r.Position, Midpoint)
	}
	if !r.Full() {
		t.Error("saturated frame should report a full branch")
	}
}

func TestInterpret_LightLineInverts(t *testing.T) {
	dark := NewInterpreter(DarkLine)
	light := NewInterpreter(LightLine)

	raw := Frame{1000, 900, 0, 900, 1000}
	d := dark.Interpret(raw)
	l := light.Interpret(raw)

	if !d.Left || d.Center || !d.Right {
		t.Errorf("dark flags = %v/%v/%v, want true/false/true", d.Left, d.Center, d.Right)
	}
	if l.Left || !l.Center || l.Right {
		t.Errorf("light flags = %v/%v/%v, want false/true/false", l.Left, l.Center, l.Right)
	}
	if l.Values != (Frame{0, 100, 1000, 100, 0}) {
		t.Errorf("light values = %v", l.Values)
	}
	if l.Position != Midpoint {
		t.Errorf("light Position = %d, want %d", l.Position, Midpoint)
	}
}

func TestInterpret_ThresholdIsStrict(t *testing.T) {
	in := NewInterpreter(DarkLine)
	r := in.Interpret(Frame{700, 0, 701, 0, 700})
	if r.Left || r.Right {
		t.Error("700 is not above the presence threshold")
	}
	if !r.Center {
		t.Error("701 should count as present")
	}
}

func TestReading_CenterWide(t *testing.T) {
	in := NewInterpreter(DarkLine)
	r := in.Interpret(Frame{0, 800, 300, 0, 0})
	if r.Center {
		t.Fatal("center channel alone is below threshold")
	}
	if !r.CenterWide() {
		t.Error("CenterWide should accept the center-left channel")
	}
}

func TestParsePolarity(t *testing.T) {
	tests := []struct {
		in   string
		want Polarity
		ok   bool
	}{
		{"black", DarkLine, true},
		{" White ", LightLine, true},
		{"light", LightLine, true},
		{"dark", DarkLine, true},
		{"grey", DarkLine, false},
	}
	for _, tt := range tests {
		got, err := ParsePolarity(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParsePolarity(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePolarity(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
