package layers

import (
	"math"
	"testing"
)

func TestSigmoid(t *testing.T) {
	s := Sigmoid{}
	if got := s.Activate(0); got != 0.5 {
		t.Fatalf("sigmoid(0) = %f, want 0.5", got)
	}
	if got := s.Activate(10); got < 0.9999 {
		t.Fatalf("sigmoid(10) = %f, want ~1", got)
	}
	if got := s.Activate(-10); got > 0.0001 {
		t.Fatalf("sigmoid(-10) = %f, want ~0", got)
	}
}

func TestTanh(t *testing.T) {
	a := Tanh{}
	if got := a.Activate(0.5); math.Abs(got-math.Tanh(0.5)) > 1e-15 {
		t.Fatalf("tanh(0.5) = %f", got)
	}
}

func TestActivatorLookup(t *testing.T) {
	for _, name := range []string{"sigmoid", "tanh"} {
		act, ok := ActivatorLookup[name]
		if !ok {
			t.Fatalf("missing activator %q", name)
		}
		if act.String() != name {
			t.Errorf("activator %q reports name %q", name, act.String())
		}
	}
}
