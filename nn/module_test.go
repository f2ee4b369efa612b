package nn

import (
	"errors"
	"testing"

	"gru_lib/nn/layers"
	"gru_lib/tensor"
)

// dummy layer: scales every element, keeps no state
type scaleLayer struct{ c float64 }

func (l *scaleLayer) Forward(input interface{}) (interface{}, error) {
	x, ok := input.(*tensor.Tensor)
	if !ok {
		return nil, errors.New("scaleLayer expects *tensor.Tensor input")
	}
	out := x.Clone()
	for i := range out.Data {
		out.Data[i] *= l.c
	}
	return out, nil
}
func (l *scaleLayer) Stateful() bool                { return false }
func (l *scaleLayer) ResetState(slots ...int) error { return nil }
func (l *scaleLayer) Tag() string                   { return "scale" }

func mustGRU(t *testing.T, stateful bool) *layers.GRU {
	t.Helper()
	g, err := layers.NewGRU(2, 1, 3, stateful, nil)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestSequentialForward(t *testing.T) {
	g := mustGRU(t, true)
	model := &Sequential{Layers: []Module{g}}

	batch, err := tensor.NewBatch(2, 4, 1, []float64{1, 2, 3, 4, -1, -2, -3, -4})
	if err != nil {
		t.Fatal(err)
	}
	out, err := model.Forward(batch)
	if err != nil {
		t.Fatal(err)
	}
	res, ok := out.(*tensor.Tensor)
	if !ok {
		t.Fatalf("expected *tensor.Tensor output, got %T", out)
	}
	if len(res.Shape) != 2 || res.Shape[0] != 2 || res.Shape[1] != 3 {
		t.Fatalf("unexpected output shape %v", res.Shape)
	}
}

func TestSequentialLayerLookup(t *testing.T) {
	g := mustGRU(t, true)
	g.SetTag("stateful_rnn")
	model := &Sequential{Layers: []Module{&scaleLayer{c: 2}, g}}

	if model.Layer("stateful_rnn") != Module(g) {
		t.Fatal("Layer lookup by tag failed")
	}
	if model.Layer("missing") != nil {
		t.Fatal("expected nil for unknown tag")
	}
}

func TestSequentialResetStates(t *testing.T) {
	g := mustGRU(t, true)
	model := &Sequential{Layers: []Module{g}}

	batch, err := tensor.NewBatch(2, 2, 1, []float64{1, 2, -1, -2})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := model.Forward(batch); err != nil {
		t.Fatal(err)
	}
	if err := model.ResetStates(); err != nil {
		t.Fatal(err)
	}
	for _, v := range g.States().Data {
		if v != 0 {
			t.Fatalf("state not zeroed after ResetStates: %v", g.States().Data)
		}
	}
}

func TestSequentialStateful(t *testing.T) {
	stateless := &Sequential{Layers: []Module{&scaleLayer{c: 1}, mustGRU(t, false)}}
	if stateless.Stateful() {
		t.Fatal("stateless chain reported stateful")
	}
	stateful := &Sequential{Layers: []Module{mustGRU(t, true)}}
	if !stateful.Stateful() {
		t.Fatal("stateful chain reported stateless")
	}
}

func TestSequentialForwardError(t *testing.T) {
	g := mustGRU(t, true)
	model := &Sequential{Layers: []Module{g}}
	// rank-2 input must be rejected by the GRU layer
	if _, err := model.Forward(tensor.New(2, 3)); err == nil {
		t.Fatal("expected shape error")
	}
}
