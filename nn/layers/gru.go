package layers

import (
	"fmt"
	"sync"

	"gru_lib/tensor"

	"gonum.org/v1/gonum/mat"
)

// GateWeights holds the learned parameters of the gated update: input
// projections (hidden×input), recurrent projections (hidden×hidden) and one
// bias per gate. Fixed after construction, shared read-only across slots.
type GateWeights struct {
	Wz, Wr, Wh *mat.Dense
	Uz, Ur, Uh *mat.Dense
	Bz, Br, Bh *mat.VecDense
}

// NewGateWeights draws uniform weights in ±1/sqrt(width) per projection and
// zero biases.
func NewGateWeights(inputWidth, hiddenWidth int) *GateWeights {
	in, hid := float64(inputWidth), float64(hiddenWidth)
	return &GateWeights{
		Wz: mat.NewDense(hiddenWidth, inputWidth, randomArray(hiddenWidth*inputWidth, in)),
		Wr: mat.NewDense(hiddenWidth, inputWidth, randomArray(hiddenWidth*inputWidth, in)),
		Wh: mat.NewDense(hiddenWidth, inputWidth, randomArray(hiddenWidth*inputWidth, in)),
		Uz: mat.NewDense(hiddenWidth, hiddenWidth, randomArray(hiddenWidth*hiddenWidth, hid)),
		Ur: mat.NewDense(hiddenWidth, hiddenWidth, randomArray(hiddenWidth*hiddenWidth, hid)),
		Uh: mat.NewDense(hiddenWidth, hiddenWidth, randomArray(hiddenWidth*hiddenWidth, hid)),
		Bz: mat.NewVecDense(hiddenWidth, nil),
		Br: mat.NewVecDense(hiddenWidth, nil),
		Bh: mat.NewVecDense(hiddenWidth, nil),
	}
}

// check verifies every tensor is present with the expected dimensions.
func (w *GateWeights) check(inputWidth, hiddenWidth int) error {
	mats := []struct {
		name string
		m    mat.Matrix
		r, c int
	}{
		{"Wz", w.Wz, hiddenWidth, inputWidth},
		{"Wr", w.Wr, hiddenWidth, inputWidth},
		{"Wh", w.Wh, hiddenWidth, inputWidth},
		{"Uz", w.Uz, hiddenWidth, hiddenWidth},
		{"Ur", w.Ur, hiddenWidth, hiddenWidth},
		{"Uh", w.Uh, hiddenWidth, hiddenWidth},
		{"Bz", w.Bz, hiddenWidth, 1},
		{"Br", w.Br, hiddenWidth, 1},
		{"Bh", w.Bh, hiddenWidth, 1},
	}
	for _, e := range mats {
		if e.m == nil || isNilPtr(e.m) {
			return &ConfigError{Reason: e.name + " is nil"}
		}
		r, c := e.m.Dims()
		if r != e.r || c != e.c {
			return &ConfigError{Reason: fmt.Sprintf("%s is %dx%d, want %dx%d", e.name, r, c, e.r, e.c)}
		}
	}
	return nil
}

func isNilPtr(m mat.Matrix) bool {
	switch v := m.(type) {
	case *mat.Dense:
		return v == nil
	case *mat.VecDense:
		return v == nil
	}
	return false
}

// Tensors exports the gate weights as named tensors for serialization.
func (w *GateWeights) Tensors() map[string]*tensor.Tensor {
	out := make(map[string]*tensor.Tensor, 9)
	for name, m := range map[string]*mat.Dense{"Wz": w.Wz, "Wr": w.Wr, "Wh": w.Wh, "Uz": w.Uz, "Ur": w.Ur, "Uh": w.Uh} {
		r, c := m.Dims()
		t := tensor.New(r, c)
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				t.Set(m.At(i, j), i, j)
			}
		}
		out[name] = t
	}
	for name, v := range map[string]*mat.VecDense{"Bz": w.Bz, "Br": w.Br, "Bh": w.Bh} {
		t := tensor.New(v.Len())
		for i := 0; i < v.Len(); i++ {
			t.Set(v.AtVec(i), i)
		}
		out[name] = t
	}
	return out
}

// GateWeightsFromTensors rebuilds gate weights from named tensors, as
// produced by Tensors or loaded from a weights file.
func GateWeightsFromTensors(ts map[string]*tensor.Tensor) (*GateWeights, error) {
	dense := func(name string) (*mat.Dense, error) {
		t, ok := ts[name]
		if !ok {
			return nil, &ConfigError{Reason: "missing weight tensor " + name}
		}
		if len(t.Shape) != 2 {
			return nil, &ConfigError{Reason: fmt.Sprintf("weight tensor %s has shape %v, want 2-D", name, t.Shape)}
		}
		return mat.NewDense(t.Shape[0], t.Shape[1], append([]float64(nil), t.Data...)), nil
	}
	vec := func(name string) (*mat.VecDense, error) {
		t, ok := ts[name]
		if !ok {
			return nil, &ConfigError{Reason: "missing bias tensor " + name}
		}
		if len(t.Shape) != 1 {
			return nil, &ConfigError{Reason: fmt.Sprintf("bias tensor %s has shape %v, want 1-D", name, t.Shape)}
		}
		return mat.NewVecDense(t.Shape[0], append([]float64(nil), t.Data...)), nil
	}
	w := &GateWeights{}
	var err error
	if w.Wz, err = dense("Wz"); err != nil {
		return nil, err
	}
	if w.Wr, err = dense("Wr"); err != nil {
		return nil, err
	}
	if w.Wh, err = dense("Wh"); err != nil {
		return nil, err
	}
	if w.Uz, err = dense("Uz"); err != nil {
		return nil, err
	}
	if w.Ur, err = dense("Ur"); err != nil {
		return nil, err
	}
	if w.Uh, err = dense("Uh"); err != nil {
		return nil, err
	}
	if w.Bz, err = vec("Bz"); err != nil {
		return nil, err
	}
	if w.Br, err = vec("Br"); err != nil {
		return nil, err
	}
	if w.Bh, err = vec("Bh"); err != nil {
		return nil, err
	}
	return w, nil
}

// GRU is a single gated-recurrent-unit layer carrying one hidden-state
// vector per batch slot. Slot i always continues the same logical sequence
// across calls. When stateful, hidden state persists between batches until
// ResetState; otherwise every ProcessBatch starts all slots from zero.
type GRU struct {
	batchSize   int
	inputWidth  int
	hiddenWidth int

	stateful   bool
	returnSeqs bool

	weights *GateWeights

	updateAct Activation
	resetAct  Activation
	cellAct   Activation

	// states are owned exclusively by the layer; accessors return copies.
	states []*mat.VecDense

	tag string
}

// NewGRU builds a GRU layer with batchSize hidden-state vectors, all zero.
// A nil weights argument draws fresh random gate weights.
func NewGRU(batchSize, inputWidth, hiddenWidth int, stateful bool, weights *GateWeights) (*GRU, error) {
	if batchSize <= 0 || inputWidth <= 0 || hiddenWidth <= 0 {
		return nil, &ConfigError{Reason: fmt.Sprintf(
			"dimensions must be positive, got batch=%d input=%d hidden=%d",
			batchSize, inputWidth, hiddenWidth)}
	}
	if weights == nil {
		weights = NewGateWeights(inputWidth, hiddenWidth)
	}
	if err := weights.check(inputWidth, hiddenWidth); err != nil {
		return nil, err
	}
	g := &GRU{
		batchSize:   batchSize,
		inputWidth:  inputWidth,
		hiddenWidth: hiddenWidth,
		stateful:    stateful,
		weights:     weights,
		updateAct:   ActivatorLookup["sigmoid"],
		resetAct:    ActivatorLookup["sigmoid"],
		cellAct:     ActivatorLookup["tanh"],
		states:      make([]*mat.VecDense, batchSize),
		tag:         fmt.Sprintf("GRU_%d_%d", inputWidth, hiddenWidth),
	}
	for i := range g.states {
		g.states[i] = mat.NewVecDense(hiddenWidth, nil)
	}
	return g, nil
}

// SetReturnSequences switches between emitting every intermediate hidden
// state and only the final one (the default).
func (g *GRU) SetReturnSequences(full bool) {
	g.returnSeqs = full
}

// SetTag overrides the default layer tag.
func (g *GRU) SetTag(tag string) {
	g.tag = tag
}

func (g *GRU) BatchSize() int   { return g.batchSize }
func (g *GRU) InputWidth() int  { return g.inputWidth }
func (g *GRU) HiddenWidth() int { return g.hiddenWidth }
func (g *GRU) Stateful() bool   { return g.stateful }
func (g *GRU) Tag() string      { return g.tag }

// Weights returns the layer's gate weights. Shared, read-only by convention.
func (g *GRU) Weights() *GateWeights { return g.weights }

// stepVec advances h by one gated update and returns the new hidden state:
//
//	z  = sigmoid(Wz·x + Uz·h + bz)
//	r  = sigmoid(Wr·x + Ur·h + br)
//	ĥ  = tanh(Wh·x + Uh·(r ⊙ h) + bh)
//	h' = (1 − z) ⊙ h + z ⊙ ĥ
func (g *GRU) stepVec(h *mat.VecDense, x []float64) *mat.VecDense {
	xv := mat.NewVecDense(len(x), x)
	w := g.weights
	z := applyVec(g.updateAct, addVecs(mulVec(w.Wz, xv), mulVec(w.Uz, h), w.Bz))
	r := applyVec(g.resetAct, addVecs(mulVec(w.Wr, xv), mulVec(w.Ur, h), w.Br))
	cand := applyVec(g.cellAct, addVecs(mulVec(w.Wh, xv), mulVec(w.Uh, mulElem(r, h)), w.Bh))

	hNew := mat.NewVecDense(g.hiddenWidth, nil)
	for i := 0; i < g.hiddenWidth; i++ {
		zi := z.AtVec(i)
		hNew.SetVec(i, (1-zi)*h.AtVec(i)+zi*cand.AtVec(i))
	}
	return hNew
}

// Step consumes one time step for one slot and returns a copy of the new
// hidden state. The stored state always advances, regardless of the
// stateful flag; stateless semantics only apply at the batch boundary.
func (g *GRU) Step(slot int, x *tensor.Tensor) (*tensor.Tensor, error) {
	if slot < 0 || slot >= g.batchSize {
		return nil, &SlotError{Slot: slot, BatchSize: g.batchSize}
	}
	if len(x.Shape) != 1 || len(x.Data) != g.inputWidth {
		return nil, &ShapeError{Field: "input width", Want: g.inputWidth, Got: len(x.Data)}
	}
	h := g.stepVec(g.states[slot], x.Data)
	g.states[slot] = h
	return vecToTensor(h), nil
}

// ProcessBatch runs every slot's sequence through the gated update. The
// batch is a dense (slot, step, feature) tensor; its whole shape is checked
// before any slot's state is touched. Slots are independent and fan out
// across goroutines; weights are shared read-only, each state vector is
// owned by its slot's goroutine for the duration of the call.
func (g *GRU) ProcessBatch(batch *tensor.Tensor) (*tensor.Tensor, error) {
	if batch == nil || len(batch.Shape) != 3 {
		got := 0
		if batch != nil {
			got = len(batch.Shape)
		}
		return nil, &ShapeError{Field: "batch rank", Want: 3, Got: got}
	}
	slots, steps, feats := batch.Shape[0], batch.Shape[1], batch.Shape[2]
	if slots != g.batchSize {
		return nil, &ShapeError{Field: "slot count", Want: g.batchSize, Got: slots}
	}
	if feats != g.inputWidth {
		return nil, &ShapeError{Field: "feature width", Want: g.inputWidth, Got: feats}
	}
	if steps < 1 {
		return nil, &ShapeError{Field: "sequence length", Want: 1, Got: steps}
	}
	if len(batch.Data) != slots*steps*feats {
		return nil, &ShapeError{Field: "batch data length", Want: slots * steps * feats, Got: len(batch.Data)}
	}

	if !g.stateful {
		for i := range g.states {
			g.states[i].Zero()
		}
	}

	var out *tensor.Tensor
	if g.returnSeqs {
		out = tensor.New(slots, steps, g.hiddenWidth)
	} else {
		out = tensor.New(slots, g.hiddenWidth)
	}

	var wg sync.WaitGroup
	for slot := 0; slot < slots; slot++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			h := g.states[slot]
			for t := 0; t < steps; t++ {
				h = g.stepVec(h, batch.StepSlice(slot, t))
				if g.returnSeqs {
					off := (slot*steps + t) * g.hiddenWidth
					copy(out.Data[off:off+g.hiddenWidth], h.RawVector().Data)
				}
			}
			g.states[slot] = h
			if !g.returnSeqs {
				off := slot * g.hiddenWidth
				copy(out.Data[off:off+g.hiddenWidth], h.RawVector().Data)
			}
		}(slot)
	}
	wg.Wait()
	return out, nil
}

// ResetState zeroes the named slots, or every slot when none are given.
// All indices are validated before any slot is zeroed.
func (g *GRU) ResetState(slots ...int) error {
	for _, s := range slots {
		if s < 0 || s >= g.batchSize {
			return &SlotError{Slot: s, BatchSize: g.batchSize}
		}
	}
	if len(slots) == 0 {
		for i := range g.states {
			g.states[i].Zero()
		}
		return nil
	}
	for _, s := range slots {
		g.states[s].Zero()
	}
	return nil
}

// State returns a copy of one slot's hidden state.
func (g *GRU) State(slot int) (*tensor.Tensor, error) {
	if slot < 0 || slot >= g.batchSize {
		return nil, &SlotError{Slot: slot, BatchSize: g.batchSize}
	}
	return vecToTensor(g.states[slot]), nil
}

// States returns a (batchSize, hiddenWidth) copy of all hidden states.
func (g *GRU) States() *tensor.Tensor {
	out := tensor.New(g.batchSize, g.hiddenWidth)
	for i, h := range g.states {
		copy(out.Data[i*g.hiddenWidth:(i+1)*g.hiddenWidth], h.RawVector().Data)
	}
	return out
}

// Forward processes the input through the layer. It accepts a 3-D
// (slot, step, feature) *tensor.Tensor batch.
func (g *GRU) Forward(input interface{}) (interface{}, error) {
	batch, ok := input.(*tensor.Tensor)
	if !ok {
		return nil, fmt.Errorf("GRU layer expects *tensor.Tensor input, got %T", input)
	}
	return g.ProcessBatch(batch)
}

func vecToTensor(v *mat.VecDense) *tensor.Tensor {
	return tensor.NewWithData(v.RawVector().Data)
}
