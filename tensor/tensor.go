package tensor

import "fmt"

// Tensor is a simple n-D array backed by a flat []float64.
type Tensor struct {
	Data  []float64
	Shape []int
}

// New allocates a zeroed Tensor of given shape (product of dims = len(Data)).
func New(shape ...int) *Tensor {
	// Compute total size
	total := 1
	for _, d := range shape {
		total *= d
	}
	return &Tensor{
		Data:  make([]float64, total),
		Shape: append([]int(nil), shape...),
	}
}

// NewWithData creates a 1-D tensor from a copy of the data slice.
func NewWithData(data []float64) *Tensor {
	return &Tensor{
		Data:  append([]float64(nil), data...),
		Shape: []int{len(data)},
	}
}

// NewBatch builds a (slot, step, feature) batch tensor from flat data laid
// out slot-major, or error if the data length disagrees with the shape.
func NewBatch(slots, steps, features int, data []float64) (*Tensor, error) {
	if slots <= 0 || steps <= 0 || features <= 0 {
		return nil, fmt.Errorf("batch dims must be positive, got (%d, %d, %d)", slots, steps, features)
	}
	if len(data) != slots*steps*features {
		return nil, fmt.Errorf("batch data length %d, want %d for shape (%d, %d, %d)",
			len(data), slots*steps*features, slots, steps, features)
	}
	return &Tensor{
		Data:  append([]float64(nil), data...),
		Shape: []int{slots, steps, features},
	}, nil
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	return &Tensor{
		Data:  append([]float64(nil), t.Data...),
		Shape: append([]int(nil), t.Shape...),
	}
}

// Zero sets every element to 0 in place.
func (t *Tensor) Zero() {
	for i := range t.Data {
		t.Data[i] = 0
	}
}

// StepSlice returns the feature vector of one time step of one slot in a 3-D
// batch tensor. The returned slice aliases the tensor's backing array.
func (t *Tensor) StepSlice(slot, step int) []float64 {
	if len(t.Shape) != 3 {
		panic(fmt.Sprintf("StepSlice: expected 3-D tensor, got shape %v", t.Shape))
	}
	steps, features := t.Shape[1], t.Shape[2]
	if slot < 0 || slot >= t.Shape[0] || step < 0 || step >= steps {
		panic(fmt.Sprintf("StepSlice: index (%d, %d) out of bounds for shape %v", slot, step, t.Shape))
	}
	off := (slot*steps + step) * features
	return t.Data[off : off+features]
}

// MaxAbsDiff returns the largest element-wise |a-b|, or error if shapes differ.
func MaxAbsDiff(a, b *Tensor) (float64, error) {
	if len(a.Shape) != len(b.Shape) {
		return 0, fmt.Errorf("shape mismatch: %v vs %v", a.Shape, b.Shape)
	}
	for i := range a.Shape {
		if a.Shape[i] != b.Shape[i] {
			return 0, fmt.Errorf("shape mismatch: %v vs %v", a.Shape, b.Shape)
		}
	}
	max := 0.0
	for i := range a.Data {
		d := a.Data[i] - b.Data[i]
		if d < 0 {
			d = -d
		}
		if d > max {
			max = d
		}
	}
	return max, nil
}

// At returns the element at the given indices.
func (t *Tensor) At(indices ...int) float64 {
	return t.Data[t.index("At", indices)]
}

// Set sets the element at the given indices to the given value.
func (t *Tensor) Set(value float64, indices ...int) {
	t.Data[t.index("Set", indices)] = value
}

func (t *Tensor) index(op string, indices []int) int {
	if len(indices) != len(t.Shape) {
		panic(fmt.Sprintf("%s: expected %d indices, got %d", op, len(t.Shape), len(indices)))
	}
	// Compute linear index
	idx := 0
	stride := 1
	for i := len(indices) - 1; i >= 0; i-- {
		if indices[i] < 0 || indices[i] >= t.Shape[i] {
			panic(fmt.Sprintf("%s: index %d out of bounds for dimension %d (shape: %v)", op, indices[i], i, t.Shape))
		}
		idx += indices[i] * stride
		stride *= t.Shape[i]
	}
	return idx
}
