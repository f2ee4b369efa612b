package layers

import (
	"fmt"
	"math"
)

// Activation is an element-wise activation function.
type Activation interface {
	Activate(v float64) float64
	fmt.Stringer
}

var ActivatorLookup = map[string]Activation{
	"sigmoid": Sigmoid{},
	"tanh":    Tanh{},
}

type Sigmoid struct{}

func (s Sigmoid) Activate(v float64) float64 {
	return 1.0 / (1.0 + math.Exp(-v))
}

func (s Sigmoid) String() string {
	return "sigmoid"
}

type Tanh struct{}

func (t Tanh) Activate(v float64) float64 {
	return math.Tanh(v)
}

func (t Tanh) String() string {
	return "tanh"
}
