package nn

import (
	"gru_lib/tensor"
)

// Module defines a single layer/unit in the network.
type Module interface {
	Forward(input interface{}) (interface{}, error)
	// Stateful reports whether the module retains hidden state between
	// Forward calls.
	Stateful() bool
	// ResetState zeroes the module's hidden state for the given slots, or
	// for all slots when none are given. A no-op for stateless modules.
	ResetState(slots ...int) error
	Tag() string
}

// Sequential chains multiple Modules in order.
type Sequential struct {
	Layers []Module
}

// Forward applies each layer in sequence.
func (s *Sequential) Forward(x *tensor.Tensor) (interface{}, error) {
	var err error
	var out interface{} = x
	for _, layer := range s.Layers {
		out, err = layer.Forward(out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Layer returns the layer with the given tag, or nil if absent.
func (s *Sequential) Layer(tag string) Module {
	for _, layer := range s.Layers {
		if layer.Tag() == tag {
			return layer
		}
	}
	return nil
}

// ResetStates resets every stateful layer in the chain.
func (s *Sequential) ResetStates() error {
	for _, layer := range s.Layers {
		if !layer.Stateful() {
			continue
		}
		if err := layer.ResetState(); err != nil {
			return err
		}
	}
	return nil
}

// Stateful returns true if any layer retains state across calls.
func (s *Sequential) Stateful() bool {
	for _, layer := range s.Layers {
		if layer.Stateful() {
			return true
		}
	}
	return false
}
