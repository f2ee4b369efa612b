package layers

import "fmt"

// ConfigError reports invalid construction parameters or a weight tensor
// whose shape disagrees with the configured widths. No layer is produced.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "layer config: " + e.Reason
}

// ShapeError reports a call whose input dimensions disagree with the layer
// configuration. The call fails before any hidden state is touched.
type ShapeError struct {
	Field string
	Want  int
	Got   int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("shape mismatch: %s = %d, want %d", e.Field, e.Got, e.Want)
}

// SlotError reports a slot index outside [0, batchSize).
type SlotError struct {
	Slot      int
	BatchSize int
}

func (e *SlotError) Error() string {
	return fmt.Sprintf("slot %d out of range [0, %d)", e.Slot, e.BatchSize)
}
