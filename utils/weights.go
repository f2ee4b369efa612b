package utils

import (
	"encoding/json"
	"fmt"
	"os"

	"gru_lib/tensor"
)

// WeightData represents serializable weight data for one parameter tensor
type WeightData struct {
	Name  string    `json:"name"`
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// LayerWeights maps parameter name (e.g. "Wz", "Bh") to its tensor data
type LayerWeights map[string]*WeightData

// ModelWeights represents all weights in a model
type ModelWeights struct {
	Version string                  `json:"version"`
	Layers  map[string]LayerWeights `json:"layers"`
}

// SaveWeights saves model weights to a JSON file
func SaveWeights(filepath string, weights *ModelWeights) error {
	data, err := json.MarshalIndent(weights, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal weights: %w", err)
	}
	return os.WriteFile(filepath, data, 0644)
}

// LoadWeights loads model weights from a JSON file
func LoadWeights(filepath string) (*ModelWeights, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights file: %w", err)
	}
	var weights ModelWeights
	if err := json.Unmarshal(data, &weights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weights: %w", err)
	}
	return &weights, nil
}

// TensorToWeightData converts a tensor to serializable weight data
func TensorToWeightData(name string, t *tensor.Tensor) *WeightData {
	return &WeightData{
		Name:  name,
		Shape: append([]int{}, t.Shape...),
		Data:  append([]float64{}, t.Data...), // copy
	}
}

// WeightDataToTensor converts weight data back to a tensor
func WeightDataToTensor(wd *WeightData) *tensor.Tensor {
	t := tensor.New(wd.Shape...)
	copy(t.Data, wd.Data)
	return t
}

// TensorsToModel packs a set of named tensors under a single layer entry.
func TensorsToModel(layerName string, ts map[string]*tensor.Tensor) *ModelWeights {
	lw := make(LayerWeights, len(ts))
	for name, t := range ts {
		lw[name] = TensorToWeightData(name, t)
	}
	return &ModelWeights{
		Version: "1.0",
		Layers:  map[string]LayerWeights{layerName: lw},
	}
}

// ModelToTensors unpacks one layer entry back into named tensors.
func ModelToTensors(mw *ModelWeights, layerName string) (map[string]*tensor.Tensor, error) {
	lw, ok := mw.Layers[layerName]
	if !ok {
		return nil, fmt.Errorf("layer %q not found in weights file", layerName)
	}
	ts := make(map[string]*tensor.Tensor, len(lw))
	for name, wd := range lw {
		if wd == nil {
			return nil, fmt.Errorf("layer %q has empty entry %q", layerName, name)
		}
		total := 1
		for _, d := range wd.Shape {
			total *= d
		}
		if total != len(wd.Data) {
			return nil, fmt.Errorf("layer %q entry %q: shape %v does not match %d values",
				layerName, name, wd.Shape, len(wd.Data))
		}
		ts[name] = WeightDataToTensor(wd)
	}
	return ts, nil
}
